//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/e-gun/NarrativeScope/internal/corp"
	"github.com/e-gun/NarrativeScope/internal/dfm"
	"github.com/e-gun/NarrativeScope/internal/explore"
	"github.com/e-gun/NarrativeScope/internal/ingest"
	"github.com/e-gun/NarrativeScope/internal/metrics"
	"github.com/e-gun/NarrativeScope/internal/mm"
	"github.com/e-gun/NarrativeScope/internal/plot"
	"github.com/e-gun/NarrativeScope/internal/store"
	"github.com/e-gun/NarrativeScope/internal/tok"
	"github.com/e-gun/NarrativeScope/internal/topics"
	"github.com/e-gun/NarrativeScope/internal/vv"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

//
// THE RUN
//

// Deps - collaborators a run does not have to build for itself; nil fields are filled with defaults
type Deps struct {
	Msg     *mm.MessageMaker
	Engine  topics.Engine
	Sink    plot.Sink
	Metrics *metrics.Recorder
	RunID   string
}

// Report - everything a run produced; sections that were switched off stay nil
type Report struct {
	RunID       string
	Corpus      *corp.Corpus
	Tokens      *tok.Tokens
	Matrix      *dfm.Matrix
	Untrimmed   int
	Frequency   explore.FreqTable
	ByGroup     []explore.FreqTable
	Keyness     *explore.KeyTable
	Similar     []explore.SimTable
	SimErrors   map[string]error
	Hits        []explore.Hit
	Context     *explore.FreqTable
	Search      *topics.SearchResult
	Selection   error
	Model       *topics.Model
	Labels      []topics.TopicLabels
	Effects     *topics.EffectTable
	Correlation *topics.Correlation
	Thoughts    [][]topics.Thought
	Dominance   *topics.TopicDominance
	Charts      []string
	Snapshot    string
	MetricsFile string
	Elapsed     time.Duration
}

// Run - ingest, clean, count, explore, model, report; the first fatal error ends the run
func Run(ctx context.Context, cfg Config, deps Deps) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := filldeps(cfg, deps)

	rep := &Report{RunID: d.RunID}
	start := time.Now()
	previous := start

	d.Msg.EmitWith(fmt.Sprintf("run %s started", d.RunID), vv.MSGFYI, zap.String("run", d.RunID))

	if cfg.OutDir != "" {
		if err := os.MkdirAll(cfg.OutDir, vv.DIRPERMS); err != nil {
			return nil, fmt.Errorf("pipeline: cannot create '%s': %w", cfg.OutDir, err)
		}
	}

	// [A] ingestion and corpus

	cp, err := readcorpus(cfg)
	if err != nil {
		return nil, err
	}
	rep.Corpus = cp
	d.Metrics.Size("corpus", metrics.SIZEDOCS, cp.NDocs())
	d.Msg.Timer("A", fmt.Sprintf("read %d documents from '%s'", cp.NDocs(), cfg.Input), start, previous)
	previous = d.Metrics.Since("ingest", previous)

	for _, s := range cp.Summary() {
		d.Msg.TMI(fmt.Sprintf("%s: %d types, %d tokens", s.Name, s.Types, s.Tokens))
	}

	// [B] tokens

	if err = ctx.Err(); err != nil {
		return rep, err
	}
	cl, err := tok.NewCleaner(cfg.Clean)
	if err != nil {
		return rep, err
	}
	tk, err := cl.Clean(cp)
	if err != nil {
		return rep, err
	}
	rep.Tokens = tk
	d.Metrics.Size("tokens", metrics.SIZETOKENS, sum(tk.NTokens()))
	if cfg.OutDir != "" {
		if err = tok.WriteStopList(cl.Stops(), filepath.Join(cfg.OutDir, STOPLISTFILE)); err != nil {
			return rep, err
		}
	}
	d.Msg.Timer("B", fmt.Sprintf("cleaned %d documents; %d stopwords in play", tk.NDocs(), len(cl.Stops())), start, previous)
	previous = d.Metrics.Since("tokens", previous)

	// [C] feature matrix

	if err = ctx.Err(); err != nil {
		return rep, err
	}
	st, err := dfm.NewStemmer(cfg.Stemmer)
	if err != nil {
		return rep, err
	}
	full, err := dfm.Build(tk, st)
	if err != nil {
		return rep, err
	}
	m := full.Trim(cfg.MinCount)
	rep.Matrix = m
	rep.Untrimmed = full.NFeatures()
	d.Metrics.Size("dfm", metrics.SIZEDOCS, m.NDocs())
	d.Metrics.Size("dfm", metrics.SIZEFEATS, m.NFeatures())
	d.Msg.Timer("C", fmt.Sprintf("feature matrix: %d x %d (trimmed %d features with fewer than %v occurrences)",
		m.NDocs(), m.NFeatures(), full.NFeatures()-m.NFeatures(), cfg.MinCount), start, previous)
	previous = d.Metrics.Since("dfm", previous)

	// [D] exploration

	if err = ctx.Err(); err != nil {
		return rep, err
	}
	if err = exploration(cfg, d, rep, cl, st); err != nil {
		return rep, err
	}
	d.Msg.Timer("D", fmt.Sprintf("exploration: %d frequency rows; %d KWIC hits", rep.Frequency.Len(), len(rep.Hits)), start, previous)
	previous = d.Metrics.Since("explore", previous)

	// [E] topics

	if cfg.Topics.Enabled {
		if err = modeling(ctx, cfg, d, rep); err != nil {
			return rep, err
		}
		d.Msg.Timer("E", "topic modeling", start, previous)
		previous = d.Metrics.Since("topics", previous)
	}

	// [F] reporting

	if rep.Charts, err = drawcharts(cfg, d.Sink, rep); err != nil {
		return rep, err
	}
	if cfg.Snapshot && cfg.OutDir != "" {
		rep.Snapshot = filepath.Join(cfg.OutDir, SNAPSHOTFILE)
		meta := map[string]string{
			"run":      d.RunID,
			"input":    cfg.Input,
			"stemmer":  st.Name(),
			"mincount": strconv.FormatFloat(cfg.MinCount, 'g', -1, 64),
		}
		if err = store.SaveMatrix(ctx, rep.Snapshot, m, meta); err != nil {
			return rep, err
		}
	}
	d.Msg.Timer("F", fmt.Sprintf("%d chart files written", len(rep.Charts)), start, previous)
	d.Metrics.Since("report", previous)

	rep.Elapsed = time.Since(start)
	if cfg.Metrics && cfg.OutDir != "" {
		rep.MetricsFile = filepath.Join(cfg.OutDir, METRICSFILE)
		if err = d.Metrics.WriteTextfile(rep.MetricsFile); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

func filldeps(cfg Config, d Deps) Deps {
	if d.RunID == "" {
		d.RunID = strings.Replace(uuid.New().String(), "-", "", -1)
	}
	if d.Msg == nil {
		d.Msg = mm.NewMessageMaker()
	}
	if d.Engine == nil {
		d.Engine = topics.NewLDAEngine()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewRecorder(d.RunID)
	}
	if d.Sink == nil {
		switch cfg.Charts {
		case CHARTSPAGE:
			d.Sink = plot.FileSink{Dir: cfg.OutDir}
		case CHARTSFRAGMENT:
			d.Sink = plot.FragmentSink{Dir: cfg.OutDir}
		default:
			d.Sink = &plot.NopSink{}
		}
	}
	return d
}

// readcorpus - the ingestion stage; corpus construction happens inside ingest.Read()
func readcorpus(cfg Config) (*corp.Corpus, error) {
	o := ingest.DefaultOptions()
	o.Delimiter, _ = utf8.DecodeRuneInString(cfg.Delimiter)
	if cfg.Comment != "" {
		o.Comment, _ = utf8.DecodeRuneInString(cfg.Comment)
	}
	o.IDField = cfg.IDField
	return ingest.ReadFile(cfg.Input, cfg.TextField, o)
}

// exploration - the read-only branches; only a failed similarity lookup is survivable
func exploration(cfg Config, d Deps, rep *Report, cl *tok.Cleaner, st dfm.Stemmer) error {
	m := rep.Matrix
	rep.Frequency = explore.Frequency(m)

	if cfg.GroupField != "" {
		bg, err := explore.FrequencyBy(m, cfg.GroupField)
		if err != nil {
			return err
		}
		rep.ByGroup = bg
	}

	if cfg.KeyField != "" {
		target, err := m.Docvars().Equals(cfg.KeyField, cfg.KeyTarget)
		if err != nil {
			return err
		}
		kt, err := explore.Keyness(m, target, cfg.KeyMeasure)
		if err != nil {
			return err
		}
		rep.Keyness = &kt
	}

	if len(cfg.SimTerms) > 0 {
		terms := make([]string, len(cfg.SimTerms))
		for i, t := range cfg.SimTerms {
			terms[i] = st.Stem(strings.ToLower(strings.TrimSpace(t)))
		}
		rep.Similar, rep.SimErrors = explore.SimilarityMany(m, terms, cfg.SimMetric, cfg.SimTop, explore.SimOptions{IncludeSelf: true})
		for _, t := range terms {
			if e, ok := rep.SimErrors[t]; ok {
				d.Msg.WARN(fmt.Sprintf("similarity skipped: %s", e.Error()))
			}
		}
	}

	if len(cfg.Dictionary) > 0 {
		dict, err := explore.NewDictionary(cfg.Dictionary)
		if err != nil {
			return err
		}
		o := explore.KWICOptions{CaseInsensitive: cfg.KWICFold}
		if rep.Hits, err = explore.KWIC(rep.Tokens, dict, cfg.KWICWindow, o); err != nil {
			return err
		}
		cv, err := explore.ContextVocabulary(rep.Hits, cl, st, dict, cfg.MinCount, o)
		if err != nil {
			return err
		}
		rep.Context = &cv
	}
	return nil
}

// modeling - search K, select one, then summarize it
func modeling(ctx context.Context, cfg Config, d Deps, rep *Report) error {
	const (
		MSG1 = "K=%d: coherence %.3f; exclusivity %.3f"
		MSG2 = "K=%d failed: %s"
		MSG3 = "dropped %d documents left empty by cleaning and trimming"
		MSG4 = "no K was chosen; read the search diagnostics and re-run with a K"
		FAIL = "pipeline: none of the %d candidate K could be fit: %w"
	)

	t := cfg.Topics
	f, err := topics.ParseFormula(t.Formula)
	if err != nil {
		return err
	}
	tm, kept, err := rep.Matrix.DropEmptyDocs()
	if err != nil {
		return err
	}
	if dropped := rep.Matrix.NDocs() - tm.NDocs(); dropped > 0 {
		d.Msg.NOTE(fmt.Sprintf(MSG3, dropped))
	}

	in := topics.Input{Matrix: tm, Formula: f, Seed: t.Seed, Origin: kept}
	so := topics.DefaultSearchOptions()
	so.Workers = t.Workers
	so.OnCandidate = func(c topics.Candidate) {
		d.Metrics.Fit(c.K, c.Err)
		if c.OK() {
			d.Msg.EmitWith(fmt.Sprintf(MSG1, c.K, c.Coherence, c.Exclusivity), vv.MSGFYI, zap.Int("k", c.K))
		} else {
			d.Msg.WARN(fmt.Sprintf(MSG2, c.K, c.Err.Error()))
		}
	}

	ks := topics.KRange(t.KMin, t.KMax)
	sr := topics.Search(ctx, d.Engine, in, ks, so)
	rep.Search = &sr
	if err = ctx.Err(); err != nil {
		return err
	}
	if len(sr.Succeeded()) == 0 {
		return fmt.Errorf(FAIL, len(ks), sr.Failed()[0].Err)
	}

	var policy topics.SelectionPolicy = topics.Manual{K: t.K}
	cand, err := policy.Select(sr)
	if errors.Is(err, topics.ErrSelectionRequired) {
		rep.Selection = err
		d.Msg.NOTE(MSG4)
		return nil
	}
	if err != nil {
		return err
	}

	mod := cand.Model
	rep.Model = mod
	d.Metrics.Selected(mod.K())

	if rep.Labels, err = topics.Label(mod, tm, t.TopWords, t.FrexWeight); err != nil {
		return err
	}

	if t.EffectField != "" {
		et, eerr := topics.EstimateEffect(mod, t.EffectField, t.EffectA, t.EffectB, t.EffectLevel)
		if eerr != nil {
			return eerr
		}
		rep.Effects = &et
	}

	cr, err := topics.Correlate(mod, t.CorrCutoff)
	if err != nil {
		return err
	}
	rep.Correlation = &cr

	if rep.Thoughts, err = topics.Thoughts(mod, rep.Corpus, t.Thoughts); err != nil {
		return err
	}
	dom := topics.Dominance(mod)
	rep.Dominance = &dom
	return nil
}

// Prevalence - mean share of each topic across the documents
func (r *Report) Prevalence() []float64 {
	if r.Model == nil {
		return nil
	}
	pp := make([]float64, r.Model.K())
	for t := range pp {
		pp[t] = stat.Mean(r.Model.Prevalence(t), nil)
	}
	return pp
}

func sum(nn []int) int {
	s := 0
	for _, n := range nn {
		s += n
	}
	return s
}
