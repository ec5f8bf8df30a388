//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/e-gun/NarrativeScope/internal/dfm"
	"github.com/e-gun/NarrativeScope/internal/explore"
	"github.com/e-gun/NarrativeScope/internal/tok"
	"github.com/e-gun/NarrativeScope/internal/topics"
	"github.com/e-gun/NarrativeScope/internal/vv"
)

const (
	CHARTSPAGE     = "page"
	CHARTSFRAGMENT = "fragment"
	CHARTSNONE     = "none"
	SNAPSHOTFILE   = "matrix.db"
	METRICSFILE    = "nsc.prom"
	STOPLISTFILE   = "stoplist.json"
)

// ConfigError - a setting that would make a stage fail; reported before anything runs
type ConfigError struct {
	Field string
	Value string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("pipeline: %s (%s=%q)", e.Msg, e.Field, e.Value)
}

// Config - everything a run needs to know; the zero value of an optional section switches it off
type Config struct {
	Input     string     `yaml:"input"`
	TextField string     `yaml:"textfield"`
	IDField   string     `yaml:"idfield"`
	Delimiter string     `yaml:"delimiter"`
	Comment   string     `yaml:"comment"`
	OutDir    string     `yaml:"outdir"`
	Clean     tok.Config `yaml:"clean"`
	Stemmer   string     `yaml:"stemmer"`
	MinCount  float64    `yaml:"mincount"`

	FreqTop    int    `yaml:"freqtop"`
	GroupField string `yaml:"groupfield"`

	KeyField   string `yaml:"keyfield"`
	KeyTarget  string `yaml:"keytarget"`
	KeyMeasure string `yaml:"keymeasure"`
	KeyTop     int    `yaml:"keytop"`

	SimTerms  []string `yaml:"simterms"`
	SimMetric string   `yaml:"simmetric"`
	SimTop    int      `yaml:"simtop"`

	Dictionary []explore.Entry `yaml:"dictionary"`
	KWICWindow int             `yaml:"kwicwindow"`
	KWICFold   bool            `yaml:"kwicfold"`

	Topics TopicConfig `yaml:"topics"`

	Charts   string `yaml:"charts"`
	Snapshot bool   `yaml:"snapshot"`
	Metrics  bool   `yaml:"metrics"`
}

// TopicConfig - K == 0 means "search, report, and wait for a person to choose"
type TopicConfig struct {
	Enabled     bool    `yaml:"enabled"`
	KMin        int     `yaml:"kmin"`
	KMax        int     `yaml:"kmax"`
	K           int     `yaml:"k"`
	Formula     string  `yaml:"formula"`
	Seed        uint64  `yaml:"seed"`
	Workers     int     `yaml:"workers"`
	TopWords    int     `yaml:"topwords"`
	FrexWeight  float64 `yaml:"frexweight"`
	EffectField string  `yaml:"effectfield"`
	EffectA     string  `yaml:"effecta"`
	EffectB     string  `yaml:"effectb"`
	EffectLevel float64 `yaml:"effectlevel"`
	CorrCutoff  float64 `yaml:"corrcutoff"`
	Thoughts    int     `yaml:"thoughts"`
}

// DefaultConfig - the built-in values from vv
func DefaultConfig() Config {
	return Config{
		TextField:  vv.DEFAULTTEXTFIELD,
		Delimiter:  vv.DEFAULTDELIMITER,
		OutDir:     vv.DEFAULTOUTPUTDIR,
		Clean:      tok.DefaultConfig(),
		Stemmer:    vv.DEFAULTSTEMMER,
		MinCount:   vv.DEFAULTMINCOUNT,
		FreqTop:    vv.DEFAULTFREQTOP,
		KeyMeasure: vv.DEFAULTKEYMEAS,
		KeyTop:     vv.DEFAULTKEYTOP,
		SimMetric:  vv.DEFAULTSIMMETRIC,
		SimTop:     vv.DEFAULTSIMTOP,
		KWICWindow: vv.DEFAULTKWICWIND,
		Topics: TopicConfig{
			Enabled:     true,
			KMin:        vv.LDAKMIN,
			KMax:        vv.LDAKMAX,
			Seed:        vv.LDASEED,
			Workers:     1,
			TopWords:    vv.TOPICTOPWORDS,
			FrexWeight:  vv.TOPICFREXW,
			EffectLevel: vv.TOPICEFFECTLEVEL,
			CorrCutoff:  vv.TOPICCORRCUTOFF,
			Thoughts:    vv.TOPICTHOUGHTS,
		},
		Charts:   CHARTSPAGE,
		Snapshot: true,
		Metrics:  true,
	}
}

// Validate - every problem found, joined; nil if the run can start
func (c Config) Validate() error {
	var errs []error
	bad := func(field string, value any, msg string) {
		errs = append(errs, &ConfigError{Field: field, Value: fmt.Sprint(value), Msg: msg})
	}

	if strings.TrimSpace(c.Input) == "" {
		bad("Input", c.Input, "no input file")
	}
	if strings.TrimSpace(c.TextField) == "" {
		bad("TextField", c.TextField, "the text column needs a name")
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		bad("Delimiter", c.Delimiter, "the delimiter must be a single character")
	}
	if utf8.RuneCountInString(c.Comment) > 1 {
		bad("Comment", c.Comment, "the comment marker must be a single character")
	}
	if _, err := tok.NewCleaner(c.Clean); err != nil {
		errs = append(errs, err)
	}
	if _, err := dfm.NewStemmer(c.Stemmer); err != nil {
		errs = append(errs, err)
	}
	if c.MinCount < 0 {
		bad("MinCount", c.MinCount, "minimum count cannot be negative")
	}
	if (c.KeyField == "") != (c.KeyTarget == "") {
		bad("KeyTarget", c.KeyTarget, "keyness needs both a field and a target level")
	}
	if c.KeyMeasure != explore.KEYCHI2 && c.KeyMeasure != explore.KEYLR {
		bad("KeyMeasure", c.KeyMeasure, "unknown keyness measure")
	}
	switch c.SimMetric {
	case explore.SIMCOSINE, explore.SIMCORRELATION, explore.DISTEUCLIDEAN, explore.DISTMANHATTAN:
	default:
		bad("SimMetric", c.SimMetric, "unknown similarity metric")
	}
	if c.KWICWindow < 0 {
		bad("KWICWindow", c.KWICWindow, "window cannot be negative")
	}
	if len(c.Dictionary) > 0 {
		if _, err := explore.NewDictionary(c.Dictionary); err != nil {
			errs = append(errs, err)
		}
	}
	switch c.Charts {
	case CHARTSPAGE, CHARTSFRAGMENT, CHARTSNONE:
	default:
		bad("Charts", c.Charts, "charts must be 'page', 'fragment' or 'none'")
	}

	t := c.Topics
	if t.Enabled {
		if t.KMin < 2 || t.KMax < t.KMin {
			bad("Topics.KMin", fmt.Sprintf("%d-%d", t.KMin, t.KMax), "the K range must start at 2 or more and not run backwards")
		}
		if t.K != 0 && (t.K < t.KMin || t.K > t.KMax) {
			bad("Topics.K", t.K, "the chosen K lies outside the search range")
		}
		if _, err := topics.ParseFormula(t.Formula); err != nil {
			errs = append(errs, err)
		}
		if t.Workers < 1 {
			bad("Topics.Workers", t.Workers, "need at least one worker")
		}
		if t.FrexWeight < 0 || t.FrexWeight > 1 {
			bad("Topics.FrexWeight", t.FrexWeight, "FREX weight must lie in [0, 1]")
		}
		if t.EffectField != "" && (t.EffectA == "" || t.EffectB == "" || t.EffectA == t.EffectB) {
			bad("Topics.EffectB", t.EffectB, "an effect needs two different levels")
		}
		if t.EffectLevel <= 0 || t.EffectLevel >= 1 {
			bad("Topics.EffectLevel", t.EffectLevel, "confidence level must lie in (0, 1)")
		}
	}

	return errors.Join(errs...)
}
