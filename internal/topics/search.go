//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package topics

import (
	"context"
	"fmt"
	"github.com/e-gun/NarrativeScope/internal/dfm"
	"github.com/e-gun/NarrativeScope/internal/gen"
	"github.com/e-gun/NarrativeScope/internal/vv"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"math"
	"sync"
)

//
// K SEARCH
//

// SearchOptions - OnCandidate is called as each fit finishes, one call at a time
type SearchOptions struct {
	Workers     int
	TopM        int
	Epsilon     float64
	ExclWeight  float64
	KeepModels  bool
	OnCandidate func(c Candidate)
}

func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Workers:    1,
		TopM:       vv.TOPICCOHERENCEM,
		Epsilon:    0.01,
		ExclWeight: vv.TOPICEXCLW,
		KeepModels: true,
	}
}

// Candidate - the diagnostics for one K; Err is set instead when the fit failed
type Candidate struct {
	K           int
	Coherence   float64
	Exclusivity float64
	PerTopic    []TopicDiagnostic
	Model       *Model
	Err         error
}

type TopicDiagnostic struct {
	Coherence   float64
	Exclusivity float64
}

func (c Candidate) OK() bool { return c.Err == nil }

// dominates - at least as good on both counts and strictly better on one
func (c Candidate) dominates(o Candidate) bool {
	return c.Coherence >= o.Coherence && c.Exclusivity >= o.Exclusivity &&
		(c.Coherence > o.Coherence || c.Exclusivity > o.Exclusivity)
}

// SearchResult - one candidate per requested K, ascending
type SearchResult struct {
	Candidates []Candidate
}

func (r SearchResult) Get(k int) (Candidate, bool) {
	for _, c := range r.Candidates {
		if c.K == k {
			return c, true
		}
	}
	return Candidate{}, false
}

func (r SearchResult) Succeeded() []Candidate {
	return slices.DeleteFunc(slices.Clone(r.Candidates), func(c Candidate) bool { return !c.OK() })
}

func (r SearchResult) Failed() []Candidate {
	return slices.DeleteFunc(slices.Clone(r.Candidates), func(c Candidate) bool { return c.OK() })
}

// Frontier - the successful candidates no other candidate beats on both coherence and exclusivity
func (r SearchResult) Frontier() []Candidate {
	ok := r.Succeeded()
	var front []Candidate
	for _, c := range ok {
		beaten := false
		for _, o := range ok {
			if o.K != c.K && o.dominates(c) {
				beaten = true
				break
			}
		}
		if !beaten {
			front = append(front, c)
		}
	}
	return front
}

// KRange - lo..hi inclusive
func KRange(lo, hi int) []int {
	var ks []int
	for k := lo; k <= hi; k++ {
		ks = append(ks, k)
	}
	return ks
}

// Search - fit every K with a bounded pool of workers; a failing K is recorded and the others carry on;
// in.K is ignored
func Search(ctx context.Context, engine Engine, in Input, ks []int, o SearchOptions) SearchResult {
	ks = gen.Unique(ks)
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.TopM < 2 {
		o.TopM = vv.TOPICCOHERENCEM
	}

	out := make([]Candidate, len(ks))
	var mtx sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Workers)

	for i, k := range ks {
		g.Go(func() error {
			c := Candidate{K: k}
			kin := in
			kin.K = k
			mod, err := engine.Fit(gctx, kin)
			if err != nil {
				c.Err = err
			} else {
				c.PerTopic = Diagnose(mod, in.Matrix, o.TopM, o.Epsilon, o.ExclWeight)
				for _, d := range c.PerTopic {
					c.Coherence += d.Coherence
					c.Exclusivity += d.Exclusivity
				}
				c.Coherence /= float64(k)
				c.Exclusivity /= float64(k)
				if o.KeepModels {
					c.Model = mod
				}
			}
			out[i] = c
			if o.OnCandidate != nil {
				mtx.Lock()
				o.OnCandidate(c)
				mtx.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return SearchResult{Candidates: out}
}

// Diagnose - per-topic semantic coherence and exclusivity over the top M words of each topic
func Diagnose(mod *Model, m *dfm.Matrix, topm int, eps float64, exclw float64) []TopicDiagnostic {
	tops := make([][]int, mod.K())
	for t := 0; t < mod.K(); t++ {
		tops[t] = gen.Head(gen.ArgSortDesc(mod.TopicTerms(t)), topm)
	}
	coh := coherence(tops, m, eps)
	exc := exclusivity(mod, tops, exclw)
	dd := make([]TopicDiagnostic, mod.K())
	for t := range dd {
		dd[t] = TopicDiagnostic{Coherence: coh[t], Exclusivity: exc[t]}
	}
	return dd
}

// coherence - Mimno et al. 2011: sum over ranked pairs of log((D(wi, wj) + eps) / D(wj))
func coherence(tops [][]int, m *dfm.Matrix, eps float64) []float64 {
	docsof := make(map[int]map[int]struct{})
	for _, c := range m.Cells() {
		if c.N <= 0 {
			continue
		}
		if docsof[c.Feat] == nil {
			docsof[c.Feat] = make(map[int]struct{})
		}
		docsof[c.Feat][c.Doc] = struct{}{}
	}

	out := make([]float64, len(tops))
	for t, words := range tops {
		var s float64
		for i := 1; i < len(words); i++ {
			wi := docsof[words[i]]
			for j := 0; j < i; j++ {
				wj := docsof[words[j]]
				if len(wj) == 0 {
					continue
				}
				var both int
				for d := range wi {
					if _, ok := wj[d]; ok {
						both++
					}
				}
				s += math.Log((float64(both) + eps) / float64(len(wj)))
			}
		}
		out[t] = s
	}
	return out
}

// exclusivity - summed FREX of each topic's top words; w weighs exclusivity against frequency
func exclusivity(mod *Model, tops [][]int, w float64) []float64 {
	frex := frexmatrix(mod, w, false)
	out := make([]float64, len(tops))
	for t, words := range tops {
		for _, v := range words {
			out[t] += frex[t][v]
		}
	}
	return out
}

// frexmatrix - harmonic mean of the within-topic ECDF ranks of frequency and of exclusivity; with onfreq set the weight
// goes to frequency instead
func frexmatrix(mod *Model, w float64, onfreq bool) [][]float64 {
	k := mod.K()
	nv := len(mod.vocab)

	colsum := make([]float64, nv)
	for t := 0; t < k; t++ {
		for v := 0; v < nv; v++ {
			colsum[v] += mod.beta.At(t, v)
		}
	}

	out := make([][]float64, k)
	for t := 0; t < k; t++ {
		freq := mod.TopicTerms(t)
		excl := make([]float64, nv)
		for v := range excl {
			if colsum[v] > 0 {
				excl[v] = freq[v] / colsum[v]
			}
		}
		fr := ecdf(freq)
		ex := ecdf(excl)
		out[t] = make([]float64, nv)
		for v := 0; v < nv; v++ {
			if onfreq {
				out[t][v] = 1 / (w/fr[v] + (1-w)/ex[v])
			} else {
				out[t][v] = 1 / (w/ex[v] + (1-w)/fr[v])
			}
		}
	}
	return out
}

// ecdf - average rank / n, ties sharing their mean rank
func ecdf(ff []float64) []float64 {
	n := len(ff)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case ff[a] < ff[b]:
			return -1
		case ff[a] > ff[b]:
			return 1
		}
		return 0
	})
	out := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && ff[idx[j+1]] == ff[idx[i]] {
			j++
		}
		r := (float64(i+1) + float64(j+1)) / 2
		for x := i; x <= j; x++ {
			out[idx[x]] = r / float64(n)
		}
		i = j + 1
	}
	return out
}

//
// SELECTION
//

// SelectionPolicy - picks the K to carry forward from a search
type SelectionPolicy interface {
	Select(r SearchResult) (Candidate, error)
}

// Manual - a person reads the diagnostics; K may already have been given in the configuration
type Manual struct {
	K int
}

func (p Manual) Select(r SearchResult) (Candidate, error) {
	if p.K == 0 {
		return Candidate{}, ErrSelectionRequired
	}
	return pick(r, p.K)
}

// Fixed - always the same K
func Fixed(k int) SelectionPolicy { return fixed(k) }

type fixed int

func (p fixed) Select(r SearchResult) (Candidate, error) { return pick(r, int(p)) }

func pick(r SearchResult, k int) (Candidate, error) {
	c, ok := r.Get(k)
	if !ok {
		return Candidate{}, &ConfigError{Field: "K", Value: fmt.Sprintf("%d", k), Msg: "K was not among the candidates searched"}
	}
	if c.Err != nil {
		return Candidate{}, fmt.Errorf("topics: the selected K=%d did not fit: %w", k, c.Err)
	}
	return c, nil
}
