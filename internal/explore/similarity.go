//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package explore

import (
	"github.com/e-gun/NarrativeScope/internal/dfm"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"math"
	"strings"
)

//
// FEATURE SIMILARITY AND DISTANCE
//

const (
	SIMCOSINE      = "cosine"
	SIMCORRELATION = "correlation"
	DISTEUCLIDEAN  = "euclidean"
	DISTMANHATTAN  = "manhattan"
)

// SimOptions - Candidates restricts the comparison set; IncludeSelf reports the query term too
type SimOptions struct {
	IncludeSelf bool
	Candidates  []string
}

type SimRow struct {
	Feature string
	Score   float64
}

// SimTable - similarities are nearest first; distances are farthest first; a self row, if asked for, leads
type SimTable struct {
	Query    string
	Metric   string
	Distance bool
	Rows     []SimRow
}

type measure struct {
	fn       func(a, b []float64) float64
	distance bool
	perfect  float64
}

var measures = map[string]measure{
	SIMCOSINE:      {fn: cosine, distance: false, perfect: 1},
	SIMCORRELATION: {fn: correlation, distance: false, perfect: 1},
	DISTEUCLIDEAN:  {fn: func(a, b []float64) float64 { return floats.Distance(a, b, 2) }, distance: true, perfect: 0},
	DISTMANHATTAN:  {fn: func(a, b []float64) float64 { return floats.Distance(a, b, 1) }, distance: true, perfect: 0},
}

// cosine - 0 when either vector is all zeros
func cosine(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// correlation - Pearson; 0 when either vector is constant
func correlation(a, b []float64) float64 {
	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// Similarity - compare the query's document profile with every other feature's; n <= 0 means all of them
func Similarity(m *dfm.Matrix, term string, metric string, n int, o SimOptions) (SimTable, error) {
	if metric == "" {
		metric = SIMCOSINE
	}
	ms, ok := measures[metric]
	if !ok {
		return SimTable{}, &ConfigError{Field: "metric", Value: metric, Msg: "unknown similarity metric"}
	}

	q, ok := m.FeatureIndex(term)
	if !ok {
		return SimTable{}, &UnknownTermError{Term: term}
	}

	var cand []int
	if len(o.Candidates) == 0 {
		for j := 0; j < m.NFeatures(); j++ {
			if j != q {
				cand = append(cand, j)
			}
		}
	} else {
		for _, c := range o.Candidates {
			j, found := m.FeatureIndex(c)
			if !found {
				return SimTable{}, &UnknownTermError{Term: c}
			}
			cand = append(cand, j)
		}
	}

	feats := m.Features()
	qv := m.Column(q)
	self := o.IncludeSelf

	var rows []SimRow
	seen := make(map[int]struct{}, len(cand))
	for _, j := range cand {
		if _, dup := seen[j]; dup {
			continue
		}
		seen[j] = struct{}{}
		if j == q {
			// naming the query among the candidates is the same as asking for it
			self = true
			continue
		}
		rows = append(rows, SimRow{Feature: feats[j], Score: ms.fn(qv, m.Column(j))})
	}

	slices.SortFunc(rows, func(a, b SimRow) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return strings.Compare(a.Feature, b.Feature)
	})

	if n > 0 && n < len(rows) {
		rows = rows[:n]
	}

	if self {
		rows = append([]SimRow{{Feature: term, Score: ms.perfect}}, rows...)
	}

	return SimTable{Query: term, Metric: metric, Distance: ms.distance, Rows: rows}, nil
}

// SimilarityMany - Similarity() for several terms; a term that fails is reported and skipped
func SimilarityMany(m *dfm.Matrix, terms []string, metric string, n int, o SimOptions) ([]SimTable, map[string]error) {
	var out []SimTable
	failed := make(map[string]error)
	for _, t := range terms {
		st, err := Similarity(m, t, metric, n, o)
		if err != nil {
			failed[t] = err
			continue
		}
		out = append(out, st)
	}
	return out, failed
}
