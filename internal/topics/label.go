//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package topics

import (
	"fmt"
	"github.com/e-gun/NarrativeScope/internal/dfm"
	"github.com/e-gun/NarrativeScope/internal/gen"
	"golang.org/x/exp/slices"
	"math"
	"strings"
)

// TopicLabels - four rankings of one topic's vocabulary
type TopicLabels struct {
	Topic int
	Prob  []string
	FREX  []string
	Lift  []string
	Score []string
}

func (l TopicLabels) String() string {
	return fmt.Sprintf("Topic %d\n\tHighest Prob: %s\n\tFREX: %s\n\tLift: %s\n\tScore: %s", l.Topic+1,
		strings.Join(l.Prob, ", "), strings.Join(l.FREX, ", "), strings.Join(l.Lift, ", "), strings.Join(l.Score, ", "))
}

// LabelSizes - how long each list should be; 0 leaves a list out
type LabelSizes struct {
	Prob  int
	FREX  int
	Lift  int
	Score int
}

// Label - n words per list for every topic; frexw is the weight on frequency in the FREX ranking
func Label(mod *Model, m *dfm.Matrix, n int, frexw float64) ([]TopicLabels, error) {
	return LabelSized(mod, m, LabelSizes{Prob: n, FREX: n, Lift: n, Score: n}, frexw)
}

// LabelSized - Label() with an independent size for each list
func LabelSized(mod *Model, m *dfm.Matrix, sz LabelSizes, frexw float64) ([]TopicLabels, error) {
	if frexw < 0 || frexw > 1 {
		return nil, &ConfigError{Field: "frexweight", Value: fmt.Sprintf("%g", frexw), Msg: "weight must lie in [0, 1]"}
	}
	if !slices.Equal(m.Features(), mod.vocab) {
		return nil, &ConfigError{Field: "Matrix", Value: fmt.Sprintf("%d features", m.NFeatures()), Msg: "matrix vocabulary differs from the model's"}
	}

	k := mod.K()
	nv := len(mod.vocab)

	tot := m.FeatureTotals()
	var all float64
	for _, t := range tot {
		all += t
	}

	// mean log probability of each word across topics
	meanlog := make([]float64, nv)
	for t := 0; t < k; t++ {
		for v := 0; v < nv; v++ {
			meanlog[v] += safelog(mod.beta.At(t, v)) / float64(k)
		}
	}

	frex := frexmatrix(mod, frexw, true)

	words := func(order []int, n int) []string {
		out := make([]string, 0, n)
		for _, v := range gen.Head(order, n) {
			out = append(out, mod.vocab[v])
		}
		return out
	}

	out := make([]TopicLabels, k)
	for t := 0; t < k; t++ {
		beta := mod.TopicTerms(t)
		lift := make([]float64, nv)
		score := make([]float64, nv)
		for v := 0; v < nv; v++ {
			if tot[v] > 0 && all > 0 {
				lift[v] = beta[v] / (tot[v] / all)
			}
			score[v] = beta[v] * (safelog(beta[v]) - meanlog[v])
		}
		out[t] = TopicLabels{
			Topic: t,
			Prob:  words(gen.ArgSortDesc(beta), sz.Prob),
			FREX:  words(gen.ArgSortDesc(frex[t]), sz.FREX),
			Lift:  words(gen.ArgSortDesc(lift), sz.Lift),
			Score: words(gen.ArgSortDesc(score), sz.Score),
		}
	}
	return out, nil
}

func safelog(f float64) float64 {
	if f <= 0 {
		return math.Log(math.SmallestNonzeroFloat64)
	}
	return math.Log(f)
}
