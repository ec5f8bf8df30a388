//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package topics

import (
	"fmt"
	"github.com/e-gun/NarrativeScope/internal/corp"
	"github.com/e-gun/NarrativeScope/internal/gen"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"math"
)

//
// TOPIC CORRELATION
//

type Edge struct {
	From   int
	To     int
	Weight float64
}

// Correlation - K x K Pearson correlations of the prevalence columns; Edges keeps the pairs above Cutoff
type Correlation struct {
	Cutoff float64
	Matrix *mat.SymDense
	Edges  []Edge
}

// At - 0 stands in for an undefined correlation
func (c Correlation) At(i, j int) float64 { return c.Matrix.At(i, j) }

// Correlate - pairwise correlation of topic prevalence across documents
func Correlate(mod *Model, cutoff float64) (Correlation, error) {
	if mod.NDocs() < 2 {
		return Correlation{}, &ConfigError{Field: "documents", Value: fmt.Sprintf("%d", mod.NDocs()), Msg: "correlation needs at least two documents"}
	}
	k := mod.K()
	cm := mat.NewSymDense(k, nil)
	stat.CorrelationMatrix(cm, mod.theta, nil)

	out := Correlation{Cutoff: cutoff, Matrix: cm}
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			if math.IsNaN(cm.At(i, j)) {
				cm.SetSym(i, j, 0)
			}
		}
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if w := cm.At(i, j); w > cutoff {
				out.Edges = append(out.Edges, Edge{From: i, To: j, Weight: w})
			}
		}
	}
	return out, nil
}

//
// REPRESENTATIVE DOCUMENTS
//

// Thought - a document that speaks strongly for a topic
type Thought struct {
	Topic  int
	Doc    int
	Name   string
	Weight float64
	Text   string
}

// Thoughts - the n documents with the highest share of each topic; Doc indexes the corpus, not the matrix
func Thoughts(mod *Model, c *corp.Corpus, n int) ([][]Thought, error) {
	for _, o := range mod.origin {
		if o < 0 || o >= c.NDocs() {
			return nil, &ConfigError{Field: "Corpus", Value: fmt.Sprintf("%d docs", c.NDocs()), Msg: "corpus does not cover the documents the model was fit on"}
		}
	}
	out := make([][]Thought, mod.K())
	for t := 0; t < mod.K(); t++ {
		prev := mod.Prevalence(t)
		for _, row := range gen.Head(gen.ArgSortDesc(prev), n) {
			d := mod.origin[row]
			out[t] = append(out[t], Thought{Topic: t, Doc: d, Name: c.Name(d), Weight: prev[row], Text: c.Text(d)})
		}
	}
	return out, nil
}

// TopicDominance - per topic: how many documents have it as their largest share, and its accumulated weight scaled
// so the heaviest topic is 1
type TopicDominance struct {
	Docs   []int
	Weight []float64
}

// Dominance - N documents have topic X as their dominant topic
func Dominance(mod *Model) TopicDominance {
	k := mod.K()
	d := TopicDominance{Docs: make([]int, k), Weight: make([]float64, k)}
	for doc := 0; doc < mod.NDocs(); doc++ {
		row := mod.DocTopics(doc)
		d.Docs[gen.ArgMax(row)]++
		for t, f := range row {
			d.Weight[t] += f
		}
	}
	if high := slices.Max(d.Weight); high > 0 {
		for t := range d.Weight {
			d.Weight[t] /= high
		}
	}
	return d
}
