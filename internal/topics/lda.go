//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package topics

import (
	"context"
	"fmt"
	"github.com/e-gun/NarrativeScope/internal/vv"
	"github.com/e-gun/nlp"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

//see https://github.com/james-bowman/nlp/blob/26d441fa0ded/lda.go for the upstream defaults

// LDAEngine - online variational LDA; one process per fit so that a seed always yields the same model
type LDAEngine struct {
	Iterations           int
	TransformationPasses int
	BurnInPasses         int
	Alpha                float64
	Eta                  float64
	BatchSize            int
}

func NewLDAEngine() *LDAEngine {
	return &LDAEngine{
		Iterations:           vv.LDAITER,
		TransformationPasses: vv.LDAXFORMPASSES,
		BurnInPasses:         vv.LDABURNINPASSES,
		Alpha:                vv.LDAALPHA,
		Eta:                  vv.LDAETA,
		BatchSize:            vv.LDABATCHSIZE,
	}
}

func (e *LDAEngine) Name() string { return "lda" }

// Fit - build the lda model for the matrix
func (e *LDAEngine) Fit(ctx context.Context, in Input) (mod *Model, err error) {
	if err = validate(in); err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, &InferenceError{K: in.K, Msg: "fit abandoned", Err: err}
	}

	lda := nlp.NewLatentDirichletAllocation(in.K)
	lda.Processes = 1
	lda.Iterations = e.Iterations
	lda.TransformationPasses = e.TransformationPasses
	lda.BurnInPasses = e.BurnInPasses
	lda.Alpha = e.Alpha
	lda.Eta = e.Eta
	lda.BatchSize = e.BatchSize
	lda.PerplexityTolerance = vv.LDAPERPTOL
	lda.PerplexityEvaluationFrequency = vv.LDAPERPEVALFRQ
	lda.MeanChangeTolerance = vv.LDAMEANCHGTOL
	lda.ChangeEvaluationFrequency = vv.LDACHGEVALFRQ
	lda.Rnd = rand.New(rand.NewSource(in.Seed))

	// the library panics on some degenerate inputs
	defer func() {
		if r := recover(); r != nil {
			mod = nil
			err = &InferenceError{K: in.K, Msg: fmt.Sprintf("engine panicked: %v", r)}
		}
	}()

	docsOverTopics, ferr := lda.FitTransform(in.Matrix.TermDocCSC())
	if ferr != nil {
		return nil, &InferenceError{K: in.K, Msg: "engine failed", Err: ferr}
	}
	topicsOverWords := lda.Components()

	// docsOverTopics is K x docs
	var theta mat.Dense
	theta.CloneFrom(docsOverTopics.T())

	return NewModel(in, e.Name(), &theta, topicsOverWords)
}

// validate - the checks every engine owes its caller before any work is done
func validate(in Input) error {
	m := in.Matrix
	if m == nil || m.NDocs() == 0 {
		return &InferenceError{K: in.K, Msg: "nothing to fit: the matrix has no documents"}
	}
	if in.K < 2 || in.K > m.NFeatures() {
		return &ConfigError{Field: "K", Value: fmt.Sprintf("%d", in.K), Msg: fmt.Sprintf("K must lie in [2, %d], the size of the vocabulary", m.NFeatures())}
	}
	if empty := m.EmptyDocs(); len(empty) > 0 {
		names := m.DocNames()
		dd := make([]string, len(empty))
		for i, d := range empty {
			dd[i] = names[d]
		}
		return &InferenceError{K: in.K, Docs: dd, Msg: fmt.Sprintf("%d document(s) have no surviving features", len(dd))}
	}
	if err := in.Formula.Check(m.Docvars()); err != nil {
		return &ConfigError{Field: "Formula", Value: in.Formula.String(), Msg: err.Error()}
	}
	return nil
}
