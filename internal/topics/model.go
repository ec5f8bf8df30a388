//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package topics

import (
	"context"
	"errors"
	"fmt"
	"github.com/e-gun/NarrativeScope/internal/corp"
	"github.com/e-gun/NarrativeScope/internal/dfm"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
	"strings"
)

// ErrSelectionRequired - nobody has said which K to keep
var ErrSelectionRequired = errors.New("topics: choose K from the search diagnostics (set a K or use a fixed selection policy)")

// ConfigError - a fit or summary was asked for with settings it cannot use
type ConfigError struct {
	Field string
	Value string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("topics: %s (%s=%q)", e.Msg, e.Field, e.Value)
}

// InferenceError - the engine could not produce a model for this K
type InferenceError struct {
	K    int
	Docs []string
	Msg  string
	Err  error
}

func (e *InferenceError) Error() string {
	s := fmt.Sprintf("topics: K=%d: %s", e.K, e.Msg)
	if len(e.Docs) > 0 {
		s += fmt.Sprintf(" [%s]", strings.Join(e.Docs, ", "))
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *InferenceError) Unwrap() error { return e.Err }

// Input - what an Engine fits; Origin maps matrix rows back to corpus documents when rows were dropped
type Input struct {
	Matrix  *dfm.Matrix
	K       int
	Formula Formula
	Seed    uint64
	Origin  []int
}

// Engine - anything that can turn a count matrix into document-topic and topic-term distributions
type Engine interface {
	Name() string
	Fit(ctx context.Context, in Input) (*Model, error)
}

// Model - theta is documents x K, beta is K x vocabulary; every row of each sums to 1
type Model struct {
	k       int
	engine  string
	seed    uint64
	formula Formula
	vocab   []string
	docs    []string
	origin  []int
	vars    *corp.Docvars
	theta   *mat.Dense
	beta    *mat.Dense
}

// NewModel - wrap a pair of distributions; rows are renormalized and negative mass is refused
func NewModel(in Input, engine string, theta, beta mat.Matrix) (*Model, error) {
	m := in.Matrix
	nd, nv := m.NDocs(), m.NFeatures()
	tr, tc := theta.Dims()
	br, bc := beta.Dims()
	if tr != nd || tc != in.K || br != in.K || bc != nv {
		return nil, &InferenceError{K: in.K, Msg: fmt.Sprintf("engine returned theta %dx%d and beta %dx%d for %d docs and %d features", tr, tc, br, bc, nd, nv)}
	}

	th, err := rownormalize(theta)
	if err != nil {
		return nil, &InferenceError{K: in.K, Msg: "document-topic distribution", Err: err}
	}
	be, err := rownormalize(beta)
	if err != nil {
		return nil, &InferenceError{K: in.K, Msg: "topic-term distribution", Err: err}
	}

	origin := slices.Clone(in.Origin)
	if origin == nil {
		origin = make([]int, nd)
		for i := range origin {
			origin[i] = i
		}
	}
	if len(origin) != nd {
		return nil, &ConfigError{Field: "Origin", Value: fmt.Sprintf("%d rows", len(origin)), Msg: fmt.Sprintf("origin must map each of the %d documents", nd)}
	}

	return &Model{
		k:       in.K,
		engine:  engine,
		seed:    in.Seed,
		formula: in.Formula,
		vocab:   m.Features(),
		docs:    m.DocNames(),
		origin:  origin,
		vars:    m.Docvars(),
		theta:   th,
		beta:    be,
	}, nil
}

var errbadmass = errors.New("row has no probability mass or holds a NaN")

func rownormalize(src mat.Matrix) (*mat.Dense, error) {
	r, c := src.Dims()
	d := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		var s float64
		for j := 0; j < c; j++ {
			v := src.At(i, j)
			if v < 0 || v != v {
				return nil, fmt.Errorf("row %d: %w", i, errbadmass)
			}
			s += v
		}
		if s == 0 {
			return nil, fmt.Errorf("row %d: %w", i, errbadmass)
		}
		for j := 0; j < c; j++ {
			d.Set(i, j, src.At(i, j)/s)
		}
	}
	return d, nil
}

func (m *Model) K() int { return m.k }
func (m *Model) Engine() string { return m.engine }
func (m *Model) Seed() uint64 { return m.seed }
func (m *Model) Formula() Formula { return m.formula }
func (m *Model) Vocabulary() []string { return slices.Clone(m.vocab) }
func (m *Model) DocNames() []string { return slices.Clone(m.docs) }
func (m *Model) Origin() []int { return slices.Clone(m.origin) }
func (m *Model) Docvars() *corp.Docvars { return m.vars }
func (m *Model) NDocs() int { return len(m.docs) }

// Theta - a copy of the document-topic matrix
func (m *Model) Theta() *mat.Dense { return mat.DenseCopyOf(m.theta) }

// Beta - a copy of the topic-term matrix
func (m *Model) Beta() *mat.Dense { return mat.DenseCopyOf(m.beta) }

// DocTopics - one document's topic proportions
func (m *Model) DocTopics(doc int) []float64 { return mat.Row(nil, doc, m.theta) }

// TopicTerms - one topic's term probabilities, vocabulary order
func (m *Model) TopicTerms(topic int) []float64 { return mat.Row(nil, topic, m.beta) }

// Prevalence - one topic's share of every document
func (m *Model) Prevalence(topic int) []float64 { return mat.Col(nil, topic, m.theta) }

//
// PREVALENCE FORMULA
//

// Formula - the covariates topic prevalence is allowed to vary with: "~ gender + urban"
type Formula struct {
	Terms []string
}

// ParseFormula - "", "~", "~ 1" are all the empty formula
func ParseFormula(s string) (Formula, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Formula{}, nil
	}
	if !strings.HasPrefix(s, "~") {
		return Formula{}, &ConfigError{Field: "Formula", Value: s, Msg: "a prevalence formula starts with '~'"}
	}
	body := strings.TrimSpace(strings.TrimPrefix(s, "~"))
	if body == "" || body == "1" {
		return Formula{}, nil
	}
	var f Formula
	for _, t := range strings.Split(body, "+") {
		t = strings.TrimSpace(t)
		if t == "" || strings.ContainsAny(t, "~*:()^ ") {
			return Formula{}, &ConfigError{Field: "Formula", Value: s, Msg: fmt.Sprintf("cannot use term %q; only 'a + b' sums of covariates are understood", t)}
		}
		if slices.Contains(f.Terms, t) {
			return Formula{}, &ConfigError{Field: "Formula", Value: s, Msg: fmt.Sprintf("term %q appears twice", t)}
		}
		f.Terms = append(f.Terms, t)
	}
	return f, nil
}

func (f Formula) IsEmpty() bool { return len(f.Terms) == 0 }

func (f Formula) String() string {
	if f.IsEmpty() {
		return "~ 1"
	}
	return "~ " + strings.Join(f.Terms, " + ")
}

// Check - every term has to be a covariate
func (f Formula) Check(vars *corp.Docvars) error {
	for _, t := range f.Terms {
		if !vars.Has(t) {
			return &corp.UnknownFieldError{Field: t, Fields: vars.Fields()}
		}
	}
	return nil
}
