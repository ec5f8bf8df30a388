//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package corp

import (
	"fmt"
	"golang.org/x/exp/slices"
	"strings"
	"unicode"
)

// CovariateAlignmentError - the covariate table and the documents do not line up
type CovariateAlignmentError struct {
	Docs int
	Rows int
}

func (e *CovariateAlignmentError) Error() string {
	return fmt.Sprintf("covariate table has %d rows but the corpus has %d documents", e.Rows, e.Docs)
}

// Corpus - the narratives plus their covariates; never modified once built
type Corpus struct {
	names []string
	texts []string
	vars  *Docvars
}

// New - validate and wrap; a nil vars means "no covariates"
func New(names []string, texts []string, vars *Docvars) (*Corpus, error) {
	if len(names) != len(texts) {
		return nil, &CovariateAlignmentError{Docs: len(texts), Rows: len(names)}
	}
	if vars == nil {
		vars = EmptyDocvars(len(texts))
	}
	if vars.NRows() != len(texts) {
		return nil, &CovariateAlignmentError{Docs: len(texts), Rows: vars.NRows()}
	}
	return &Corpus{names: slices.Clone(names), texts: slices.Clone(texts), vars: vars}, nil
}

func (c *Corpus) NDocs() int { return len(c.texts) }
func (c *Corpus) Names() []string { return slices.Clone(c.names) }
func (c *Corpus) Texts() []string { return slices.Clone(c.texts) }
func (c *Corpus) Text(i int) string { return c.texts[i] }
func (c *Corpus) Name(i int) string { return c.names[i] }
func (c *Corpus) Docvars() *Docvars { return c.vars }

// Subset - a new corpus with only the listed documents
func (c *Corpus) Subset(idx []int) (*Corpus, error) {
	nn := make([]string, len(idx))
	tt := make([]string, len(idx))
	for i, j := range idx {
		if j < 0 || j >= len(c.texts) {
			return nil, fmt.Errorf("document %d out of range [0, %d)", j, len(c.texts))
		}
		nn[i] = c.names[j]
		tt[i] = c.texts[j]
	}
	dv, err := c.vars.Subset(idx)
	if err != nil {
		return nil, err
	}
	return New(nn, tt, dv)
}

// DocSummary - one row of Summary()
type DocSummary struct {
	Name   string
	Types  int
	Tokens int
}

// Summary - rough per-document type and token counts of the raw text; split on whitespace, lowercased
func (c *Corpus) Summary() []DocSummary {
	out := make([]DocSummary, len(c.texts))
	for i, t := range c.texts {
		ww := strings.FieldsFunc(strings.ToLower(t), func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsPunct(r)
		})
		seen := make(map[string]struct{}, len(ww))
		for _, w := range ww {
			seen[w] = struct{}{}
		}
		out[i] = DocSummary{Name: c.names[i], Types: len(seen), Tokens: len(ww)}
	}
	return out
}

// DefaultNames - "text1", "text2", ...
func DefaultNames(n int) []string {
	nn := make([]string, n)
	for i := range nn {
		nn[i] = fmt.Sprintf("text%d", i+1)
	}
	return nn
}
