//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package tok

import (
	"fmt"
	"github.com/e-gun/NarrativeScope/internal/corp"
	"golang.org/x/exp/slices"
	"strings"
)

// Kind - a token is either content or a gap left behind by a removal
type Kind uint8

const (
	Content Kind = iota
	Gap
)

const (
	GAPMARK = "·"
)

// Token - one slot in a stream; a Gap has no text
type Token struct {
	Kind Kind
	Text string
}

func Word(s string) Token { return Token{Kind: Content, Text: s} }
func GapToken() Token { return Token{Kind: Gap} }

func (t Token) IsGap() bool { return t.Kind == Gap }

// Stream - the ordered tokens of one document
type Stream []Token

// Content - the text of every non-gap token
func (s Stream) Content() []string {
	out := make([]string, 0, len(s))
	for _, t := range s {
		if t.Kind == Content {
			out = append(out, t.Text)
		}
	}
	return out
}

// NGaps - how many slots are padding
func (s Stream) NGaps() int {
	n := 0
	for _, t := range s {
		if t.Kind == Gap {
			n++
		}
	}
	return n
}

// String - space-joined, with a visible mark for each gap
func (s Stream) String() string {
	ss := make([]string, len(s))
	for i, t := range s {
		if t.Kind == Gap {
			ss[i] = GAPMARK
		} else {
			ss[i] = t.Text
		}
	}
	return strings.Join(ss, " ")
}

// Tokens - one Stream per document, in corpus order, with the covariates still attached
type Tokens struct {
	names []string
	docs  []Stream
	vars  *corp.Docvars
}

// NewTokens - wrap streams; names and streams must line up with the covariate rows
func NewTokens(names []string, docs []Stream, vars *corp.Docvars) (*Tokens, error) {
	if len(names) != len(docs) {
		return nil, &corp.CovariateAlignmentError{Docs: len(docs), Rows: len(names)}
	}
	if vars == nil {
		vars = corp.EmptyDocvars(len(docs))
	}
	if vars.NRows() != len(docs) {
		return nil, &corp.CovariateAlignmentError{Docs: len(docs), Rows: vars.NRows()}
	}
	cp := make([]Stream, len(docs))
	for i := range docs {
		cp[i] = slices.Clone(docs[i])
	}
	return &Tokens{names: slices.Clone(names), docs: cp, vars: vars}, nil
}

func (t *Tokens) NDocs() int { return len(t.docs) }
func (t *Tokens) Names() []string { return slices.Clone(t.names) }
func (t *Tokens) Docvars() *corp.Docvars { return t.vars }
func (t *Tokens) Doc(i int) Stream { return slices.Clone(t.docs[i]) }

// NTokens - per document slot counts, gaps included
func (t *Tokens) NTokens() []int {
	out := make([]int, len(t.docs))
	for i := range t.docs {
		out[i] = len(t.docs[i])
	}
	return out
}

// Select - a new Tokens with only the listed documents
func (t *Tokens) Select(idx []int) (*Tokens, error) {
	nn := make([]string, len(idx))
	dd := make([]Stream, len(idx))
	for i, j := range idx {
		if j < 0 || j >= len(t.docs) {
			return nil, fmt.Errorf("document %d out of range [0, %d)", j, len(t.docs))
		}
		nn[i] = t.names[j]
		dd[i] = t.docs[j]
	}
	dv, err := t.vars.Subset(idx)
	if err != nil {
		return nil, err
	}
	return NewTokens(nn, dd, dv)
}

// Equal - same names and same streams
func (t *Tokens) Equal(o *Tokens) bool {
	if !slices.Equal(t.names, o.names) || len(t.docs) != len(o.docs) {
		return false
	}
	for i := range t.docs {
		if !slices.Equal(t.docs[i], o.docs[i]) {
			return false
		}
	}
	return true
}
