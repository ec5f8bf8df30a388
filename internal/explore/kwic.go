//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package explore

import (
	"fmt"
	"github.com/e-gun/NarrativeScope/internal/corp"
	"github.com/e-gun/NarrativeScope/internal/dfm"
	"github.com/e-gun/NarrativeScope/internal/tok"
	"github.com/gobwas/glob"
	"strings"
)

//
// KEYWORD IN CONTEXT
//

// Entry - a category label and its glob patterns ("work*", "salar*", ...)
type Entry struct {
	Category string   `yaml:"category"`
	Patterns []string `yaml:"patterns"`
}

type compiled struct {
	category string
	pattern  string
	exact    glob.Glob
	folded   glob.Glob
}

// Dictionary - ordered entries; when a token fits more than one, the earliest entry wins
type Dictionary struct {
	entries []Entry
	globs   []compiled
}

// NewDictionary - compile every pattern twice: as written and lowercased
func NewDictionary(entries []Entry) (*Dictionary, error) {
	d := &Dictionary{}
	for _, e := range entries {
		if strings.TrimSpace(e.Category) == "" {
			return nil, &ConfigError{Field: "Category", Value: e.Category, Msg: "dictionary entry has no category"}
		}
		if len(e.Patterns) == 0 {
			return nil, &ConfigError{Field: "Patterns", Value: e.Category, Msg: "dictionary entry has no patterns"}
		}
		for _, p := range e.Patterns {
			ex, err := glob.Compile(p)
			if err != nil {
				return nil, &ConfigError{Field: "Patterns", Value: p, Msg: "invalid glob: " + err.Error()}
			}
			fo, err := glob.Compile(strings.ToLower(p))
			if err != nil {
				return nil, &ConfigError{Field: "Patterns", Value: p, Msg: "invalid glob: " + err.Error()}
			}
			d.globs = append(d.globs, compiled{category: e.Category, pattern: p, exact: ex, folded: fo})
		}
		d.entries = append(d.entries, e)
	}
	if len(d.globs) == 0 {
		return nil, &ConfigError{Field: "Dictionary", Value: "", Msg: "dictionary is empty"}
	}
	return d, nil
}

func (d *Dictionary) Entries() []Entry { return d.entries }

// Match - the first category whose pattern fits the token
func (d *Dictionary) Match(s string, caseinsensitive bool) (category string, pattern string, ok bool) {
	ls := s
	if caseinsensitive {
		ls = strings.ToLower(s)
	}
	for _, g := range d.globs {
		var hit bool
		if caseinsensitive {
			hit = g.folded.Match(ls)
		} else {
			hit = g.exact.Match(s)
		}
		if hit {
			return g.category, g.pattern, true
		}
	}
	return "", "", false
}

type KWICOptions struct {
	CaseInsensitive bool
}

// Hit - one matching token with W slots either side; gaps count toward W
type Hit struct {
	Doc      int
	DocName  string
	Position int
	Left     tok.Stream
	Match    string
	Right    tok.Stream
	Category string
	Pattern  string
}

// Context - the surviving words of the window, match included
func (h Hit) Context() string {
	ww := append(h.Left.Content(), h.Match)
	return strings.Join(append(ww, h.Right.Content()...), " ")
}

func (h Hit) String() string {
	return fmt.Sprintf("[%s:%d] %s | %s | %s (%s)", h.DocName, h.Position, h.Left.String(), h.Match, h.Right.String(), h.Category)
}

// KWIC - one hit for every content token that fits the dictionary, in document then position order
func KWIC(tk *tok.Tokens, d *Dictionary, window int, o KWICOptions) ([]Hit, error) {
	if window < 0 {
		return nil, &ConfigError{Field: "window", Value: fmt.Sprintf("%d", window), Msg: "window cannot be negative"}
	}
	if d == nil {
		return nil, &ConfigError{Field: "Dictionary", Value: "", Msg: "no dictionary"}
	}

	names := tk.Names()
	var hits []Hit
	for i := 0; i < tk.NDocs(); i++ {
		s := tk.Doc(i)
		for p, t := range s {
			if t.IsGap() {
				continue
			}
			cat, pat, ok := d.Match(t.Text, o.CaseInsensitive)
			if !ok {
				continue
			}
			lo := max(0, p-window)
			hi := min(len(s), p+1+window)
			hits = append(hits, Hit{
				Doc:      i,
				DocName:  names[i],
				Position: p,
				Left:     append(tok.Stream{}, s[lo:p]...),
				Match:    t.Text,
				Right:    append(tok.Stream{}, s[p+1:hi]...),
				Category: cat,
				Pattern:  pat,
			})
		}
	}
	return hits, nil
}

// ContextVocabulary - what the dictionary terms are surrounded by: each hit window is cleaned again, the dictionary's
// own terms are dropped, and the remainder is stemmed, counted, trimmed and ranked
func ContextVocabulary(hits []Hit, cl *tok.Cleaner, st dfm.Stemmer, d *Dictionary, mincount float64, o KWICOptions) (FreqTable, error) {
	names := make([]string, len(hits))
	docs := make([]tok.Stream, len(hits))
	for i, h := range hits {
		names[i] = fmt.Sprintf("hit%d", i+1)
		var kept tok.Stream
		for _, t := range cl.CleanText(h.Context()) {
			if !t.IsGap() {
				if _, _, ok := d.Match(t.Text, o.CaseInsensitive); ok {
					continue
				}
			}
			kept = append(kept, t)
		}
		docs[i] = kept
	}

	tk, err := tok.NewTokens(names, docs, corp.EmptyDocvars(len(docs)))
	if err != nil {
		return FreqTable{}, err
	}
	m, err := dfm.Build(tk, st)
	if err != nil {
		return FreqTable{}, err
	}
	return Frequency(m.Trim(mincount)), nil
}
