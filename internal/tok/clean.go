//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package tok

import (
	"fmt"
	"github.com/e-gun/NarrativeScope/internal/corp"
	"github.com/e-gun/NarrativeScope/internal/vv"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"regexp"
	"strings"
	"unicode"
)

//
// TOKENIZATION AND CLEANING
//

// the steps always run in this order:
// 	[1] segment, dropping punctuation, symbols, numbers and URLs as configured
// 	[2] delete tokens that match any of Patterns
// 	[3] lowercase
// 	[4] stopwords --> Gap
// 	[5] tokens with runes outside Alphabet --> Gap

// ConfigError - the cleaning rules cannot be built as given
type ConfigError struct {
	Field string
	Value string
	Msg   string
	Err   error
}

func (e *ConfigError) Error() string {
	s := fmt.Sprintf("tok: %s (%s=%q)", e.Msg, e.Field, e.Value)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Range - an inclusive span of code points
type Range struct {
	Lo rune `yaml:"lo"`
	Hi rune `yaml:"hi"`
}

// DefaultPatterns - digit/hyphen-only tokens; tokens of one or two characters; pure punctuation
func DefaultPatterns() []string {
	return []string{`^[\d-]+$`, `^.{1,2}$`, `^\p{P}+$`}
}

// DefaultAlphabet - basic ASCII without NUL
func DefaultAlphabet() []Range {
	return []Range{{Lo: vv.DEFAULTALPHALO, Hi: vv.DEFAULTALPHAHI}}
}

// Config - every step can be switched off on its own
type Config struct {
	RemovePunct   bool     `yaml:"removepunct"`
	RemoveSymbols bool     `yaml:"removesymbols"`
	RemoveNumbers bool     `yaml:"removenumbers"`
	RemoveURL     bool     `yaml:"removeurl"`
	SplitHyphens  bool     `yaml:"splithyphens"`
	Patterns      []string `yaml:"patterns"`
	Lowercase     bool     `yaml:"lowercase"`
	StopList      string   `yaml:"stoplist"`
	ExtraStops    []string `yaml:"extrastops"`
	Alphabet      []Range  `yaml:"alphabet"` // empty disables step 5
	FoldAccents   bool     `yaml:"foldaccents"`
	Padding       bool     `yaml:"padding"` // false: steps 4 and 5 delete instead of leaving a Gap
}

// DefaultConfig - the settings used for survey narratives
func DefaultConfig() Config {
	return Config{
		RemovePunct:   true,
		RemoveSymbols: true,
		RemoveNumbers: true,
		RemoveURL:     true,
		SplitHyphens:  false,
		Patterns:      DefaultPatterns(),
		Lowercase:     true,
		StopList:      vv.DEFAULTSTOPLIST,
		Alphabet:      DefaultAlphabet(),
		FoldAccents:   false,
		Padding:       vv.DEFAULTPADDING,
	}
}

// Cleaner - a compiled Config; safe for concurrent use
type Cleaner struct {
	cfg      Config
	patterns []*regexp.Regexp
	stops    map[string]struct{}
}

// NewCleaner - compile the patterns and resolve the stop list; any problem is a ConfigError
func NewCleaner(cfg Config) (*Cleaner, error) {
	c := &Cleaner{cfg: cfg}

	for _, p := range cfg.Patterns {
		rx, err := regexp.Compile(p)
		if err != nil {
			return nil, &ConfigError{Field: "Patterns", Value: p, Msg: "invalid regular expression", Err: err}
		}
		c.patterns = append(c.patterns, rx)
	}

	stops, err := LoadStopList(cfg.StopList)
	if err != nil {
		return nil, err
	}
	for _, s := range cfg.ExtraStops {
		stops[strings.ToLower(s)] = struct{}{}
	}
	c.stops = stops

	for _, r := range cfg.Alphabet {
		if r.Lo > r.Hi {
			return nil, &ConfigError{Field: "Alphabet", Value: fmt.Sprintf("%U-%U", r.Lo, r.Hi), Msg: "range is backwards"}
		}
	}

	return c, nil
}

func (c *Cleaner) Config() Config { return c.cfg }
func (c *Cleaner) Stops() map[string]struct{} { return c.stops }
func (c *Cleaner) IsStop(s string) bool {
	_, ok := c.stops[strings.ToLower(s)]
	return ok
}

// Clean - run the five steps over every document of the corpus
func (c *Cleaner) Clean(cp *corp.Corpus) (*Tokens, error) {
	docs := make([]Stream, cp.NDocs())
	lc := cases.Lower(language.Und)
	for i := 0; i < cp.NDocs(); i++ {
		docs[i] = c.clean(cp.Text(i), lc)
	}
	return NewTokens(cp.Names(), docs, cp.Docvars())
}

// CleanText - run the five steps over a single string
func (c *Cleaner) CleanText(s string) Stream {
	return c.clean(s, cases.Lower(language.Und))
}

// clean - a cases.Caser keeps state, so each caller hands in its own
func (c *Cleaner) clean(text string, lc cases.Caser) Stream {
	var out Stream

	gapordrop := func() {
		if c.cfg.Padding {
			out = append(out, GapToken())
		}
	}

	var fold transform.Transformer
	if c.cfg.FoldAccents {
		fold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	}

	for _, rt := range segment(text, c.cfg.SplitHyphens) {
		// [1]
		switch rt.cl {
		case clPunct:
			if c.cfg.RemovePunct {
				continue
			}
		case clSymbol:
			if c.cfg.RemoveSymbols {
				continue
			}
		case clNumber:
			if c.cfg.RemoveNumbers {
				continue
			}
		case clURL:
			if c.cfg.RemoveURL {
				continue
			}
		}

		// [2]
		if c.matchesany(rt.text) {
			continue
		}

		w := rt.text

		// [3]
		if c.cfg.Lowercase {
			w = lc.String(w)
		}

		// [4]
		if c.IsStop(w) {
			gapordrop()
			continue
		}

		// [5]
		if len(c.cfg.Alphabet) > 0 {
			if fold != nil {
				if f, _, err := transform.String(fold, w); err == nil {
					w = f
				}
			}
			if !c.inalphabet(w) {
				gapordrop()
				continue
			}
		}

		out = append(out, Word(w))
	}
	return out
}

func (c *Cleaner) matchesany(s string) bool {
	for _, rx := range c.patterns {
		if rx.MatchString(s) {
			return true
		}
	}
	return false
}

// inalphabet - the "foreign residue" heuristic: every rune must sit inside one of the ranges
func (c *Cleaner) inalphabet(s string) bool {
	for _, r := range s {
		ok := false
		for _, rg := range c.cfg.Alphabet {
			if r >= rg.Lo && r <= rg.Hi {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
