//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package dfm

import (
	"fmt"
	"github.com/kljensen/snowball/english"
)

const (
	STEMENGLISH = "english"
	STEMNONE    = "none"
)

// ConfigError - a matrix setting that cannot be honored
type ConfigError struct {
	Field string
	Value string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("dfm: %s (%s=%q)", e.Msg, e.Field, e.Value)
}

// Stemmer - token --> stem; must be deterministic
type Stemmer interface {
	Stem(string) string
	Name() string
}

// NewStemmer - "english" (Snowball/Porter2) or "none"
func NewStemmer(name string) (Stemmer, error) {
	switch name {
	case STEMENGLISH:
		return snowballstemmer{}, nil
	case STEMNONE, "":
		return identity{}, nil
	default:
		return nil, &ConfigError{Field: "Stemmer", Value: name, Msg: "unknown stemmer"}
	}
}

type snowballstemmer struct{}

func (snowballstemmer) Name() string { return STEMENGLISH }

// Stem - english.Stem also lowercases; 'true' means the stopwords get stemmed like everything else
func (snowballstemmer) Stem(s string) string {
	return english.Stem(s, true)
}

type identity struct{}

func (identity) Name() string { return STEMNONE }
func (identity) Stem(s string) string { return s }
