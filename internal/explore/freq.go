//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package explore

import (
	"fmt"
	"github.com/e-gun/NarrativeScope/internal/dfm"
	"github.com/e-gun/NarrativeScope/internal/gen"
	"golang.org/x/exp/slices"
	"strings"
)

// ConfigError - an analysis was asked for with settings it cannot use
type ConfigError struct {
	Field string
	Value string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("explore: %s (%s=%q)", e.Msg, e.Field, e.Value)
}

// UnknownTermError - the term did not survive trimming (or was never there)
type UnknownTermError struct {
	Term string
}

func (e *UnknownTermError) Error() string {
	return fmt.Sprintf("explore: '%s' is not in the vocabulary; check that it survived trimming", e.Term)
}

//
// FREQUENCY
//

type FreqRow struct {
	Feature   string
	Frequency float64
	Rank      int
	DocFreq   int
}

// FreqTable - rows by descending count; ties in lexical order; Rank is 1-based
type FreqTable struct {
	Group string
	Rows  []FreqRow
}

func (f FreqTable) Top(n int) []FreqRow { return gen.Head(f.Rows, n) }
func (f FreqTable) Bottom(n int) []FreqRow { return gen.Tail(f.Rows, n) }
func (f FreqTable) Len() int { return len(f.Rows) }

// Get - the row for a feature
func (f FreqTable) Get(feature string) (FreqRow, bool) {
	for _, r := range f.Rows {
		if r.Feature == feature {
			return r, true
		}
	}
	return FreqRow{}, false
}

// Frequency - rank every feature of the matrix
func Frequency(m *dfm.Matrix) FreqTable {
	feats := m.Features()
	tot := m.FeatureTotals()
	df := m.DocFreq()

	rows := make([]FreqRow, len(feats))
	for j := range feats {
		rows[j] = FreqRow{Feature: feats[j], Frequency: tot[j], DocFreq: df[j]}
	}
	rankrows(rows)
	return FreqTable{Rows: rows}
}

func rankrows(rows []FreqRow) {
	slices.SortFunc(rows, func(a, b FreqRow) int {
		switch {
		case a.Frequency > b.Frequency:
			return -1
		case a.Frequency < b.Frequency:
			return 1
		}
		return strings.Compare(a.Feature, b.Feature)
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
}

// FrequencyBy - one table per level of a covariate; features with no count in a group are left out of its table
func FrequencyBy(m *dfm.Matrix, field string) ([]FreqTable, error) {
	levels, err := m.Docvars().Levels(field)
	if err != nil {
		return nil, err
	}
	col, _ := m.Docvars().Column(field)

	var out []FreqTable
	for _, lv := range levels {
		var idx []int
		for i, v := range col {
			if v == lv {
				idx = append(idx, i)
			}
		}
		sub, serr := m.SubsetDocs(idx)
		if serr != nil {
			return nil, serr
		}
		ft := Frequency(sub)
		ft.Rows = slices.DeleteFunc(ft.Rows, func(r FreqRow) bool { return r.Frequency == 0 })
		for i := range ft.Rows {
			ft.Rows[i].Rank = i + 1
		}
		ft.Group = lv
		out = append(out, ft)
	}
	return out, nil
}
