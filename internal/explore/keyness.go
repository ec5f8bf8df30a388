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
	"gonum.org/v1/gonum/stat/distuv"
	"math"
	"strings"
)

//
// KEYNESS
//

const (
	KEYCHI2 = "chi2"
	KEYLR   = "lr"
)

// KeyRow - a positive Stat leans toward the target; a negative one toward the reference
type KeyRow struct {
	Feature    string
	Stat       float64
	P          float64
	NTarget    float64
	NReference float64
}

type KeyTable struct {
	Measure string
	Rows    []KeyRow
}

func (k KeyTable) Top(n int) []KeyRow { return gen.Head(k.Rows, n) }

// TargetSide - the n strongest target-leaning features
func (k KeyTable) TargetSide(n int) []KeyRow {
	return gen.Head(slices.DeleteFunc(slices.Clone(k.Rows), func(r KeyRow) bool { return r.Stat <= 0 }), n)
}

// ReferenceSide - the n strongest reference-leaning features
func (k KeyTable) ReferenceSide(n int) []KeyRow {
	return gen.Head(slices.DeleteFunc(slices.Clone(k.Rows), func(r KeyRow) bool { return r.Stat >= 0 }), n)
}

// Get - the row for a feature
func (k KeyTable) Get(feature string) (KeyRow, bool) {
	for _, r := range k.Rows {
		if r.Feature == feature {
			return r, true
		}
	}
	return KeyRow{}, false
}

// Keyness - contrast the target documents with all of the others; "" means chi2
func Keyness(m *dfm.Matrix, target []bool, measure string) (KeyTable, error) {
	if measure == "" {
		measure = KEYCHI2
	}
	if measure != KEYCHI2 && measure != KEYLR {
		return KeyTable{}, &ConfigError{Field: "measure", Value: measure, Msg: "unknown keyness measure"}
	}
	if len(target) != m.NDocs() {
		return KeyTable{}, &ConfigError{Field: "target", Value: fmt.Sprintf("%d flags", len(target)),
			Msg: fmt.Sprintf("target must flag each of the %d documents", m.NDocs())}
	}
	nt := gen.ContainsN(target, true)
	if nt == 0 || nt == len(target) {
		return KeyTable{}, &ConfigError{Field: "target", Value: fmt.Sprintf("%d of %d", nt, len(target)),
			Msg: "target and reference must both be non-empty"}
	}

	nf := m.NFeatures()
	tcount := make([]float64, nf)
	rcount := make([]float64, nf)
	for _, c := range m.Cells() {
		if target[c.Doc] {
			tcount[c.Feat] += c.N
		} else {
			rcount[c.Feat] += c.N
		}
	}

	var ttot, rtot float64
	for j := 0; j < nf; j++ {
		ttot += tcount[j]
		rtot += rcount[j]
	}

	feats := m.Features()
	chi := distuv.ChiSquared{K: 1}

	rows := make([]KeyRow, nf)
	for j := 0; j < nf; j++ {
		a, b := tcount[j], rcount[j]
		c, d := ttot-a, rtot-b
		var s float64
		if measure == KEYCHI2 {
			s = chi2yates(a, b, c, d)
		} else {
			s = likelihoodratio(a, b, c, d)
		}
		p := 1.0
		if s > 0 {
			p = chi.Survival(s)
		}
		rows[j] = KeyRow{Feature: feats[j], Stat: direction(a, b, c, d) * s, P: p, NTarget: a, NReference: b}
	}

	slices.SortFunc(rows, func(x, y KeyRow) int {
		ax, ay := math.Abs(x.Stat), math.Abs(y.Stat)
		switch {
		case ax > ay:
			return -1
		case ax < ay:
			return 1
		}
		return strings.Compare(x.Feature, y.Feature)
	})

	return KeyTable{Measure: measure, Rows: rows}, nil
}

// direction - +1 when the feature's share of the target exceeds its share of the reference
func direction(a, b, c, d float64) float64 {
	switch x := a*d - b*c; {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// chi2yates - 2x2 Pearson chi-squared; the N/2 correction is only applied while it cannot flip the sign of |ad-bc|
func chi2yates(a, b, c, d float64) float64 {
	n := a + b + c + d
	den := (a + b) * (c + d) * (a + c) * (b + d)
	if den == 0 {
		return 0
	}
	diff := math.Abs(a*d - b*c)
	if diff >= n/2 {
		diff -= n / 2
	}
	return n * diff * diff / den
}

// likelihoodratio - G2 over the 2x2 table, no Williams correction
func likelihoodratio(a, b, c, d float64) float64 {
	n := a + b + c + d
	if n == 0 {
		return 0
	}
	obs := [4]float64{a, b, c, d}
	exp := [4]float64{
		(a + b) * (a + c) / n,
		(a + b) * (b + d) / n,
		(c + d) * (a + c) / n,
		(c + d) * (b + d) / n,
	}
	var g float64
	for i := range obs {
		if obs[i] > 0 && exp[i] > 0 {
			g += obs[i] * math.Log(obs[i]/exp[i])
		}
	}
	return math.Max(0, 2*g)
}
