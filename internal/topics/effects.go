//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package topics

import (
	"fmt"
	"github.com/e-gun/NarrativeScope/internal/vv"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"math"
)

//
// COVARIATE EFFECTS
//

// Effect - expected prevalence at level A minus that at level B, with a Student-t interval
type Effect struct {
	Topic       int
	Estimate    float64
	StdErr      float64
	Lower       float64
	Upper       float64
	Significant bool
}

type EffectTable struct {
	Field  string
	LevelA string
	LevelB string
	Level  float64
	DF     int
	Rows   []Effect
}

// Significant - the topics whose interval excludes zero
func (t EffectTable) Significant() []Effect {
	return slices.DeleteFunc(slices.Clone(t.Rows), func(e Effect) bool { return !e.Significant })
}

// EstimateEffect - regress each topic's prevalence on indicator columns for the field's levels (and for the other
// formula covariates as controls) and contrast levelA with levelB; level is the interval coverage, 0 meaning 0.95
func EstimateEffect(mod *Model, field string, levelA string, levelB string, level float64) (EffectTable, error) {
	if level == 0 {
		level = vv.TOPICEFFECTLEVEL
	}
	if level <= 0 || level >= 1 {
		return EffectTable{}, &ConfigError{Field: "level", Value: fmt.Sprintf("%g", level), Msg: "interval coverage must lie in (0, 1)"}
	}
	if levelA == levelB {
		return EffectTable{}, &ConfigError{Field: "levels", Value: levelA, Msg: "the two levels must differ"}
	}

	vars := mod.Docvars()
	if !vars.Has(field) {
		return EffectTable{}, &ConfigError{Field: "field", Value: field, Msg: fmt.Sprintf("not a covariate; have %v", vars.Fields())}
	}

	fields := []string{field}
	for _, t := range mod.Formula().Terms {
		if t != field {
			fields = append(fields, t)
		}
	}

	// column 0 is the intercept; each field contributes one column per non-reference level
	n := mod.NDocs()
	type block struct {
		levels []string
		col    map[string]int
	}
	blocks := make([]block, len(fields))
	p := 1
	for b, f := range fields {
		lv, err := vars.Levels(f)
		if err != nil {
			return EffectTable{}, err
		}
		blocks[b] = block{levels: lv, col: make(map[string]int)}
		for _, l := range lv[1:] {
			blocks[b].col[l] = p
			p++
		}
	}

	for _, l := range []string{levelA, levelB} {
		if !slices.Contains(blocks[0].levels, l) {
			return EffectTable{}, &ConfigError{Field: field, Value: l, Msg: fmt.Sprintf("not a level; have %v", blocks[0].levels)}
		}
	}

	df := n - p
	if df < 1 {
		return EffectTable{}, &ConfigError{Field: "documents", Value: fmt.Sprintf("%d", n), Msg: fmt.Sprintf("%d parameters need more than %d documents", p, n)}
	}

	x := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
		for b, f := range fields {
			v, _ := vars.Get(f, i)
			if c, ok := blocks[b].col[v]; ok {
				x.Set(i, c, 1)
			}
		}
	}

	var xtx, xtxinv mat.Dense
	xtx.Mul(x.T(), x)
	if err := xtxinv.Inverse(&xtx); err != nil {
		return EffectTable{}, &ConfigError{Field: "Formula", Value: mod.Formula().String(), Msg: "covariates are collinear: " + err.Error()}
	}

	// the contrast: +A -B; the reference level has no column
	contrast := mat.NewVecDense(p, nil)
	if c, ok := blocks[0].col[levelA]; ok {
		contrast.SetVec(c, 1)
	}
	if c, ok := blocks[0].col[levelB]; ok {
		contrast.SetVec(c, -1)
	}
	var cv mat.VecDense
	cv.MulVec(&xtxinv, contrast)
	cvar := mat.Dot(contrast, &cv)

	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	tq := tdist.Quantile(1 - (1-level)/2)

	var hat mat.Dense
	hat.Mul(&xtxinv, x.T())

	out := EffectTable{Field: field, LevelA: levelA, LevelB: levelB, Level: level, DF: df}
	for t := 0; t < mod.K(); t++ {
		y := mat.NewVecDense(n, mod.Prevalence(t))
		var coef, fit, resid mat.VecDense
		coef.MulVec(&hat, y)
		fit.MulVec(x, &coef)
		resid.SubVec(y, &fit)
		sigma2 := mat.Dot(&resid, &resid) / float64(df)

		est := mat.Dot(contrast, &coef)
		se := math.Sqrt(sigma2 * cvar)
		e := Effect{Topic: t, Estimate: est, StdErr: se, Lower: est - tq*se, Upper: est + tq*se}
		e.Significant = e.Lower > 0 || e.Upper < 0
		out.Rows = append(out.Rows, e)
	}
	return out, nil
}
