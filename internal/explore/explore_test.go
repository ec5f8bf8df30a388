//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package explore

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/e-gun/NarrativeScope/internal/corp"
	"github.com/e-gun/NarrativeScope/internal/dfm"
	"github.com/e-gun/NarrativeScope/internal/tok"
)

func buildtokens(t *testing.T, texts []string, gender []string) *tok.Tokens {
	t.Helper()
	rows := make([][]string, len(gender))
	for i, g := range gender {
		rows[i] = []string{g}
	}
	dv, err := corp.NewDocvars([]string{"gender"}, rows)
	if err != nil {
		t.Fatal(err)
	}
	c, err := corp.New(corp.DefaultNames(len(texts)), texts, dv)
	if err != nil {
		t.Fatal(err)
	}
	cl, err := tok.NewCleaner(tok.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	tk, err := cl.Clean(c)
	if err != nil {
		t.Fatal(err)
	}
	return tk
}

func buildmatrix(t *testing.T, texts []string, gender []string, min float64) *dfm.Matrix {
	t.Helper()
	st, _ := dfm.NewStemmer(dfm.STEMENGLISH)
	m, err := dfm.Build(buildtokens(t, texts, gender), st)
	if err != nil {
		t.Fatal(err)
	}
	return m.Trim(min)
}

var (
	scentexts  = []string{"I love my job and my salary", "I hate my job"}
	scengender = []string{"male", "female"}
)

func TestFrequencyScenarioA(t *testing.T) {
	ft := Frequency(buildmatrix(t, scentexts, scengender, 1))
	top := ft.Top(1)
	if len(top) != 1 || top[0].Feature != "job" || top[0].Frequency != 2 || top[0].Rank != 1 {
		t.Fatalf("Top(1) = %+v", top)
	}
	if top[0].DocFreq != 2 {
		t.Errorf("DocFreq = %d", top[0].DocFreq)
	}
	// the ties at count 1 fall back to lexical order
	var rest []string
	for _, r := range ft.Rows[1:] {
		rest = append(rest, r.Feature)
	}
	if !reflect.DeepEqual(rest, []string{"hate", "love", "salari"}) {
		t.Errorf("tie order = %v", rest)
	}
	if b := ft.Bottom(1); b[0].Feature != "salari" || b[0].Rank != 4 {
		t.Errorf("Bottom(1) = %+v", b)
	}
}

func TestFrequencyBy(t *testing.T) {
	tables, err := FrequencyBy(buildmatrix(t, scentexts, scengender, 1), "gender")
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 2 || tables[0].Group != "female" || tables[1].Group != "male" {
		t.Fatalf("groups = %+v", tables)
	}
	if _, ok := tables[0].Get("salari"); ok {
		t.Error("female table should not carry 'salari'")
	}
	if tables[1].Len() != 3 {
		t.Errorf("male table = %+v", tables[1].Rows)
	}
}

func TestKeynessScenarioB(t *testing.T) {
	m := buildmatrix(t, scentexts, scengender, 1)
	male, _ := m.Docvars().Equals("gender", "male")

	for _, measure := range []string{KEYCHI2, KEYLR} {
		kt, err := Keyness(m, male, measure)
		if err != nil {
			t.Fatal(err)
		}
		sal, _ := kt.Get("salari")
		hate, _ := kt.Get("hate")
		if sal.Stat <= 0 {
			t.Errorf("%s: salari = %v, want male-leaning", measure, sal.Stat)
		}
		if hate.Stat >= 0 {
			t.Errorf("%s: hate = %v, want female-leaning", measure, hate.Stat)
		}
		if sal.P <= 0 || sal.P > 1 {
			t.Errorf("%s: p = %v", measure, sal.P)
		}
	}
}

func TestKeynessSymmetry(t *testing.T) {
	texts := []string{
		"salary salary bonus overtime manager",
		"salary manager meeting deadline",
		"family children school holiday",
		"children holiday garden family family",
		"manager deadline children",
	}
	gender := []string{"male", "male", "female", "female", "male"}
	m := buildmatrix(t, texts, gender, 1)

	male, _ := m.Docvars().Equals("gender", "male")
	female, _ := m.Docvars().Equals("gender", "female")

	a, err := Keyness(m, male, KEYCHI2)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Keyness(m, female, KEYCHI2)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range a.Rows {
		o, ok := b.Get(r.Feature)
		if !ok {
			t.Fatalf("%s missing from the swapped table", r.Feature)
		}
		if math.Abs(r.Stat+o.Stat) > 1e-12 {
			t.Errorf("%s: %v vs %v", r.Feature, r.Stat, o.Stat)
		}
	}
	for i := 1; i < len(a.Rows); i++ {
		if math.Abs(a.Rows[i].Stat) > math.Abs(a.Rows[i-1].Stat) {
			t.Fatalf("rows not sorted by magnitude at %d", i)
		}
	}
	for _, r := range a.TargetSide(100) {
		if r.Stat <= 0 {
			t.Errorf("TargetSide() carried %+v", r)
		}
	}
	for _, r := range a.ReferenceSide(100) {
		if r.Stat >= 0 {
			t.Errorf("ReferenceSide() carried %+v", r)
		}
	}
}

func TestKeynessErrors(t *testing.T) {
	m := buildmatrix(t, scentexts, scengender, 1)
	tests := map[string]struct {
		target  []bool
		measure string
	}{
		"all target":     {[]bool{true, true}, KEYCHI2},
		"no target":      {[]bool{false, false}, KEYCHI2},
		"wrong length":   {[]bool{true}, KEYCHI2},
		"unknown method": {[]bool{true, false}, "pmi"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Keyness(m, tt.target, tt.measure)
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Errorf("want ConfigError, got %v", err)
			}
		})
	}
}

func TestChi2Yates(t *testing.T) {
	// 2x2 with |ad-bc| = 2 < N/2 = 2.5: no correction; 5*4/(1*4*3*2)
	if got := chi2yates(1, 0, 2, 2); math.Abs(got-20.0/24.0) > 1e-12 {
		t.Errorf("chi2yates() = %v", got)
	}
	// |ad-bc| = 200 >= N/2 = 20: corrected; 40*180^2/(20*20*20*20)
	if got := chi2yates(15, 5, 5, 15); math.Abs(got-40*180*180/160000.0) > 1e-12 {
		t.Errorf("chi2yates() = %v", got)
	}
}

func TestSimilarity(t *testing.T) {
	texts := []string{
		"salary salary bonus",
		"salary bonus",
		"family children",
		"family children holiday",
	}
	m := buildmatrix(t, texts, []string{"m", "m", "f", "f"}, 1)

	st, err := Similarity(m, "salari", SIMCOSINE, 2, SimOptions{IncludeSelf: true})
	if err != nil {
		t.Fatal(err)
	}
	if st.Rows[0].Feature != "salari" || st.Rows[0].Score != 1 {
		t.Errorf("self row = %+v", st.Rows[0])
	}
	if st.Rows[1].Feature != "bonus" {
		t.Errorf("nearest = %+v", st.Rows[1])
	}
	if len(st.Rows) != 3 {
		t.Errorf("want self + 2 rows, got %d", len(st.Rows))
	}

	dt, err := Similarity(m, "salari", DISTEUCLIDEAN, 0, SimOptions{Candidates: []string{"salari", "bonus", "famili"}})
	if err != nil {
		t.Fatal(err)
	}
	if dt.Rows[0].Feature != "salari" || dt.Rows[0].Score != 0 || !dt.Distance {
		t.Errorf("self distance row = %+v", dt.Rows[0])
	}
	if dt.Rows[1].Feature != "famili" {
		t.Errorf("farthest = %+v", dt.Rows[1])
	}

	without, _ := Similarity(m, "salari", SIMCORRELATION, 0, SimOptions{})
	for _, r := range without.Rows {
		if r.Feature == "salari" {
			t.Error("self reported without IncludeSelf")
		}
	}

	nearest, _ := Similarity(m, "salari", DISTEUCLIDEAN, 2, SimOptions{})
	if len(nearest.Rows) != 2 {
		t.Fatalf("want 2 rows, got %+v", nearest.Rows)
	}
	for _, r := range nearest.Rows {
		if r.Feature == "salari" {
			t.Errorf("query listed among its own neighbours: %+v", nearest.Rows)
		}
	}

	named, _ := Similarity(m, "salari", SIMCOSINE, 0, SimOptions{Candidates: []string{"famili", "salari"}})
	if len(named.Rows) != 2 || named.Rows[0].Feature != "salari" || named.Rows[0].Score != 1 {
		t.Errorf("named self row = %+v", named.Rows)
	}

	_, err = Similarity(m, "pension", SIMCOSINE, 5, SimOptions{})
	var ute *UnknownTermError
	if !errors.As(err, &ute) || ute.Term != "pension" {
		t.Errorf("want UnknownTermError, got %v", err)
	}

	_, err = Similarity(m, "salari", "jaccard", 5, SimOptions{})
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Errorf("want ConfigError, got %v", err)
	}

	tabs, failed := SimilarityMany(m, []string{"salari", "pension"}, SIMCOSINE, 3, SimOptions{})
	if len(tabs) != 1 || failed["pension"] == nil {
		t.Errorf("SimilarityMany() = %d tables, failed %v", len(tabs), failed)
	}
}

func TestKWIC(t *testing.T) {
	tk := buildtokens(t, []string{
		"My job pays a fair salary but the jobs are scarce",
		"Working hours are long and work is hard",
		"Nothing relevant here",
	}, []string{"m", "f", "m"})

	d, err := NewDictionary([]Entry{
		{Category: "employment", Patterns: []string{"job*", "work*"}},
		{Category: "pay", Patterns: []string{"salar*", "pay*", "job"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	hits, err := KWIC(tk, d, 2, KWICOptions{})
	if err != nil {
		t.Fatal(err)
	}

	// every matching token yields exactly one hit
	want := 0
	for i := 0; i < tk.NDocs(); i++ {
		for _, w := range tk.Doc(i) {
			if _, _, ok := d.Match(w.Text, false); ok && !w.IsGap() {
				want++
			}
		}
	}
	if len(hits) != want {
		t.Fatalf("%d hits; %d matching tokens", len(hits), want)
	}

	seen := make(map[[2]int]bool)
	for _, h := range hits {
		k := [2]int{h.Doc, h.Position}
		if seen[k] {
			t.Errorf("duplicate hit %v", k)
		}
		seen[k] = true
		if _, _, ok := d.Match(h.Match, false); !ok {
			t.Errorf("hit %q fits no pattern", h.Match)
		}
		if len(h.Left) > 2 || len(h.Right) > 2 {
			t.Errorf("window too wide: %s", h)
		}
		if h.Match == "job" && h.Category != "employment" {
			t.Errorf("earlier entry should win for 'job', got %s", h.Category)
		}
	}

	_, err = KWIC(tk, d, -1, KWICOptions{})
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Errorf("want ConfigError for a negative window, got %v", err)
	}
}

func TestKWICCase(t *testing.T) {
	s := tok.Stream{tok.Word("Job"), tok.Word("offer")}
	tk, _ := tok.NewTokens([]string{"a"}, []tok.Stream{s}, nil)
	d, _ := NewDictionary([]Entry{{Category: "e", Patterns: []string{"job*"}}})

	sens, _ := KWIC(tk, d, 1, KWICOptions{})
	insens, _ := KWIC(tk, d, 1, KWICOptions{CaseInsensitive: true})
	if len(sens) != 0 || len(insens) != 1 {
		t.Errorf("case handling: %d sensitive, %d insensitive", len(sens), len(insens))
	}
}

func TestKWICWindowCountsGaps(t *testing.T) {
	s := tok.Stream{tok.Word("long"), tok.GapToken(), tok.Word("job"), tok.GapToken(), tok.Word("hours")}
	tk, _ := tok.NewTokens([]string{"a"}, []tok.Stream{s}, nil)
	d, _ := NewDictionary([]Entry{{Category: "e", Patterns: []string{"job"}}})
	hits, _ := KWIC(tk, d, 1, KWICOptions{})
	if len(hits) != 1 || len(hits[0].Left) != 1 || !hits[0].Left[0].IsGap() || !hits[0].Right[0].IsGap() {
		t.Fatalf("hits = %+v", hits)
	}
	if hits[0].Context() != "job" {
		t.Errorf("Context() = %q", hits[0].Context())
	}
}

func TestContextVocabulary(t *testing.T) {
	tk := buildtokens(t, []string{
		"the job is flexible",
		"another job with flexible hours",
		"my job needs flexible people",
	}, []string{"m", "f", "m"})
	d, _ := NewDictionary([]Entry{{Category: "employment", Patterns: []string{"job*"}}})
	hits, err := KWIC(tk, d, 3, KWICOptions{})
	if err != nil {
		t.Fatal(err)
	}
	cl, _ := tok.NewCleaner(tok.DefaultConfig())
	st, _ := dfm.NewStemmer(dfm.STEMENGLISH)

	ft, err := ContextVocabulary(hits, cl, st, d, 2, KWICOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ft.Get("job"); ok {
		t.Error("dictionary term leaked into its own context vocabulary")
	}
	if top := ft.Top(1); len(top) != 1 || top[0].Feature != "flexibl" || top[0].Frequency != 3 {
		t.Errorf("Top(1) = %+v", top)
	}
}

func TestDictionaryErrors(t *testing.T) {
	for name, ee := range map[string][]Entry{
		"empty":       nil,
		"no category": {{Patterns: []string{"a*"}}},
		"no patterns": {{Category: "x"}},
		"bad glob":    {{Category: "x", Patterns: []string{"[a"}}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewDictionary(ee)
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Errorf("want ConfigError, got %v", err)
			}
		})
	}
}
