//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package dfm

import (
	"errors"
	"reflect"
	"testing"

	"github.com/e-gun/NarrativeScope/internal/corp"
	"github.com/e-gun/NarrativeScope/internal/tok"
	"github.com/kljensen/snowball/english"
)

func scenarioA(t *testing.T) *tok.Tokens {
	t.Helper()
	dv, _ := corp.NewDocvars([]string{"gender"}, [][]string{{"male"}, {"female"}})
	c, err := corp.New(corp.DefaultNames(2), []string{"I love my job and my salary", "I hate my job"}, dv)
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

func TestBuildScenarioA(t *testing.T) {
	st, _ := NewStemmer(STEMENGLISH)
	m, err := Build(scenarioA(t), st)
	if err != nil {
		t.Fatal(err)
	}
	m = m.Trim(1)

	for _, w := range []string{"love", "job", "salary", "hate"} {
		if _, ok := m.FeatureIndex(english.Stem(w, true)); !ok {
			t.Errorf("stem of %q missing from %v", w, m.Features())
		}
	}
	for _, w := range []string{"i", "my", "and"} {
		if _, ok := m.FeatureIndex(w); ok {
			t.Errorf("%q should have been removed", w)
		}
	}

	j, _ := m.FeatureIndex("job")
	if m.FeatureTotals()[j] != 2 {
		t.Errorf("job total = %v", m.FeatureTotals()[j])
	}
	if m.NDocs() != 2 {
		t.Errorf("NDocs() = %d", m.NDocs())
	}
	if !reflect.DeepEqual(m.Features(), []string{"love", "job", "salari", "hate"}) {
		t.Errorf("first-appearance order broken: %v", m.Features())
	}
}

func TestTrimKeepsRows(t *testing.T) {
	cells := []Cell{
		{0, 0, 5}, {0, 1, 1}, {1, 1, 1}, {1, 2, 1}, {2, 3, 3}, {2, 0, 1},
	}
	m, err := FromCells([]string{"a", "b", "c"}, []string{"w", "x", "y", "z"}, cells, nil)
	if err != nil {
		t.Fatal(err)
	}

	prev := m.NFeatures() + 1
	for _, min := range []float64{0, 1, 2, 3, 4, 6, 7} {
		tr := m.Trim(min)
		if tr.NDocs() != m.NDocs() {
			t.Fatalf("Trim(%v) changed the row count", min)
		}
		if tr.NFeatures() > prev {
			t.Fatalf("Trim(%v) grew the vocabulary", min)
		}
		prev = tr.NFeatures()
	}

	tr := m.Trim(3)
	if !reflect.DeepEqual(tr.Features(), []string{"w", "z"}) {
		t.Errorf("Trim(3) = %v", tr.Features())
	}
	if !reflect.DeepEqual(tr.EmptyDocs(), []int{1}) {
		t.Errorf("EmptyDocs() = %v", tr.EmptyDocs())
	}
	if tr.Count(0, 0) != 5 || tr.Count(2, 1) != 3 {
		t.Errorf("counts moved: %v", tr.Cells())
	}
}

func TestAccessors(t *testing.T) {
	dv, _ := corp.NewDocvars([]string{"g"}, [][]string{{"a"}, {"b"}})
	m, err := FromCells([]string{"d1", "d2"}, []string{"x", "y", "z"},
		[]Cell{{0, 0, 2}, {0, 2, 1}, {1, 2, 4}, {1, 2, 1}}, dv)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(m.FeatureTotals(), []float64{2, 0, 6}) {
		t.Errorf("FeatureTotals() = %v", m.FeatureTotals())
	}
	if !reflect.DeepEqual(m.DocTotals(), []float64{3, 5}) {
		t.Errorf("DocTotals() = %v", m.DocTotals())
	}
	if !reflect.DeepEqual(m.DocFreq(), []int{1, 0, 2}) {
		t.Errorf("DocFreq() = %v", m.DocFreq())
	}
	if !reflect.DeepEqual(m.Column(2), []float64{1, 5}) {
		t.Errorf("Column(2) = %v", m.Column(2))
	}
	if !reflect.DeepEqual(m.Row(0), []float64{2, 0, 1}) {
		t.Errorf("Row(0) = %v", m.Row(0))
	}
	if m.Dense().At(1, 2) != 5 {
		t.Errorf("Dense() disagrees")
	}
	csc := m.TermDocCSC()
	if r, c := csc.Dims(); r != 3 || c != 2 || csc.At(2, 1) != 5 {
		t.Errorf("TermDocCSC() dims %dx%d", r, c)
	}

	s, err := m.SubsetDocs([]int{1})
	if err != nil {
		t.Fatal(err)
	}
	if s.NDocs() != 1 || s.Count(0, 2) != 5 || s.NFeatures() != 3 {
		t.Errorf("SubsetDocs() = %v", s.Cells())
	}
	g, _ := s.Docvars().Column("g")
	if !reflect.DeepEqual(g, []string{"b"}) {
		t.Errorf("docvars not subset: %v", g)
	}
}

func TestDropEmptyDocs(t *testing.T) {
	m, _ := FromCells([]string{"a", "b", "c"}, []string{"x"}, []Cell{{0, 0, 1}, {2, 0, 1}}, nil)
	d, kept, err := m.DropEmptyDocs()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(kept, []int{0, 2}) || !reflect.DeepEqual(d.DocNames(), []string{"a", "c"}) {
		t.Errorf("kept %v names %v", kept, d.DocNames())
	}
}

func TestFromCellsErrors(t *testing.T) {
	if _, err := FromCells([]string{"a"}, []string{"x"}, []Cell{{1, 0, 1}}, nil); err == nil {
		t.Error("out of range cell accepted")
	}
	dv := corp.EmptyDocvars(3)
	_, err := FromCells([]string{"a"}, []string{"x"}, nil, dv)
	var cae *corp.CovariateAlignmentError
	if !errors.As(err, &cae) {
		t.Errorf("want CovariateAlignmentError, got %v", err)
	}
}

func TestStemmers(t *testing.T) {
	st, err := NewStemmer(STEMENGLISH)
	if err != nil {
		t.Fatal(err)
	}
	if st.Stem("salaries") != st.Stem("salary") {
		t.Errorf("%q != %q", st.Stem("salaries"), st.Stem("salary"))
	}
	if _, err = NewStemmer("latin"); err == nil {
		t.Error("unknown stemmer accepted")
	}
	none, _ := NewStemmer(STEMNONE)
	if none.Stem("running") != "running" {
		t.Error("identity stemmer changed its input")
	}
}

func TestEmptyMatrix(t *testing.T) {
	m, err := FromCells([]string{"a", "b"}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.NNZ() != 0 || len(m.EmptyDocs()) != 2 || m.TermDocCSC() != nil {
		t.Error("empty matrix misbehaves")
	}
}

func TestStorageOrder(t *testing.T) {
	docs := []string{"a", "b", "c"}
	feats := []string{"w", "x", "y", "z"}
	cells := []Cell{{2, 3, 1}, {0, 2, 4}, {1, 0, 2}, {0, 0, 1}, {2, 1, 5}, {0, 3, 2}, {1, 2, 1}}

	first, err := FromCells(docs, feats, cells, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := first.TermDocCSC().RawMatrix()

	wantptr := []int{0, 3, 5, 7}
	wantind := []int{0, 2, 3, 0, 2, 1, 3}
	if !reflect.DeepEqual(want.Indptr, wantptr) || !reflect.DeepEqual(want.Ind, wantind) {
		t.Fatalf("csc layout: %v %v", want.Indptr, want.Ind)
	}
	row := first.counts.RawMatrix()
	if !reflect.DeepEqual(row.Indptr, wantptr) || !reflect.DeepEqual(row.Ind, wantind) {
		t.Errorf("csr layout: %v %v", row.Indptr, row.Ind)
	}

	for n := 0; n < 20; n++ {
		m, err := FromCells(docs, feats, cells, nil)
		if err != nil {
			t.Fatal(err)
		}
		got := m.TermDocCSC().RawMatrix()
		if !reflect.DeepEqual(got.Indptr, want.Indptr) || !reflect.DeepEqual(got.Ind, want.Ind) || !reflect.DeepEqual(got.Data, want.Data) {
			t.Fatalf("build %d differs", n)
		}
	}
}
