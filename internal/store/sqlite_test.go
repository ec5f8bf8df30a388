//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/e-gun/NarrativeScope/internal/corp"
	"github.com/e-gun/NarrativeScope/internal/dfm"
)

func samplematrix(t *testing.T) *dfm.Matrix {
	t.Helper()
	dv, err := corp.NewDocvars([]string{"gender", "urban"}, [][]string{{"male", "yes"}, {"female", "no"}, {"female", "yes"}})
	if err != nil {
		t.Fatal(err)
	}
	cells := []dfm.Cell{
		{Doc: 0, Feat: 0, N: 1}, {Doc: 0, Feat: 1, N: 1}, {Doc: 0, Feat: 2, N: 1},
		{Doc: 1, Feat: 1, N: 1}, {Doc: 1, Feat: 3, N: 2},
	}
	m, err := dfm.FromCells([]string{"r1", "r2", "r3"}, []string{"love", "job", "salari", "hate"}, cells, dv)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	fn := filepath.Join(t.TempDir(), "snap.db")
	m := samplematrix(t)

	if err := SaveMatrix(ctx, fn, m, map[string]string{"run": "abc", METANDOCS: "999"}); err != nil {
		t.Fatal(err)
	}
	got, err := LoadMatrix(ctx, fn)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(got.DocNames(), m.DocNames()) || !reflect.DeepEqual(got.Features(), m.Features()) {
		t.Errorf("names %v / features %v", got.DocNames(), got.Features())
	}
	if !reflect.DeepEqual(got.Cells(), m.Cells()) {
		t.Errorf("Cells() = %v", got.Cells())
	}
	for _, f := range []string{"gender", "urban"} {
		a, _ := m.Docvars().Column(f)
		b, err := got.Docvars().Column(f)
		if err != nil || !reflect.DeepEqual(a, b) {
			t.Errorf("%s: %v vs %v (%v)", f, a, b, err)
		}
	}
	if e := got.EmptyDocs(); !reflect.DeepEqual(e, []int{2}) {
		t.Errorf("the empty row did not survive: %v", e)
	}

	s, err := Open(ctx, fn)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	meta, err := s.Meta(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if meta["run"] != "abc" || meta[METANDOCS] != "3" || meta[METASAVED] == "" {
		t.Errorf("Meta() = %v", meta)
	}
}

func TestSaveReplaces(t *testing.T) {
	ctx := context.Background()
	fn := filepath.Join(t.TempDir(), "snap.db")
	m := samplematrix(t)
	if err := SaveMatrix(ctx, fn, m, nil); err != nil {
		t.Fatal(err)
	}
	if err := SaveMatrix(ctx, fn, m.Trim(2), nil); err != nil {
		t.Fatal(err)
	}
	got, err := LoadMatrix(ctx, fn)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Features(), []string{"job", "hate"}) || got.NDocs() != 3 {
		t.Errorf("features %v, docs %d", got.Features(), got.NDocs())
	}
}

func TestLoadEmpty(t *testing.T) {
	_, err := LoadMatrix(context.Background(), filepath.Join(t.TempDir(), "fresh.db"))
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("want ErrNoSnapshot, got %v", err)
	}
}
