//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package plot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/e-gun/NarrativeScope/internal/explore"
	"github.com/e-gun/NarrativeScope/internal/topics"
	"github.com/go-echarts/go-echarts/v2/components"
	"gonum.org/v1/gonum/mat"
)

func sampleft() explore.FreqTable {
	return explore.FreqTable{Rows: []explore.FreqRow{
		{Feature: "job", Frequency: 4, Rank: 1},
		{Feature: "salari", Frequency: 3, Rank: 2},
		{Feature: "hate", Frequency: 1, Rank: 3},
	}}
}

func samplecorr() topics.Correlation {
	cm := mat.NewSymDense(3, []float64{1, 0.4, -0.2, 0.4, 1, 0.1, -0.2, 0.1, 1})
	return topics.Correlation{Cutoff: 0.01, Matrix: cm, Edges: []topics.Edge{{From: 0, To: 1, Weight: 0.4}, {From: 1, To: 2, Weight: 0.1}}}
}

func TestFileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	s := FileSink{Dir: dir}
	if err := s.Write("frequency: all docs", FrequencyBar(sampleft(), 2)); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "frequency_all_docs.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(b, []byte("echarts")) || !bytes.Contains(b, []byte("salari")) {
		t.Errorf("page lacks the chart: %d bytes", len(b))
	}
}

func TestFragment(t *testing.T) {
	b, err := Fragment(CorrelationGraph(samplecorr(), []float64{0.5, 0.3, 0.2}), CorrelationHeatMap(samplecorr()))
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if strings.Contains(s, "<html") || strings.Contains(s, "<head") {
		t.Error("a fragment should not be a page")
	}
	if strings.Count(s, "echarts.init(") != 2 {
		t.Errorf("want two charts in:\n%s", s)
	}
	if strings.Contains(s, "__f__") {
		t.Error("function markers were left in")
	}

	dir := t.TempDir()
	if err = (FragmentSink{Dir: dir}).Write("corr", CorrelationHeatMap(samplecorr())); err != nil {
		t.Fatal(err)
	}
	if _, err = os.Stat(filepath.Join(dir, "corr.frag.html")); err != nil {
		t.Error(err)
	}
}

func TestBuilders(t *testing.T) {
	kt := explore.KeyTable{Measure: explore.KEYCHI2, Rows: []explore.KeyRow{
		{Feature: "salari", Stat: 3.2}, {Feature: "hate", Stat: -2.1}, {Feature: "job", Stat: 0.1},
	}}
	st := explore.SimTable{Query: "salari", Metric: explore.SIMCOSINE, Rows: []explore.SimRow{{Feature: "salari", Score: 1}, {Feature: "bonus", Score: 0.9}}}
	res := topics.SearchResult{Candidates: []topics.Candidate{
		{K: 2, Coherence: -10, Exclusivity: 8},
		{K: 3, Coherence: -12, Exclusivity: 7},
	}}
	et := topics.EffectTable{Field: "gender", LevelA: "male", LevelB: "female", Level: 0.95, Rows: []topics.Effect{
		{Topic: 0, Estimate: 0.3, Lower: 0.1, Upper: 0.5, Significant: true},
		{Topic: 1, Estimate: -0.05, Lower: -0.2, Upper: 0.1},
	}}

	cc := []components.Charter{
		FrequencyBar(sampleft(), 10),
		KeynessBar(kt, 5, "male", "female"),
		SimilarityBar(st),
		SearchScatter(res),
		EffectBars(et),
		CorrelationGraph(samplecorr(), nil),
		CorrelationHeatMap(samplecorr()),
	}

	ns := &NopSink{}
	if err := ns.Write("all", cc...); err != nil {
		t.Fatal(err)
	}
	if ns.Charts != len(cc) || len(ns.Names) != 1 {
		t.Errorf("NopSink saw %d charts, %v", ns.Charts, ns.Names)
	}

	b, err := Fragment(cc...)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"salari", "hate", "K=2", "Topic 2", "lower"} {
		if !bytes.Contains(b, []byte(want)) {
			t.Errorf("rendered charts lack %q", want)
		}
	}
}
