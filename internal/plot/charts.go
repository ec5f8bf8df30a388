//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package plot

import (
	"fmt"
	"github.com/e-gun/NarrativeScope/internal/explore"
	"github.com/e-gun/NarrativeScope/internal/gen"
	"github.com/e-gun/NarrativeScope/internal/topics"
	"github.com/e-gun/NarrativeScope/internal/vv"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"math"
)

//
// GRAPHING
//

const (
	PRECISION  = 4
	FONTSTYLE  = "normal"
	LEFTALIGN  = "20"
	BOTTALIGN  = "3%"
	SAVETYPE   = "svg"
	SAVESTR    = "Save to file..."
	TEXTCOLOR  = ""
	POSHUE     = 236
	NEGHUE     = 4
	HUESL      = ", 45%, 45%, 1)"
	LINETYPE   = "dashed"
	LABELRIGHT = "right"
)

func round(val float64) float32 {
	ratio := math.Pow(10, float64(PRECISION))
	return float32(math.Round(val*ratio) / ratio)
}

func hue(h int) *opts.ItemStyle {
	return &opts.ItemStyle{Color: fmt.Sprintf("hsla(%d%s", h, HUESL)}
}

// globals - title, toolbox and size shared by every chart
func globals(title string, subtitle string) []charts.GlobalOpts {
	tst := opts.TextStyle{
		Color:     TEXTCOLOR,
		FontStyle: FONTSTYLE,
		FontSize:  16,
		Padding:   "15",
	}

	sst := opts.TextStyle{
		Color:     TEXTCOLOR,
		FontStyle: FONTSTYLE,
		FontSize:  10,
	}

	tit := opts.Title{
		Title:         title,
		TitleStyle:    &tst,
		Subtitle:      subtitle,
		SubtitleStyle: &sst,
		Left:          LEFTALIGN,
	}

	tbs := opts.ToolBoxFeatureSaveAsImage{
		Show:  true,
		Type:  SAVETYPE,
		Name:  filename(title),
		Title: SAVESTR,
	}

	tbo := opts.Toolbox{
		Show:    true,
		Orient:  "vertical",
		Right:   LEFTALIGN,
		Feature: &opts.ToolBoxFeature{SaveAsImage: &tbs},
	}

	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: vv.DEFAULTCHRTWIDTH, Height: vv.DEFAULTCHRTHEIGHT}),
		charts.WithTitleOpts(tit),
		charts.WithToolboxOpts(tbo),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
	}
}

// hbar - a horizontal bar chart; the first row ends up on top
func hbar(title string, subtitle string, labels []string, series string, data []opts.BarData) *charts.Bar {
	// echarts draws category axes bottom up
	rl := make([]string, len(labels))
	rd := make([]opts.BarData, len(data))
	for i := range labels {
		rl[len(labels)-1-i] = labels[i]
		rd[len(data)-1-i] = data[i]
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(globals(title, subtitle)...)
	bar.SetGlobalOptions(charts.WithGridOpts(opts.Grid{Left: "15%"}))
	bar.SetXAxis(rl).AddSeries(series, rd)
	bar.XYReversal()
	return bar
}

// FrequencyBar - the n most frequent features
func FrequencyBar(ft explore.FreqTable, n int) *charts.Bar {
	title := "Most frequent features"
	if ft.Group != "" {
		title = fmt.Sprintf("Most frequent features: %s", ft.Group)
	}
	return freqbar(title, ft, n)
}

// ContextBar - FrequencyBar() for the vocabulary found around the dictionary terms
func ContextBar(ft explore.FreqTable, n int) *charts.Bar {
	return freqbar("Vocabulary around the dictionary terms", ft, n)
}

func freqbar(title string, ft explore.FreqTable, n int) *charts.Bar {
	rows := ft.Top(n)
	labels := make([]string, len(rows))
	data := make([]opts.BarData, len(rows))
	for i, r := range rows {
		labels[i] = r.Feature
		data[i] = opts.BarData{Name: r.Feature, Value: r.Frequency, ItemStyle: hue(POSHUE)}
	}
	return hbar(title, fmt.Sprintf("top %d of %d", len(rows), ft.Len()), labels, "frequency", data)
}

// KeynessBar - n features from each side of the contrast; reference-leaning bars point left
func KeynessBar(kt explore.KeyTable, n int, target string, reference string) *charts.Bar {
	rows := append(kt.TargetSide(n), kt.ReferenceSide(n)...)
	labels := make([]string, len(rows))
	data := make([]opts.BarData, len(rows))
	for i, r := range rows {
		labels[i] = r.Feature
		h := POSHUE
		if r.Stat < 0 {
			h = NEGHUE
		}
		data[i] = opts.BarData{Name: r.Feature, Value: round(r.Stat), ItemStyle: hue(h)}
	}
	return hbar(fmt.Sprintf("Keyness: %s vs %s", target, reference), fmt.Sprintf("measure: %s", kt.Measure), labels, kt.Measure, data)
}

// SimilarityBar - one query's neighbors in table order
func SimilarityBar(st explore.SimTable) *charts.Bar {
	labels := make([]string, len(st.Rows))
	data := make([]opts.BarData, len(st.Rows))
	for i, r := range st.Rows {
		labels[i] = r.Feature
		h := POSHUE
		if r.Feature == st.Query {
			h = NEGHUE
		}
		data[i] = opts.BarData{Name: r.Feature, Value: round(r.Score), ItemStyle: hue(h)}
	}
	what := "Nearest to"
	if st.Distance {
		what = "Farthest from"
	}
	return hbar(fmt.Sprintf("%s »%s«", what, st.Query), st.Metric, labels, st.Metric, data)
}

// SearchScatter - coherence against exclusivity, one point per fitted K; the frontier is drawn in a second series
func SearchScatter(r topics.SearchResult) *charts.Scatter {
	front := make(map[int]bool)
	for _, c := range r.Frontier() {
		front[c.K] = true
	}

	var in, out []opts.ScatterData
	for _, c := range r.Succeeded() {
		d := opts.ScatterData{
			Name:       fmt.Sprintf("K=%d", c.K),
			Value:      []float64{float64(round(c.Coherence)), float64(round(c.Exclusivity))},
			SymbolSize: 14,
		}
		if front[c.K] {
			in = append(in, d)
		} else {
			out = append(out, d)
		}
	}

	sc := charts.NewScatter()
	sc.SetGlobalOptions(globals("Topic count diagnostics", fmt.Sprintf("%d fitted, %d failed", len(r.Succeeded()), len(r.Failed())))...)
	sc.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Name: "semantic coherence", Type: "value", Scale: true}),
		charts.WithYAxisOpts(opts.YAxis{Name: "exclusivity", Type: "value", Scale: true}),
		charts.WithLegendOpts(opts.Legend{Show: true, Bottom: BOTTALIGN}),
	)
	lab := charts.WithLabelOpts(opts.Label{Show: true, Position: LABELRIGHT, Formatter: "{b}"})
	sc.AddSeries("frontier", in, lab, charts.WithItemStyleOpts(*hue(POSHUE)))
	sc.AddSeries("dominated", out, lab, charts.WithItemStyleOpts(*hue(NEGHUE)))
	return sc
}

// TopicTermBars - one chart per topic with its n most probable terms
func TopicTermBars(mod *topics.Model, n int) []*charts.Bar {
	vocab := mod.Vocabulary()
	var out []*charts.Bar
	for t := 0; t < mod.K(); t++ {
		beta := mod.TopicTerms(t)
		top := gen.Head(gen.ArgSortDesc(beta), n)
		labels := make([]string, len(top))
		data := make([]opts.BarData, len(top))
		for i, v := range top {
			labels[i] = vocab[v]
			data[i] = opts.BarData{Name: vocab[v], Value: round(beta[v]), ItemStyle: hue(POSHUE + 12*t)}
		}
		out = append(out, hbar(fmt.Sprintf("Topic %d", t+1), "highest probability terms", labels, "probability", data))
	}
	return out
}

// EffectBars - per topic point estimates with the interval drawn as two dashed lines
func EffectBars(et topics.EffectTable) *charts.Bar {
	labels := make([]string, len(et.Rows))
	est := make([]opts.BarData, len(et.Rows))
	lo := make([]opts.LineData, len(et.Rows))
	hi := make([]opts.LineData, len(et.Rows))
	for i, e := range et.Rows {
		labels[i] = fmt.Sprintf("Topic %d", e.Topic+1)
		h := NEGHUE
		if e.Significant {
			h = POSHUE
		}
		est[i] = opts.BarData{Name: labels[i], Value: round(e.Estimate), ItemStyle: hue(h)}
		lo[i] = opts.LineData{Value: round(e.Lower)}
		hi[i] = opts.LineData{Value: round(e.Upper)}
	}

	sub := fmt.Sprintf("%s: %s vs %s, %.0f%% interval", et.Field, et.LevelA, et.LevelB, et.Level*100)

	bar := charts.NewBar()
	bar.SetGlobalOptions(globals("Covariate effect on topic prevalence", sub)...)
	bar.SetGlobalOptions(charts.WithLegendOpts(opts.Legend{Show: true, Bottom: BOTTALIGN}))
	bar.SetXAxis(labels).AddSeries("difference", est)

	dash := charts.WithLineStyleOpts(opts.LineStyle{Type: LINETYPE})
	line := charts.NewLine()
	line.SetXAxis(labels).
		AddSeries("lower", lo, dash).
		AddSeries("upper", hi, dash)
	bar.Overlap(line)
	return bar
}

// CorrelationGraph - topics as nodes; an edge wherever the correlation clears the cutoff
func CorrelationGraph(c topics.Correlation, prevalence []float64) *charts.Graph {
	const (
		SYMSIZE    = 25
		REPULSION  = 6000
		GRAVITY    = .15
		EDGELEN    = 80
		EDGEFNTSZ  = 8
		LAYOUTTYPE = "force"
	)

	k, _ := c.Matrix.Dims()
	var gnn []opts.GraphNode
	var gll []opts.GraphLink
	valuelabel := opts.EdgeLabel{Show: true, FontSize: EDGEFNTSZ, Formatter: "{c}"}

	for t := 0; t < k; t++ {
		size := float64(SYMSIZE)
		if t < len(prevalence) {
			size = SYMSIZE * (0.5 + prevalence[t])
		}
		gnn = append(gnn, opts.GraphNode{Name: topicname(t), SymbolSize: fmt.Sprintf("%.4f", size), ItemStyle: hue(POSHUE + 12*t)})
	}
	for _, e := range c.Edges {
		gll = append(gll, opts.GraphLink{Source: topicname(e.From), Target: topicname(e.To), Value: round(e.Weight), Label: &valuelabel})
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(globals("Topic correlations", fmt.Sprintf("edges where r > %g", c.Cutoff))...)
	graph.AddSeries("", gnn, gll,
		charts.WithLabelOpts(opts.Label{Show: true, Position: LABELRIGHT}),
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout: LAYOUTTYPE,
			Force: &opts.GraphForce{
				Repulsion:  REPULSION,
				Gravity:    GRAVITY,
				EdgeLength: EDGELEN,
			},
			Roam:               true,
			FocusNodeAdjacency: true,
		}),
	)
	return graph
}

// CorrelationHeatMap - the whole correlation matrix
func CorrelationHeatMap(c topics.Correlation) *charts.HeatMap {
	k, _ := c.Matrix.Dims()
	names := make([]string, k)
	for t := range names {
		names[t] = topicname(t)
	}

	var data []opts.HeatMapData
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{i, j, round(c.At(i, j))}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(globals("Topic correlation matrix", "Pearson r of topic prevalence across documents")...)
	hm.SetGlobalOptions(
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: names}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        -1,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: []string{"#313695", "#f7f7f7", "#a50026"}},
		}),
	)
	hm.SetXAxis(names).AddSeries("r", data)
	return hm
}

func topicname(t int) string { return fmt.Sprintf("Topic %d", t+1) }
