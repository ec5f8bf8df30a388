//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/e-gun/NarrativeScope/internal/gen"
	"github.com/e-gun/NarrativeScope/internal/mm"
	"github.com/e-gun/NarrativeScope/internal/pipeline"
	"github.com/e-gun/NarrativeScope/internal/topics"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//
// TERMINAL SUMMARY
//

const (
	COLWIDTH = 18
	TEXTCROP = 90
)

// printsummary - the tables a person reads before opening the charts
func printsummary(w io.Writer, cfg pipeline.Config, rep *pipeline.Report, msg *mm.MessageMaker) {
	p := message.NewPrinter(language.English)
	line := func(s string) { _, _ = fmt.Fprintln(w, msg.ColStyle(s)) }
	head := func(s string) { line("\nS1" + s + "S0") }
	row := func(cells ...string) {
		for i := range cells[:len(cells)-1] {
			cells[i] = gen.PadRight(cells[i], COLWIDTH)
		}
		line("  " + strings.Join(cells, ""))
	}

	head("Corpus")
	line(p.Sprintf("  %d documents; %d features after trimming (%d before)", rep.Corpus.NDocs(), rep.Matrix.NFeatures(), rep.Untrimmed))

	head("Most frequent features")
	row("C6rankC0", "C6featureC0", "C6countC0", "C6docsC0")
	for _, r := range rep.Frequency.Top(cfg.FreqTop) {
		row(p.Sprintf("%d", r.Rank), r.Feature, p.Sprintf("%.0f", r.Frequency), p.Sprintf("%d", r.DocFreq))
	}

	if rep.Keyness != nil {
		head(fmt.Sprintf("Keyness: %s = %s (%s)", cfg.KeyField, cfg.KeyTarget, rep.Keyness.Measure))
		row("C6featureC0", "C6statC0", "C6pC0", "C6targetC0")
		for _, r := range rep.Keyness.Top(cfg.KeyTop) {
			c := "C4"
			if r.Stat < 0 {
				c = "C5"
			}
			row(r.Feature, c+p.Sprintf("%.3f", r.Stat)+"C0", p.Sprintf("%.4f", r.P), p.Sprintf("%.0f", r.NTarget))
		}
	}

	for _, st := range rep.Similar {
		head(fmt.Sprintf("%s: %s", st.Metric, st.Query))
		for _, r := range st.Rows {
			row(r.Feature, p.Sprintf("%.4f", r.Score))
		}
	}

	if len(rep.Hits) > 0 {
		head(p.Sprintf("Keyword in context (%d hits)", len(rep.Hits)))
		for _, h := range gen.Head(rep.Hits, cfg.FreqTop) {
			line("  " + gen.AvoidLongLines(h.String(), TEXTCROP))
		}
	}

	if rep.Search != nil {
		head("Topic count search")
		row("C6KC0", "C6coherenceC0", "C6exclusivityC0", "C6frontierC0")
		front := make(map[int]bool)
		for _, c := range rep.Search.Frontier() {
			front[c.K] = true
		}
		for _, c := range rep.Search.Candidates {
			if !c.OK() {
				row(p.Sprintf("%d", c.K), "C5failedC0", gen.AvoidLongLines(c.Err.Error(), TEXTCROP), "")
				continue
			}
			f := ""
			if front[c.K] {
				f = "C4*C0"
			}
			row(p.Sprintf("%d", c.K), p.Sprintf("%.3f", c.Coherence), p.Sprintf("%.3f", c.Exclusivity), f)
		}
		if errors.Is(rep.Selection, topics.ErrSelectionRequired) {
			line("  C1choose a K from the table and run again with -kC0")
		}
	}

	for _, l := range rep.Labels {
		head(fmt.Sprintf("Topic %d", l.Topic+1))
		line("  C6prob:C0  " + strings.Join(l.Prob, ", "))
		line("  C6frex:C0  " + strings.Join(l.FREX, ", "))
		line("  C6lift:C0  " + strings.Join(l.Lift, ", "))
		line("  C6score:C0 " + strings.Join(l.Score, ", "))
	}

	if rep.Effects != nil {
		head(fmt.Sprintf("Effect of %s: %s vs %s (%.0f%% interval)", rep.Effects.Field, rep.Effects.LevelA, rep.Effects.LevelB, rep.Effects.Level*100))
		row("C6topicC0", "C6estimateC0", "C6lowerC0", "C6upperC0")
		for _, e := range rep.Effects.Rows {
			t := p.Sprintf("%d", e.Topic+1)
			if e.Significant {
				t = "C4" + t + "*C0"
			}
			row(t, p.Sprintf("%.4f", e.Estimate), p.Sprintf("%.4f", e.Lower), p.Sprintf("%.4f", e.Upper))
		}
	}

	for _, tt := range rep.Thoughts {
		for _, th := range tt {
			line(p.Sprintf("  [T%d %s %.3f] %s", th.Topic+1, th.Name, th.Weight, gen.AvoidLongLines(th.Text, TEXTCROP)))
		}
	}
}
