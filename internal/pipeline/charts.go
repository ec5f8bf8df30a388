//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package pipeline

import (
	"fmt"

	"github.com/e-gun/NarrativeScope/internal/plot"
	"github.com/go-echarts/go-echarts/v2/components"
)

// drawcharts - hand every finished table to the sink; returns the names written
func drawcharts(cfg Config, s plot.Sink, rep *Report) ([]string, error) {
	var written []string
	put := func(name string, cc ...components.Charter) error {
		if len(cc) == 0 {
			return nil
		}
		if err := s.Write(name, cc...); err != nil {
			return fmt.Errorf("pipeline: chart '%s': %w", name, err)
		}
		written = append(written, name)
		return nil
	}

	freq := []components.Charter{plot.FrequencyBar(rep.Frequency, cfg.FreqTop)}
	for _, g := range rep.ByGroup {
		freq = append(freq, plot.FrequencyBar(g, cfg.FreqTop))
	}
	if err := put("frequency", freq...); err != nil {
		return written, err
	}

	if rep.Keyness != nil {
		kb := plot.KeynessBar(*rep.Keyness, cfg.KeyTop, cfg.KeyTarget, "other "+cfg.KeyField)
		if err := put("keyness", kb); err != nil {
			return written, err
		}
	}

	var sims []components.Charter
	for _, st := range rep.Similar {
		sims = append(sims, plot.SimilarityBar(st))
	}
	if err := put("similarity", sims...); err != nil {
		return written, err
	}

	if rep.Context != nil {
		if err := put("kwic-context", plot.ContextBar(*rep.Context, cfg.FreqTop)); err != nil {
			return written, err
		}
	}

	if rep.Search != nil {
		if err := put("topic-search", plot.SearchScatter(*rep.Search)); err != nil {
			return written, err
		}
	}

	if rep.Model == nil {
		return written, nil
	}

	var terms []components.Charter
	for _, b := range plot.TopicTermBars(rep.Model, cfg.Topics.TopWords) {
		terms = append(terms, b)
	}
	if err := put("topic-terms", terms...); err != nil {
		return written, err
	}

	if rep.Effects != nil {
		if err := put("topic-effects", plot.EffectBars(*rep.Effects)); err != nil {
			return written, err
		}
	}

	if rep.Correlation != nil {
		g := plot.CorrelationGraph(*rep.Correlation, rep.Prevalence())
		h := plot.CorrelationHeatMap(*rep.Correlation)
		if err := put("topic-correlation", g, h); err != nil {
			return written, err
		}
	}
	return written, nil
}
