//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/e-gun/NarrativeScope/internal/vv"
	"github.com/prometheus/client_golang/prometheus"
)

//
// RUN METRICS
//

// nothing is scraped: a run ends by dumping the registry in the node_exporter textfile format

const (
	NAMESPACE  = "nsc"
	FITOK      = "ok"
	FITFAILED  = "failed"
	SIZEDOCS   = "docs"
	SIZEFEATS  = "features"
	SIZETOKENS = "tokens"
)

// Recorder - the prometheus collectors for a single pipeline run
type Recorder struct {
	reg       *prometheus.Registry
	stages    *prometheus.HistogramVec
	sizes     *prometheus.GaugeVec
	fits      *prometheus.CounterVec
	bestk     prometheus.Gauge
	mtx       sync.Mutex
	completed []string
}

// NewRecorder - a fresh registry; every series carries the run id
func NewRecorder(runid string) *Recorder {
	cl := prometheus.Labels{"run": runid}
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   NAMESPACE,
			Name:        "stage_duration_seconds",
			Help:        "Wall time spent in each pipeline stage",
			ConstLabels: cl,
			Buckets:     []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"stage"}),
		sizes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   NAMESPACE,
			Name:        "size",
			Help:        "Documents, features and tokens seen at each stage",
			ConstLabels: cl,
		}, []string{"stage", "what"}),
		fits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   NAMESPACE,
			Name:        "topic_fits_total",
			Help:        "Topic model fits by K and outcome",
			ConstLabels: cl,
		}, []string{"k", "outcome"}),
		bestk: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   NAMESPACE,
			Name:        "selected_k",
			Help:        "The number of topics in the final model (0 if none was selected)",
			ConstLabels: cl,
		}),
	}
	r.reg.MustRegister(r.stages, r.sizes, r.fits, r.bestk)
	return r
}

// Registry - for callers who want to Gather() themselves
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// Stage - record how long a stage took
func (r *Recorder) Stage(stage string, d time.Duration) {
	r.stages.WithLabelValues(stage).Observe(d.Seconds())
	r.mtx.Lock()
	r.completed = append(r.completed, stage)
	r.mtx.Unlock()
}

// Since - Stage() measured from start; returns now so that calls can be chained
func (r *Recorder) Since(stage string, start time.Time) time.Time {
	now := time.Now()
	r.Stage(stage, now.Sub(start))
	return now
}

// Size - set a gauge such as ("dfm", SIZEFEATS)
func (r *Recorder) Size(stage string, what string, n int) {
	r.sizes.WithLabelValues(stage, what).Set(float64(n))
}

// Fit - count a topic model fit
func (r *Recorder) Fit(k int, err error) {
	outcome := FITOK
	if err != nil {
		outcome = FITFAILED
	}
	r.fits.WithLabelValues(strconv.Itoa(k), outcome).Inc()
}

// Selected - the K that made it into the final model
func (r *Recorder) Selected(k int) {
	r.bestk.Set(float64(k))
}

// Completed - stage names in the order they were recorded
func (r *Recorder) Completed() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	c := make([]string, len(r.completed))
	copy(c, r.completed)
	return c
}

// WriteTextfile - dump everything; the directory is created if need be
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), vv.DIRPERMS); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("metrics: could not write '%s': %w", path, err)
	}
	return nil
}
