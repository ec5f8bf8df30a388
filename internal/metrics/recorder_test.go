//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder("run-1")
	start := time.Now()
	next := r.Since("ingest", start)
	r.Stage("dfm", 30*time.Millisecond)
	if next.Before(start) {
		t.Error("Since() went backwards")
	}

	r.Size("dfm", SIZEDOCS, 12)
	r.Size("dfm", SIZEFEATS, 340)
	r.Fit(3, nil)
	r.Fit(4, errors.New("boom"))
	r.Fit(3, nil)
	r.Selected(3)

	if c := r.Completed(); !reflect.DeepEqual(c, []string{"ingest", "dfm"}) {
		t.Errorf("Completed() = %v", c)
	}

	mf, err := r.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(mf) != 4 {
		t.Errorf("gathered %d families", len(mf))
	}

	fn := filepath.Join(t.TempDir(), "prom", "nsc.prom")
	if err = r.WriteTextfile(fn); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)

	tests := []string{
		`nsc_stage_duration_seconds_count{run="run-1",stage="dfm"} 1`,
		`nsc_size{run="run-1",stage="dfm",what="features"} 340`,
		`nsc_topic_fits_total{k="3",outcome="ok",run="run-1"} 2`,
		`nsc_topic_fits_total{k="4",outcome="failed",run="run-1"} 1`,
		`nsc_selected_k{run="run-1"} 3`,
	}
	for _, want := range tests {
		if !strings.Contains(s, want) {
			t.Errorf("textfile lacks %q:\n%s", want, s)
		}
	}
}
