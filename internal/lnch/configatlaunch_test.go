//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package lnch

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/e-gun/NarrativeScope/internal/mm"
	"github.com/e-gun/NarrativeScope/internal/pipeline"
)

func quiet() *mm.MessageMaker {
	m := mm.NewMessageMaker()
	m.Out = io.Discard
	m.BW = true
	return m
}

const sampleyaml = `
loglevel: 4
input: survey.csv
textfield: narrative
mincount: 3
clean:
  stoplist: snowball
  lowercase: true
topics:
  enabled: true
  kmin: 2
  kmax: 6
  formula: "~ gender"
`

func writeconf(t *testing.T) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "conf.yaml")
	if err := os.WriteFile(fn, []byte(sampleyaml), 0644); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestLoadConfigFile(t *testing.T) {
	c := BuildDefaultConfig()
	fn := writeconf(t)
	if err := LoadConfigFile(fn, c); err != nil {
		t.Fatal(err)
	}
	a := c.Analysis
	if c.LogLevel != 4 || a.Input != "survey.csv" || a.TextField != "narrative" || a.MinCount != 3 {
		t.Errorf("file values not applied: %+v", c)
	}
	if a.Clean.StopList != "snowball" || a.Topics.KMax != 6 || a.Topics.Formula != "~ gender" {
		t.Errorf("nested values not applied: %+v", a)
	}
	// untouched keys keep their defaults
	d := pipeline.DefaultConfig()
	if a.SimMetric != d.SimMetric || a.Delimiter != d.Delimiter || a.Topics.Seed != d.Topics.Seed {
		t.Errorf("defaults lost: %+v", a)
	}
	if c.ConfFile != fn {
		t.Errorf("ConfFile = %q", c.ConfFile)
	}

	if err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"), c); err == nil {
		t.Error("missing file was accepted")
	}
}

func TestConfigAtLaunch(t *testing.T) {
	fn := writeconf(t)
	args := []string{"-c", fn, "-i", "other.csv", "-k", "4", "-kr", "3-5", "-mc", "1.5", "-sd", "42", "-wc", "1",
		"-bw", "-js", "-o", "out", "-tf", "answer", "-gl", "1", "-pc", "-pm"}
	c, act, err := ConfigAtLaunch(args, quiet())
	if err != nil || act != RUN {
		t.Fatalf("%v %v", act, err)
	}
	a := c.Analysis
	if a.Input != "other.csv" || a.Topics.K != 4 || a.Topics.KMin != 3 || a.Topics.KMax != 5 || a.MinCount != 1.5 {
		t.Errorf("flags not applied: %+v", a)
	}
	if a.Topics.Seed != 42 || a.Topics.Workers != 1 || a.OutDir != "out" || a.TextField != "answer" {
		t.Errorf("flags not applied: %+v", a)
	}
	if !c.BlackAndWhite || !c.JSONLog || c.LogLevel != 1 || !c.ProfileCPU || !c.ProfileMEM {
		t.Errorf("launch flags not applied: %+v", c)
	}
	if a.Clean.StopList != "snowball" {
		t.Error("the file was not read before the flags")
	}
}

func TestConfigAtLaunchActions(t *testing.T) {
	tests := []struct {
		args []string
		want Action
	}{
		{[]string{"-h"}, HELP},
		{[]string{"-gl", "3", "-v"}, VERSION},
		{nil, RUN},
	}
	for _, tt := range tests {
		_, act, err := ConfigAtLaunch(tt.args, quiet())
		if err != nil || act != tt.want {
			t.Errorf("%v: got %v, %v", tt.args, act, err)
		}
	}
}

func TestConfigAtLaunchErrors(t *testing.T) {
	tests := [][]string{
		{"-gl"},
		{"-gl", "x"},
		{"-kr", "5"},
		{"-mc", "lots"},
		{"-sd", "-1"},
		{"-zz"},
	}
	for _, args := range tests {
		_, _, err := ConfigAtLaunch(args, quiet())
		var fe *FlagError
		if !errors.As(err, &fe) {
			t.Errorf("%v: want a FlagError, got %v", args, err)
		}
	}
}

func TestWorkersClamped(t *testing.T) {
	c, _, err := ConfigAtLaunch([]string{"-wc", "100000"}, quiet())
	if err != nil {
		t.Fatal(err)
	}
	if c.Analysis.Topics.Workers != runtime.NumCPU() {
		t.Errorf("Workers = %d", c.Analysis.Topics.Workers)
	}
}

func TestValidate(t *testing.T) {
	c := BuildDefaultConfig()
	c.LogLevel = 9
	err := Validate(c)
	var ce *pipeline.ConfigError
	if !errors.As(err, &ce) || ce.Field != "LogLevel" {
		t.Errorf("want LogLevel error first, got %v", err)
	}
	// no input either
	if !strings.Contains(err.Error(), "no input file") {
		t.Errorf("pipeline checks were skipped: %v", err)
	}
}

func TestHelpText(t *testing.T) {
	c := BuildDefaultConfig()
	c.Analysis.Input = "survey.csv"
	s, err := HelpText(c, quiet())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"-kr", "survey.csv", "nsc-conf.yaml"} {
		if !strings.Contains(s, want) {
			t.Errorf("help lacks %q", want)
		}
	}
	if strings.Contains(s, "C1") || strings.Contains(s, "S3") {
		t.Error("pseudo-tags were left in")
	}
}
