//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package lnch

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"text/template"

	"github.com/e-gun/NarrativeScope/internal/mm"
	"github.com/e-gun/NarrativeScope/internal/pipeline"
	"github.com/e-gun/NarrativeScope/internal/vv"
	"gopkg.in/yaml.v3"
)

// Action - what main should do once the command line has been read
type Action int

const (
	RUN Action = iota
	HELP
	VERSION
)

// CurrentConfiguration - launch settings plus the analysis settings handed to the pipeline
type CurrentConfiguration struct {
	LogLevel      int             `yaml:"loglevel"`
	BlackAndWhite bool            `yaml:"blackandwhite"`
	JSONLog       bool            `yaml:"jsonlog"`
	ProfileCPU    bool            `yaml:"-"`
	ProfileMEM    bool            `yaml:"-"`
	ConfFile      string          `yaml:"-"`
	Analysis      pipeline.Config `yaml:",inline"`
}

// FlagError - a command line option that could not be used
type FlagError struct {
	Flag  string
	Value string
	Msg   string
}

func (e *FlagError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Flag, e.Msg)
	}
	return fmt.Sprintf("%s '%s': %s", e.Flag, e.Value, e.Msg)
}

// BuildDefaultConfig - return a CurrentConfiguration filled out with various default values
func BuildDefaultConfig() *CurrentConfiguration {
	var c CurrentConfiguration
	c.LogLevel = vv.DEFAULTGOLOGLEVEL
	c.BlackAndWhite = vv.BLACKANDWHITE
	c.JSONLog = false
	c.ProfileCPU = false
	c.ProfileMEM = false
	c.Analysis = pipeline.DefaultConfig()
	c.Analysis.Topics.Workers = runtime.NumCPU()
	return &c
}

// LoadConfigFile - overlay the YAML file on whatever c already holds
func LoadConfigFile(fn string, c *CurrentConfiguration) error {
	data, err := os.ReadFile(fn)
	if err != nil {
		return fmt.Errorf("cannot read configuration file '%s': %w", fn, err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("cannot parse configuration file '%s': %w", fn, err)
	}
	c.ConfFile = fn
	return nil
}

// ConfigSearchPath - "./nsc-conf.yaml" and then "~/.config/nsc-conf.yaml"
func ConfigSearchPath() []string {
	p := []string{filepath.Join(vv.CONFIGLOCATION, vv.CONFIGBASIC)}
	if h, err := os.UserHomeDir(); err == nil {
		p = append(p, fmt.Sprintf(vv.CONFIGALTAPTH, h)+vv.CONFIGBASIC)
	}
	return p
}

// ConfigAtLaunch - defaults, then the configuration file, then the command line
func ConfigAtLaunch(args []string, msg *mm.MessageMaker) (*CurrentConfiguration, Action, error) {
	const (
		MSG1  = "'%s' loaded"
		MSG2  = "no configuration file found; using built-in defaults"
		FAIL1 = "Refusing to set a workercount greater than NumCPU: %d > %d ---> setting workercount value to NumCPU: %d"
	)

	c := BuildDefaultConfig()

	// [a] the file: -c wins; otherwise the first file found on the search path

	explicit := ""
	for i, a := range args {
		if a == "-c" && i+1 < len(args) {
			explicit = args[i+1]
		}
	}

	if explicit != "" {
		if err := LoadConfigFile(explicit, c); err != nil {
			return c, RUN, err
		}
	} else {
		for _, fn := range ConfigSearchPath() {
			if _, err := os.Stat(fn); err != nil {
				continue
			}
			if err := LoadConfigFile(fn, c); err != nil {
				return c, RUN, err
			}
			break
		}
	}

	if c.ConfFile != "" {
		msg.TMI(fmt.Sprintf(MSG1, c.ConfFile))
	} else {
		msg.TMI(MSG2)
	}

	// [b] the flags

	act, err := parseflags(args, c)
	if err != nil || act != RUN {
		return c, act, err
	}

	if c.Analysis.Topics.Workers > runtime.NumCPU() {
		msg.CRIT(fmt.Sprintf(FAIL1, c.Analysis.Topics.Workers, runtime.NumCPU(), runtime.NumCPU()))
		c.Analysis.Topics.Workers = runtime.NumCPU()
	}

	return c, RUN, nil
}

// parseflags - short flags in the old style; a flag that wants a value consumes the next argument
func parseflags(args []string, c *CurrentConfiguration) (Action, error) {
	a := &c.Analysis
	for i := 0; i < len(args); i++ {
		f := args[i]
		val := func() (string, error) {
			if i+1 >= len(args) {
				return "", &FlagError{Flag: f, Msg: "missing value"}
			}
			i++
			return args[i], nil
		}
		num := func() (int, error) {
			v, err := val()
			if err != nil {
				return 0, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return 0, &FlagError{Flag: f, Value: v, Msg: "not an integer"}
			}
			return n, nil
		}

		var err error
		switch f {
		case "-bw":
			c.BlackAndWhite = true
		case "-c":
			_, err = val()
		case "-gl":
			c.LogLevel, err = num()
		case "-h":
			return HELP, nil
		case "-i":
			a.Input, err = val()
		case "-js":
			c.JSONLog = true
		case "-k":
			a.Topics.K, err = num()
		case "-kr":
			var v string
			if v, err = val(); err == nil {
				a.Topics.KMin, a.Topics.KMax, err = parserange(v)
			}
		case "-mc":
			var v string
			if v, err = val(); err == nil {
				var mc float64
				if mc, err = strconv.ParseFloat(v, 64); err != nil {
					err = &FlagError{Flag: f, Value: v, Msg: "not a number"}
				}
				a.MinCount = mc
			}
		case "-o":
			a.OutDir, err = val()
		case "-pc":
			c.ProfileCPU = true
		case "-pm":
			c.ProfileMEM = true
		case "-sd":
			var v string
			if v, err = val(); err == nil {
				var sd uint64
				if sd, err = strconv.ParseUint(v, 10, 64); err != nil {
					err = &FlagError{Flag: f, Value: v, Msg: "not an unsigned integer"}
				}
				a.Topics.Seed = sd
			}
		case "-tf":
			a.TextField, err = val()
		case "-v":
			return VERSION, nil
		case "-wc":
			a.Topics.Workers, err = num()
		default:
			err = &FlagError{Flag: f, Msg: "unknown option; try -h"}
		}
		if err != nil {
			return RUN, err
		}
	}
	return RUN, nil
}

// parserange - "3-8"
func parserange(s string) (int, int, error) {
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, &FlagError{Flag: "-kr", Value: s, Msg: "expected a range such as 3-8"}
	}
	l, e1 := strconv.Atoi(strings.TrimSpace(lo))
	h, e2 := strconv.Atoi(strings.TrimSpace(hi))
	if e1 != nil || e2 != nil {
		return 0, 0, &FlagError{Flag: "-kr", Value: s, Msg: "expected a range such as 3-8"}
	}
	return l, h, nil
}

// Validate - launch settings first, then everything the pipeline will check
func Validate(c *CurrentConfiguration) error {
	var errs []error
	if c.LogLevel < vv.MSGMAND || c.LogLevel > vv.MSGTMI {
		errs = append(errs, &pipeline.ConfigError{Field: "LogLevel", Value: strconv.Itoa(c.LogLevel),
			Msg: fmt.Sprintf("log level must lie between %d and %d", vv.MSGMAND, vv.MSGTMI)})
	}
	if err := c.Analysis.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// HelpText - the colored help template filled out with the current values
func HelpText(c *CurrentConfiguration, msg *mm.MessageMaker) (string, error) {
	home := ""
	if h, err := os.UserHomeDir(); err == nil {
		home = fmt.Sprintf(vv.CONFIGALTAPTH, h)
	}
	conf := c.ConfFile
	if conf == "" {
		conf = filepath.Join(vv.CONFIGLOCATION, vv.CONFIGBASIC)
	}

	m := map[string]interface{}{
		"basic":     vv.CONFIGBASIC,
		"conffile":  conf,
		"cpus":      runtime.NumCPU(),
		"home":      home,
		"input":     c.Analysis.Input,
		"k":         c.Analysis.Topics.K,
		"kmax":      c.Analysis.Topics.KMax,
		"kmin":      c.Analysis.Topics.KMin,
		"loglevel":  c.LogLevel,
		"mincount":  c.Analysis.MinCount,
		"outdir":    c.Analysis.OutDir,
		"seed":      c.Analysis.Topics.Seed,
		"textfield": c.Analysis.TextField,
		"workers":   c.Analysis.Topics.Workers,
	}

	t, err := template.New("").Parse(vv.HELPTEXTTEMPLATE)
	if err != nil {
		return "", err
	}
	var b bytes.Buffer
	if err = t.Execute(&b, m); err != nil {
		return "", fmt.Errorf("HelpText() failed to execute help text template: %w", err)
	}
	return msg.Styled(msg.Color(b.String())), nil
}
