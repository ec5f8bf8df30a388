//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/e-gun/NarrativeScope/internal/lnch"
	"github.com/e-gun/NarrativeScope/internal/mm"
	"github.com/e-gun/NarrativeScope/internal/pipeline"
	"github.com/pkg/profile"
)

// these next variables should be injected at build time: 'go build -ldflags "-X main.GitCommit=$GIT_COMMIT"', etc

var GitCommit string
var VersSuppl string
var BuildDate string

func main() {
	const (
		MSG1 = "run %s finished: %d charts; output in '%s'"
		MSG2 = "profiling: see the path printed above; e.g. 'go tool pprof --pdf ./NarrativeScope cpu.pprof > profile.pdf'"
	)

	lnch.GitCommit = GitCommit
	lnch.VersSuppl = VersSuppl
	lnch.BuildDate = BuildDate

	msg := mm.NewMessageMaker()

	cfg, act, err := lnch.ConfigAtLaunch(os.Args[1:], msg)
	msg.EF(err, "ConfigAtLaunch()")
	msg.Configure(cfg.LogLevel, cfg.BlackAndWhite, cfg.JSONLog)
	defer msg.Sync()

	switch act {
	case lnch.HELP:
		fmt.Println(lnch.VersionLine(cfg, msg))
		fmt.Println(lnch.BuildInfo(cfg, msg))
		h, herr := lnch.HelpText(cfg, msg)
		msg.EF(herr, "HelpText()")
		fmt.Println(h)
		return
	case lnch.VERSION:
		fmt.Println(lnch.VersionLine(cfg, msg))
		fmt.Println(lnch.BuildInfo(cfg, msg))
		return
	}

	if !cfg.JSONLog {
		fmt.Println(lnch.VersionLine(cfg, msg))
		fmt.Println(lnch.Copyright(msg))
	}

	msg.EF(lnch.Validate(cfg), "Validate()")

	// go tool pprof --pdf ./NarrativeScope /var/folders/.../cpu.pprof > profile.pdf
	if cfg.ProfileCPU {
		defer profile.Start().Stop()
		msg.NOTE(MSG2)
	} else if cfg.ProfileMEM {
		defer profile.Start(profile.MemProfile).Stop()
		msg.NOTE(MSG2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := pipeline.Run(ctx, cfg.Analysis, pipeline.Deps{Msg: msg})
	msg.EF(err, "pipeline.Run()")

	if !cfg.JSONLog {
		printsummary(os.Stdout, cfg.Analysis, rep, msg)
	}
	msg.MAND(fmt.Sprintf(MSG1, rep.RunID, len(rep.Charts), cfg.Analysis.OutDir))
}
