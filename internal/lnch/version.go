//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package lnch

import (
	"fmt"
	"runtime"

	"github.com/e-gun/NarrativeScope/internal/mm"
	"github.com/e-gun/NarrativeScope/internal/vv"
)

//
// VERSION INFO BUILD TIME INJECTION
//

// these next variables should be injected at build time: 'go build -ldflags "-X main.GitCommit=$GIT_COMMIT"', etc
// main.go copies them in here at startup

var GitCommit string
var VersSuppl string
var BuildDate string

// VersionLine - e.g. "[NSC] NarrativeScope (v0.3.2) [git: 64974732] [gl=2; js=false]"
func VersionLine(cc *CurrentConfiguration, msg *mm.MessageMaker) string {
	const (
		SN = "[C1%sC0] "
		GC = " [C4git: C4%sC0]"
		LL = " [C6gl=%d; js=%tC0]"
		ME = "C5%sC0 (C2v%sC0)"
	)
	gc := ""
	if GitCommit != "" {
		gc = fmt.Sprintf(GC, GitCommit)
	}
	v := fmt.Sprintf(SN, vv.SHORTNAME) + fmt.Sprintf(ME, vv.MYNAME, vv.VERSION+VersSuppl) + gc +
		fmt.Sprintf(LL, cc.LogLevel, cc.JSONLog)
	return msg.ColStyle(v)
}

// BuildInfo - build date, toolchain, platform and worker count
func BuildInfo(cc *CurrentConfiguration, msg *mm.MessageMaker) string {
	// example:
	// 	Built:	2023-11-14@19:02:51		Golang:	go1.21.4
	//	System:	darwin-arm64			WKvCPU:	8/20
	const (
		BD = "\tS1Built:S0\tC3%sC0\t"
		GV = "\tS1Golang:S0\tC3%sC0\n"
		SY = "\tS1System:S0\tC3%s-%sC0\t"
		WC = "\t\tS1WKvCPU:S0\tC3%dC0/C3%dC0"
	)

	bi := ""
	if BuildDate != "" {
		bi = msg.ColStyle(fmt.Sprintf(BD, BuildDate))
	}
	bi += msg.ColStyle(fmt.Sprintf(GV, runtime.Version()))
	bi += msg.ColStyle(fmt.Sprintf(SY, runtime.GOOS, runtime.GOARCH))
	bi += msg.ColStyle(fmt.Sprintf(WC, cc.Analysis.Topics.Workers, runtime.NumCPU()))
	return bi
}

// Copyright - the GPL notice for the top of the terminal output
func Copyright(msg *mm.MessageMaker) string {
	return msg.ColStyle(fmt.Sprintf(vv.TERMINALTEXT, vv.PROJYEAR, vv.PROJAUTH, vv.PROJURL))
}
