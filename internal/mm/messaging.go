//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package mm

import (
	"fmt"
	"github.com/e-gun/NarrativeScope/internal/vv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

//
// TERMINAL OUTPUT/MESSAGES
//

const (
	RESET   = "\033[0m"
	BLUE1   = "\033[38;5;38m"  // DeepSkyBlue2
	BLUE2   = "\033[38;5;68m"  // SteelBlue3
	CYAN1   = "\033[38;5;109m" // LightSkyBlue3
	CYAN2   = "\033[38;5;117m" // SkyBlue1
	GREEN   = "\033[38;5;70m"  // Chartreuse3
	RED1    = "\033[38;5;160m" // Red3
	RED2    = "\033[38;5;168m" // HotPink3
	YELLOW1 = "\033[38;5;178m" // Gold3
	YELLOW2 = "\033[38;5;143m" // DarkKhaki
	GREY1   = "\033[38;5;254m" // Grey89
	GREY2   = "\033[38;5;247m" // Grey62
	GREY3   = "\033[38;5;242m" // Grey42
	WHITE   = "\033[38;5;255m" // Grey93
	BLINK   = "\033[30;0;5m"
	PANIC   = "[%s%s v.%s%s] %sUNRECOVERABLE ERROR%s\n"
	PANIC2  = "[%s%s v.%s%s] (%s%s%s) %sUNRECOVERABLE ERROR%s\n"
)

// MessageMaker - write leveled, optionally colored, messages to the terminal; or hand them to zap
type MessageMaker struct {
	Lnc  time.Time
	BW   bool
	JS   bool
	LLvl int
	LNm  string
	SNm  string
	Ver  string
	Win  bool
	Out  io.Writer
	zl   *zap.Logger
	mtx  sync.Mutex
}

// NewMessageMaker - a MessageMaker with the built-in defaults
func NewMessageMaker() *MessageMaker {
	return &MessageMaker{
		Lnc:  time.Now(),
		BW:   vv.BLACKANDWHITE,
		LLvl: vv.DEFAULTGOLOGLEVEL,
		LNm:  vv.MYNAME,
		SNm:  vv.SHORTNAME,
		Ver:  vv.VERSION,
		Win:  runtime.GOOS == "windows",
		Out:  os.Stdout,
	}
}

// Configure - adopt the user's log level and output preferences
func (m *MessageMaker) Configure(loglevel int, bw bool, js bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.LLvl = loglevel
	m.BW = bw
	m.JS = js
	if js && m.zl == nil {
		m.zl = newzap(m.Out, loglevel)
	}
}

// Sync - flush the zap logger if there is one
func (m *MessageMaker) Sync() {
	if m.zl != nil {
		_ = m.zl.Sync()
	}
}

// newzap - a production-style JSON logger; everything at or below our own threshold has already been filtered
func newzap(w io.Writer, loglevel int) *zap.Logger {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "ts"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	if w == nil {
		w = os.Stdout
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(ec), zapcore.AddSync(w), zapcore.DebugLevel)
	return zap.New(core).With(zap.String("app", vv.SHORTNAME), zap.Int("gl", loglevel))
}

// zaplevel - map our thresholds onto zap levels
func zaplevel(threshold int) zapcore.Level {
	switch threshold {
	case vv.MSGMAND:
		return zapcore.InfoLevel
	case vv.MSGCRIT:
		return zapcore.ErrorLevel
	case vv.MSGWARN:
		return zapcore.WarnLevel
	case vv.MSGNOTE, vv.MSGFYI:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

func (m *MessageMaker) MAND(s string) { m.Emit(s, vv.MSGMAND) }
func (m *MessageMaker) CRIT(s string) { m.Emit(s, vv.MSGCRIT) }
func (m *MessageMaker) WARN(s string) { m.Emit(s, vv.MSGWARN) }
func (m *MessageMaker) NOTE(s string) { m.Emit(s, vv.MSGNOTE) }
func (m *MessageMaker) FYI(s string)  { m.Emit(s, vv.MSGFYI) }
func (m *MessageMaker) PEEK(s string) { m.Emit(s, vv.MSGPEEK) }
func (m *MessageMaker) TMI(s string)  { m.Emit(s, vv.MSGTMI) }

// Emit - send a message to the terminal, perhaps adding color and style to it
func (m *MessageMaker) Emit(message string, threshold int) {
	// sample output: "[NSC] trimmed 1204 features with fewer than 2 occurrences"
	m.EmitWith(message, threshold)
}

// EmitWith - Emit plus structured fields for the JSON mode; the fields are dropped in the terminal
func (m *MessageMaker) EmitWith(message string, threshold int, fields ...zap.Field) {
	if m.LLvl < threshold {
		return
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.JS && m.zl != nil {
		m.zl.Check(zaplevel(threshold), m.Color(message)).Write(fields...)
		return
	}

	out := m.Out
	if out == nil {
		out = os.Stdout
	}

	if !m.Win && !m.BW {
		var color string

		switch threshold {
		case vv.MSGMAND:
			color = GREEN
		case vv.MSGCRIT:
			color = RED1
		case vv.MSGWARN:
			color = YELLOW2
		case vv.MSGNOTE:
			color = YELLOW1
		case vv.MSGFYI:
			color = CYAN2
		case vv.MSGPEEK:
			color = BLUE2
		case vv.MSGTMI:
			color = GREY3
		default:
			color = WHITE
		}
		_, _ = fmt.Fprintf(out, "[%s%s%s] %s%s%s\n", YELLOW1, m.SNm, RESET, color, message, RESET)
	} else {
		// terminal color codes not w's friend
		_, _ = fmt.Fprintf(out, "[%s] %s\n", m.SNm, message)
	}
}

// Color - color text with ANSI codes by swapping out pseudo-tags
func (m *MessageMaker) Color(tagged string) string {
	// "[git: C4%sC0]" ==> green text for the %s
	swap := strings.NewReplacer("C1", "", "C2", "", "C3", "", "C4", "", "C5", "", "C6", "", "C7", "", "C0", "")

	if !m.Win && !m.BW && !m.JS {
		swap = strings.NewReplacer("C1", YELLOW1, "C2", CYAN2, "C3", BLUE1, "C4", GREEN, "C5", RED1,
			"C6", GREY3, "C7", BLINK, "C0", RESET)
	}
	return swap.Replace(tagged)
}

// Styled - style text with ANSI codes by swapping out pseudo-tags
func (m *MessageMaker) Styled(tagged string) string {
	const (
		BOLD    = "\033[1m"
		ITAL    = "\033[3m"
		UNDER   = "\033[4m"
		REVERSE = "\033[7m"
		STRIKE  = "\033[9m"
	)
	swap := strings.NewReplacer("S1", "", "S2", "", "S3", "", "S4", "", "S5", "", "S0", "")

	if !m.Win && !m.BW && !m.JS {
		swap = strings.NewReplacer("S1", BOLD, "S2", ITAL, "S3", UNDER, "S4", STRIKE, "S5", REVERSE,
			"S0", RESET)
	}
	return swap.Replace(tagged)
}

func (m *MessageMaker) ColStyle(tagged string) string {
	return m.Styled(m.Color(tagged))
}

// EF - report error and function; then exit
func (m *MessageMaker) EF(err error, fn string) {
	if err == nil {
		return
	}
	if m.JS && m.zl != nil {
		m.zl.Error("unrecoverable error", zap.String("fn", fn), zap.Error(err))
		m.Sync()
	} else {
		fmt.Printf(PANIC2, YELLOW2, m.LNm, m.Ver, RESET, CYAN2, fn, RESET, RED1, RESET)
		fmt.Println(err)
	}
	m.ExitOrHang(1)
}

// ExitOrHang - Windows should hang to keep the error visible before the window closes and hides it
func (m *MessageMaker) ExitOrHang(e int) {
	const (
		HANG = `Execution suspended. %s is now frozen. Note any errors above. Execution will halt after %d seconds.`
		SUSP = 60
	)
	if m.Win {
		m.Emit(fmt.Sprintf(HANG, m.LNm, SUSP), vv.MSGMAND)
		time.Sleep(SUSP * time.Second)
	}
	os.Exit(e)
}

// Timer - report how much time elapsed between A and B
func (m *MessageMaker) Timer(letter string, o string, start time.Time, previous time.Time) {
	// sample output: "[B3: 4.764s][Δ: 1.024s] built the feature matrix"
	now := time.Now()
	d := fmt.Sprintf("[Δ: %.3fs] ", now.Sub(previous).Seconds())
	s := fmt.Sprintf("[%s: %.3fs]", letter, now.Sub(start).Seconds()) + d + o
	m.EmitWith(s, vv.TIMETRACKERMSGTHRESH, zap.String("stage", letter), zap.Duration("elapsed", now.Sub(previous)))
}
