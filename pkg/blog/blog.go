// Package blog provides leveled logging for the bridge process.
//
// It mirrors the teacher's pkg/log shape: one *log.Logger per level, with
// writers that can be switched to io.Discard to implement level filtering.
// Time/date are omitted by default because the host process or systemd
// usually timestamps stderr for us; SetDateTime(true) enables it.
//
// Levels, from least to most severe: trace, debug, info, warn, error,
// critical. These are exactly the values BRIDGE_LOG_LEVEL accepts.
package blog

import (
	"fmt"
	"io"
	"log"
	"os"
)

var dateTime bool

var (
	TraceWriter io.Writer = os.Stderr
	DebugWriter io.Writer = os.Stderr
	InfoWriter  io.Writer = os.Stderr
	WarnWriter  io.Writer = os.Stderr
	ErrWriter   io.Writer = os.Stderr
	CritWriter  io.Writer = os.Stderr
)

var (
	TracePrefix string = "<7>[TRACE]    "
	DebugPrefix string = "<7>[DEBUG]    "
	InfoPrefix  string = "<6>[INFO]     "
	WarnPrefix  string = "<4>[WARNING]  "
	ErrPrefix   string = "<3>[ERROR]    "
	CritPrefix  string = "<2>[CRITICAL] "
)

var (
	// No time/date.
	traceLog = log.New(TraceWriter, TracePrefix, 0)
	debugLog = log.New(DebugWriter, DebugPrefix, 0)
	infoLog  = log.New(InfoWriter, InfoPrefix, 0)
	warnLog  = log.New(WarnWriter, WarnPrefix, log.Lshortfile)
	errLog   = log.New(ErrWriter, ErrPrefix, log.Llongfile)
	critLog  = log.New(CritWriter, CritPrefix, log.Llongfile)
	// Time/date.
	traceTimeLog = log.New(TraceWriter, TracePrefix, log.LstdFlags)
	debugTimeLog = log.New(DebugWriter, DebugPrefix, log.LstdFlags)
	infoTimeLog  = log.New(InfoWriter, InfoPrefix, log.LstdFlags)
	warnTimeLog  = log.New(WarnWriter, WarnPrefix, log.LstdFlags|log.Lshortfile)
	errTimeLog   = log.New(ErrWriter, ErrPrefix, log.LstdFlags|log.Llongfile)
	critTimeLog  = log.New(CritWriter, CritPrefix, log.LstdFlags|log.Llongfile)
)

// SetLevel configures which levels are emitted. Unknown values fall back to
// "info" after printing a one-line warning to stderr, matching the teacher's
// fallback-to-default behavior in SetLogLevel.
func SetLevel(lvl string) {
	switch lvl {
	case "critical", "crit":
		ErrWriter = io.Discard
		fallthrough
	case "error", "err":
		WarnWriter = io.Discard
		fallthrough
	case "warn", "warning":
		InfoWriter = io.Discard
		fallthrough
	case "info":
		DebugWriter = io.Discard
		fallthrough
	case "debug":
		TraceWriter = io.Discard
	case "trace":
		// nothing discarded
	default:
		fmt.Fprintf(os.Stderr, "pkg/blog: invalid log level %q, using \"info\"\n", lvl)
		SetLevel("info")
		return
	}
}

// SetDateTime toggles date/time prefixes on log lines.
func SetDateTime(enabled bool) {
	dateTime = enabled
}

func emit(w io.Writer, plain, timed *log.Logger, v ...any) {
	if w == io.Discard {
		return
	}
	out := fmt.Sprint(v...)
	if dateTime {
		timed.Output(3, out)
	} else {
		plain.Output(3, out)
	}
}

func emitf(w io.Writer, plain, timed *log.Logger, format string, v ...any) {
	if w == io.Discard {
		return
	}
	out := fmt.Sprintf(format, v...)
	if dateTime {
		timed.Output(3, out)
	} else {
		plain.Output(3, out)
	}
}

func Trace(v ...any) { emit(TraceWriter, traceLog, traceTimeLog, v...) }
func Debug(v ...any) { emit(DebugWriter, debugLog, debugTimeLog, v...) }
func Info(v ...any)  { emit(InfoWriter, infoLog, infoTimeLog, v...) }
func Warn(v ...any)  { emit(WarnWriter, warnLog, warnTimeLog, v...) }
func Error(v ...any) { emit(ErrWriter, errLog, errTimeLog, v...) }
func Crit(v ...any)  { emit(CritWriter, critLog, critTimeLog, v...) }

func Tracef(format string, v ...any) { emitf(TraceWriter, traceLog, traceTimeLog, format, v...) }
func Debugf(format string, v ...any) { emitf(DebugWriter, debugLog, debugTimeLog, format, v...) }
func Infof(format string, v ...any)  { emitf(InfoWriter, infoLog, infoTimeLog, format, v...) }
func Warnf(format string, v ...any)  { emitf(WarnWriter, warnLog, warnTimeLog, format, v...) }
func Errorf(format string, v ...any) { emitf(ErrWriter, errLog, errTimeLog, format, v...) }
func Critf(format string, v ...any)  { emitf(CritWriter, critLog, critTimeLog, format, v...) }
