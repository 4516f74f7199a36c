// Package slog provides the leveled, facility-aware logger used
// throughout surfstore. It is a small, self-contained logger in the
// style of a typical internal logging package: a default instance sits
// behind package-level helpers, and individual subsystems can obtain a
// "facility" logger whose debug/verbose output is gated by the STTRACE
// environment variable.
package slog

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel is the severity of a log line.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelVerbose
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelVerbose:
		return "VERBOSE"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Handler receives every line logged at or above the level it was
// registered for.
type Handler func(LogLevel, string)

// Logger is the interface subsystems depend on.
type Logger interface {
	Debugf(format string, args ...interface{})
	Debugln(args ...interface{})
	Verbosef(format string, args ...interface{})
	Verboseln(args ...interface{})
	Infof(format string, args ...interface{})
	Infoln(args ...interface{})
	Warnf(format string, args ...interface{})
	Warnln(args ...interface{})
	Fatalf(format string, args ...interface{})
	Fatalln(args ...interface{})
}

// facilityState holds the enable state for one named subsystem, derived from
// STTRACE at process start.
type facilityState struct {
	enabledFrom LogLevel
}

type root struct {
	mu        sync.Mutex
	out       *log.Logger
	handlers  map[LogLevel][]Handler
	facility  map[string]facilityState
	allLevel  LogLevel
	allIsSet  bool
	discarded bool
}

var std = newRoot()

func newRoot() *root {
	r := &root{
		out:      log.New(os.Stdout, "", log.Ltime),
		handlers: make(map[LogLevel][]Handler),
		facility: make(map[string]facilityState),
	}
	r.parseSTTRACE(os.Getenv("STTRACE"))
	if os.Getenv("LOGGER_DISCARD") != "" {
		r.discarded = true
	}
	return r
}

func (r *root) parseSTTRACE(s string) {
	if s == "" {
		return
	}
	fields := strings.FieldsFunc(s, func(c rune) bool {
		return c == ',' || c == ';' || c == ' ' || c == '\t'
	})
	for _, f := range fields {
		name, lvl := f, "debug"
		if i := strings.IndexByte(f, ':'); i >= 0 {
			name, lvl = f[:i], f[i+1:]
		}
		level := levelFromName(lvl)
		if name == "all" {
			r.allLevel = level
			r.allIsSet = true
			continue
		}
		r.facility[name] = facilityState{enabledFrom: level}
	}
}

func levelFromName(s string) LogLevel {
	switch strings.ToLower(s) {
	case "verbose":
		return LevelVerbose
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelDebug
	}
}

// AddHandler registers a callback invoked for every line at or above
// level.
func AddHandler(level LogLevel, h Handler) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.handlers[level] = append(std.handlers[level], h)
}

func (r *root) dispatch(level LogLevel, msg string) {
	if !r.discarded {
		r.out.Output(3, fmt.Sprintf("%-7s %s", level, msg))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for lvl, hs := range r.handlers {
		if level >= lvl {
			for _, h := range hs {
				h(level, msg)
			}
		}
	}
}

// isEnabledFor reports whether facility (possibly "") should emit at level.
func (r *root) isEnabledFor(facility string, level LogLevel) bool {
	if level >= LevelInfo {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if fs, ok := r.facility[facility]; ok {
		return level >= fs.enabledFrom
	}
	if r.allIsSet {
		return level >= r.allLevel
	}
	return false
}

type facilityLogger struct {
	name string
}

// New returns the default, unnamed logger.
func New() Logger { return &facilityLogger{} }

// NewFacility returns a Logger scoped to name; its debug/verbose output
// is gated by STTRACE as described in the package doc.
func NewFacility(name, _description string) Logger {
	return &facilityLogger{name: name}
}

func (f *facilityLogger) log(level LogLevel, msg string) {
	if !std.isEnabledFor(f.name, level) {
		return
	}
	if f.name != "" {
		msg = f.name + ": " + msg
	}
	std.dispatch(level, msg)
}

func (f *facilityLogger) Debugf(format string, args ...interface{}) {
	f.log(LevelDebug, fmt.Sprintf(format, args...))
}
func (f *facilityLogger) Debugln(args ...interface{}) { f.log(LevelDebug, fmt.Sprintln(args...)) }
func (f *facilityLogger) Verbosef(format string, args ...interface{}) {
	f.log(LevelVerbose, fmt.Sprintf(format, args...))
}
func (f *facilityLogger) Verboseln(args ...interface{}) { f.log(LevelVerbose, fmt.Sprintln(args...)) }
func (f *facilityLogger) Infof(format string, args ...interface{}) {
	f.log(LevelInfo, fmt.Sprintf(format, args...))
}
func (f *facilityLogger) Infoln(args ...interface{}) { f.log(LevelInfo, fmt.Sprintln(args...)) }
func (f *facilityLogger) Warnf(format string, args ...interface{}) {
	f.log(LevelWarn, fmt.Sprintf(format, args...))
}
func (f *facilityLogger) Warnln(args ...interface{}) { f.log(LevelWarn, fmt.Sprintln(args...)) }
func (f *facilityLogger) Fatalf(format string, args ...interface{}) {
	f.log(LevelError, fmt.Sprintf(format, args...))
	os.Exit(1)
}
func (f *facilityLogger) Fatalln(args ...interface{}) {
	f.log(LevelError, fmt.Sprintln(args...))
	os.Exit(1)
}

// DefaultLogger is the package-wide unnamed logger, used by callers
// that want a `var l = slog.DefaultLogger` package-level handle instead
// of a named facility.
var DefaultLogger Logger = New()
