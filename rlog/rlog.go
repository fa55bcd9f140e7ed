// Package rlog is a small colorized leveled logger, the smrender
// equivalent of EDirect's ad-hoc currColor conventions in its CLI
// driver (xtract's color.New()/Add(color.FgRed) dispatch), formalized
// into a level-scoped logger that writes to stderr.
package rlog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Level is a logging verbosity threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

var levelColor = [...]*color.Color{
	color.New(color.FgCyan),
	color.New(color.FgGreen),
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgRed, color.Bold),
}

// Logger writes leveled, colorized lines to an io.Writer (stderr by
// default). It implements smrender.Logger.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	color  bool
	prefix string
}

// New returns a Logger writing to w at the given minimum level. Color is
// enabled automatically when w is a terminal-like file and disabled
// otherwise (color.NoColor already handles the TTY detection process-
// wide; this just respects it).
func New(w io.Writer, level Level) *Logger {
	return &Logger{out: w, level: level, color: !color.NoColor}
}

// Default returns a Logger writing to os.Stderr at LevelInfo, the
// driver's default verbosity (the -d flag raises it to LevelDebug).
func Default() *Logger {
	return New(os.Stderr, LevelInfo)
}

// WithPrefix returns a copy of l that prefixes every line, for scoping
// diagnostics.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{out: l.out, level: l.level, color: l.color, prefix: prefix}
}

func (l *Logger) SetLevel(level Level) { l.level = level }

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	tag := levelNames[level]
	if l.color {
		tag = levelColor[level].Sprint(tag)
	}
	if l.prefix != "" {
		fmt.Fprintf(l.out, "%s [%s] %s: %s\n", tag, l.prefix, "smrender", msg)
		return
	}
	fmt.Fprintf(l.out, "%s: %s\n", tag, msg)
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.log(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.log(LevelError, format, args...) }
