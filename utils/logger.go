package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Logger provides leveled logging throughout the application.
type Logger struct {
	info    *log.Logger
	warn    *log.Logger
	err     *log.Logger
	debug   *log.Logger
	verbose bool
	color   bool
}

// NewLogger creates a new Logger writing to stdout/stderr.
func NewLogger() *Logger {
	l := newLogger(os.Stdout, os.Stderr)
	l.color = true
	return l
}

// NewLoggerTo creates an uncolored Logger sending every level to w.
func NewLoggerTo(w io.Writer) *Logger {
	return newLogger(w, w)
}

func newLogger(out, errOut io.Writer) *Logger {
	flags := 0
	return &Logger{
		info:  log.New(out, "", flags),
		warn:  log.New(out, "", flags),
		err:   log.New(errOut, "", flags),
		debug: log.New(out, "", flags),
	}
}

// SetVerbose enables Debug output.
func (l *Logger) SetVerbose(v bool) {
	l.verbose = v
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) tag(level, ansi string) string {
	if !l.color {
		return fmt.Sprintf("%-5s", level)
	}
	return fmt.Sprintf("\033[%sm%-5s\033[0m", ansi, level)
}

func (l *Logger) Info(format string, args ...any) {
	l.info.Printf("[%s] %s %s", l.timestamp(), l.tag("INFO", "32"), fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...any) {
	l.warn.Printf("[%s] %s %s", l.timestamp(), l.tag("WARN", "33"), fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Printf("[%s] %s %s", l.timestamp(), l.tag("ERROR", "31"), fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.debug.Printf("[%s] %s %s", l.timestamp(), l.tag("DEBUG", "36"), fmt.Sprintf(format, args...))
}
