// Package obslog is the event bus's side-channel logger. Nothing in this
// package is on the critical path of any delivery discipline: a Topic or
// wildcard.Emitter that never configures a logger (Discard) drops every
// line it would have written.
package obslog

import (
	"io"
	"log"
	"os"
)

// Logger is the narrow surface Topic and wildcard.Emitter depend on.
type Logger struct {
	Error *log.Logger
	Info  *log.Logger
	Debug *log.Logger
}

// Option configures a Logger at construction time.
type Option func(*Logger)

// WithOutput directs Error, Info and Debug at w, collapsing all three
// into a single writer. Tests use this to assert on the lines a Topic or
// wildcard.Emitter actually logs.
func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.Error.SetOutput(w)
		l.Info.SetOutput(w)
		l.Debug.SetOutput(w)
	}
}

// New returns a Logger writing Error to stderr and Info/Debug to stdout.
func New(opts ...Option) *Logger {
	l := &Logger{
		Error: log.New(os.Stderr, "eventbus: ERROR: ", log.LstdFlags),
		Info:  log.New(os.Stdout, "eventbus: INFO: ", log.LstdFlags),
		Debug: log.New(os.Stdout, "eventbus: DEBUG: ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Discard returns a Logger that writes nothing anywhere.
func Discard() *Logger {
	return &Logger{
		Error: log.New(io.Discard, "", 0),
		Info:  log.New(io.Discard, "", 0),
		Debug: log.New(io.Discard, "", 0),
	}
}
