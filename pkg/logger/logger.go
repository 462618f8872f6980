// Package logger holds the process-wide zerolog logger.
//
// The command wires it once in Init; request handlers receive a logger
// through their constructors, while background loops (return workers, the
// overdue sweeper) take a tagged child from Component.
package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the process logger.
type Options struct {
	// Level accepts zerolog level names plus "warning". Unknown or empty
	// values log at info.
	Level string
	// Pretty writes coloured console lines with the caller attached instead
	// of JSON.
	Pretty bool
	// Service, when set, is added to every line as "service".
	Service string
	// Output defaults to os.Stdout.
	Output io.Writer
}

var current atomic.Pointer[zerolog.Logger]

// Init installs the process logger and returns it. Later calls keep the
// first logger and return it unchanged.
func Init(opts Options) zerolog.Logger {
	l := build(opts)
	if current.CompareAndSwap(nil, &l) {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		zerolog.SetGlobalLevel(l.GetLevel())
	}
	return *current.Load()
}

func build(opts Options) zerolog.Logger {
	w := opts.Output
	if w == nil {
		w = os.Stdout
	}
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	fields := zerolog.New(w).Level(ParseLevel(opts.Level)).With().Timestamp()
	if opts.Service != "" {
		fields = fields.Str("service", opts.Service)
	}
	if opts.Pretty {
		fields = fields.Caller()
	}
	return fields.Logger()
}

// Get returns the installed logger and panics before Init.
func Get() zerolog.Logger {
	l := current.Load()
	if l == nil {
		panic("logger: Init must run before Get")
	}
	return *l
}

// Component tags a child logger with component=name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset drops the installed logger. Tests only.
func Reset() {
	current.Store(nil)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

// ParseLevel maps a configured level name onto zerolog, falling back to info.
func ParseLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		return zerolog.WarnLevel
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
