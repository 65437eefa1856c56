// Package logging configures the process-wide zerolog logger used by
// every sonar component, and provides the RUST_LOG/SONARTEST_LOGGING
// style verbosity knob the daemon and CLI share.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger. Init replaces it; until Init is
// called it defaults to an info-level console writer on stderr so early
// startup errors (before config is parsed) are still visible.
var Logger zerolog.Logger

func init() {
	Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// Config controls logger construction.
type Config struct {
	// Verbose mirrors debug.verbose from the config file: when true,
	// the log level is debug instead of info.
	Verbose bool
	JSON    bool
	Output  io.Writer
}

// Init builds the process-wide Logger from cfg, then applies an
// environment override (RUST_LOG or SONARTEST_LOGGING, checked in that
// order) so the level can be raised without editing the config file.
func Init(cfg Config) {
	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	if lv, ok := envLevel(); ok {
		level = lv
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	var base zerolog.Logger
	if cfg.JSON {
		base = zerolog.New(out).With().Timestamp().Logger()
	} else {
		base = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
	Logger = base.Level(level)
}

func envLevel() (zerolog.Level, bool) {
	for _, key := range []string{"RUST_LOG", "SONARTEST_LOGGING"} {
		v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
		if v == "" {
			continue
		}
		lv, err := zerolog.ParseLevel(v)
		if err != nil {
			continue
		}
		return lv, true
	}
	return zerolog.InfoLevel, false
}

// WithCluster returns a child logger tagged with the cluster name, used
// by every component that emits envelopes (which all carry a cluster
// attribute).
func WithCluster(cluster string) zerolog.Logger {
	return Logger.With().Str("cluster", cluster).Logger()
}

// WithOperation returns a child logger tagged with the sampling
// operation name ("sample", "sysinfo", "jobs", "cluster").
func WithOperation(op string) zerolog.Logger {
	return Logger.With().Str("operation", op).Logger()
}

// WithSink returns a child logger tagged with the sink kind
// ("kafka", "http", "directory", "stdio").
func WithSink(sink string) zerolog.Logger {
	return Logger.With().Str("sink", sink).Logger()
}
