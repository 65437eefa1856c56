// Package osexec runs external commands (Slurm's accounting/control/info
// tools, curl for the HTTP relay sink) under a hard wall-clock timeout,
// with stdout captured in full and stderr only logged. It never shells
// out through a shell interpreter, so no argument is ever interpolated
// into a command line.
package osexec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/hpctools/sonar/pkg/metrics"
)

// Runner executes one external command subject to a timeout. It is a
// struct (rather than a bare function) so a designated mock
// env var can substitute a file's contents for the subprocess output in
// tests, without callers branching on test mode themselves.
type Runner struct {
	// Name is the absolute path (or bare name, resolved via PATH) of the
	// command to run.
	Name string
	// Timeout bounds the subprocess wall-clock time and must be
	// positive; Run returns ErrNoTimeout otherwise.
	Timeout time.Duration
	// MockEnvVar, if set and present in the environment, replaces
	// execution entirely: its value is a file path, whose contents stand
	// in for what the command's stdout would have produced.
	MockEnvVar string
	Log        zerolog.Logger
}

// ErrNoTimeout is returned by Run when Timeout is not positive.
var ErrNoTimeout = fmt.Errorf("osexec: timeout must be positive")

// ErrDisabled is returned when Name is empty, meaning the command was
// deliberately disabled in configuration.
var ErrDisabled = fmt.Errorf("osexec: command disabled")

// Run executes the command with args and returns captured stdout.
// Stderr is logged at debug level but never causes Run to fail; a
// nonzero exit or subprocess-launch failure does. On timeout the
// subprocess is killed and the returned error wraps context.DeadlineExceeded.
func (r Runner) Run(ctx context.Context, args ...string) ([]byte, error) {
	if r.Name == "" {
		return nil, ErrDisabled
	}
	if mockPath := os.Getenv(r.MockEnvVar); r.MockEnvVar != "" && mockPath != "" {
		return os.ReadFile(mockPath)
	}
	if r.Timeout <= 0 {
		return nil, ErrNoTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, r.Name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if stderr.Len() > 0 {
		r.Log.Debug().Str("cmd", r.Name).Str("stderr", stderr.String()).Msg("subprocess stderr")
	}
	if err != nil {
		metrics.SubprocessErrors.WithLabelValues(r.Name).Inc()
		if execCtx.Err() != nil {
			return nil, fmt.Errorf("osexec: %s: %w", r.Name, execCtx.Err())
		}
		return nil, fmt.Errorf("osexec: %s: %w", r.Name, err)
	}
	return stdout.Bytes(), nil
}
