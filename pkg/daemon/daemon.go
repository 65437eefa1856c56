package daemon

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/hpctools/sonar/pkg/lockfile"
	"github.com/hpctools/sonar/pkg/queue"
)

// Exit codes distinguish a clean stop from a signal-driven one from a
// hard startup failure, for the process's final os.Exit.
const (
	ExitNormal      = 0
	ExitInterrupted = 1
	ExitFatal       = 2
)

// DrainTimeout bounds how long drain keeps retrying Window.Flush on the
// queued sends after the schedulers have stopped.
const DrainTimeout = 10 * time.Second

// Daemon wires the lock, the lifecycle state machine, one Scheduler per
// configured operation, and one Window per configured sink.
type Daemon struct {
	Lifecycle  *Lifecycle
	Lock       *lockfile.Lock
	Schedulers []*Scheduler
	Windows    []*queue.Window
	Log        zerolog.Logger
}

// New acquires the lock directory and builds a Daemon ready to Run.
func New(lockDir string, schedulers []*Scheduler, windows []*queue.Window, log zerolog.Logger) (*Daemon, error) {
	lock, err := lockfile.Acquire(lockDir)
	if err != nil {
		return nil, err
	}
	return &Daemon{
		Lifecycle:  NewLifecycle(),
		Lock:       lock,
		Schedulers: schedulers,
		Windows:    windows,
		Log:        log,
	}, nil
}

// Run drives the full lifecycle until a signal arrives or every
// scheduler stops on its own (debug time-limit/oneshot), then drains
// sinks and releases the lock. It returns the process exit code.
func (d *Daemon) Run(ctx context.Context) int {
	if err := d.Lifecycle.Transition(Running); err != nil {
		d.Log.Error().Err(err).Msg("lifecycle")
		return ExitFatal
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	interrupted := false
	go func() {
		select {
		case <-sigCh:
			d.Log.Info().Msg("signal received, draining")
			interrupted = true
			cancel()
		case <-runCtx.Done():
		}
	}()

	var windowsWG, schedWG sync.WaitGroup
	for _, w := range d.Windows {
		windowsWG.Add(1)
		go func(w *queue.Window) {
			defer windowsWG.Done()
			w.Run(runCtx)
		}(w)
	}
	for _, s := range d.Schedulers {
		schedWG.Add(1)
		go func(s *Scheduler) {
			defer schedWG.Done()
			s.Run(runCtx)
		}(s)
	}
	schedWG.Wait()
	// Windows run until their context ends; stop them once every
	// scheduler has returned, whether by signal or on its own.
	cancel()
	windowsWG.Wait()

	if err := d.Lifecycle.Transition(Draining); err != nil {
		d.Log.Error().Err(err).Msg("lifecycle")
	}
	d.drain()

	if err := d.Lifecycle.Transition(Stopped); err != nil {
		d.Log.Error().Err(err).Msg("lifecycle")
	}
	if d.Lock != nil {
		if err := d.Lock.Release(); err != nil {
			d.Log.Warn().Err(err).Msg("releasing lock")
		}
	}

	if interrupted {
		return ExitInterrupted
	}
	return ExitNormal
}

// drain gives every window one last bounded chance to flush once the
// schedulers have already stopped producing new work: repeated
// immediate Flush calls (no randomized wait) until the sink reports
// resolved or the drain timeout elapses.
func (d *Daemon) drain() {
	deadline := time.Now().Add(DrainTimeout)

	var wg sync.WaitGroup
	for _, w := range d.Windows {
		wg.Add(1)
		go func(w *queue.Window) {
			defer wg.Done()
			for time.Now().Before(deadline) {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				done := w.Flush(ctx)
				cancel()
				if done {
					return
				}
			}
		}(w)
	}
	wg.Wait()
}
