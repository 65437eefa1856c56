package daemon

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hpctools/sonar/pkg/config"
)

// Scheduler drives one Operation's cadence: wall-clock-aligned ticks,
// computed fresh each time from the current instant so a slow op never
// accumulates drift, plus an optional immediate on-startup run.
type Scheduler struct {
	Op        Operation
	Log       zerolog.Logger
	TimeLimit time.Duration // zero disables
	Oneshot   bool

	startedAt time.Time
}

// NewScheduler builds a Scheduler for op.
func NewScheduler(op Operation, log zerolog.Logger) *Scheduler {
	return &Scheduler{Op: op, Log: log.With().Str("op", op.Name).Logger()}
}

// Run blocks, invoking Op.Run on every aligned tick, until ctx is
// cancelled, the debug time limit elapses, or (with Oneshot) the first
// execution completes.
func (s *Scheduler) Run(ctx context.Context) {
	s.startedAt = time.Now()

	if s.Op.OnStartup {
		s.exec(ctx, s.startedAt)
		if s.Oneshot {
			return
		}
	}

	for {
		now := time.Now()
		if s.TimeLimit > 0 && now.Sub(s.startedAt) >= s.TimeLimit {
			s.Log.Info().Msg("debug time limit reached, stopping scheduler")
			return
		}

		next := config.NextTick(now, s.Op.Cadence)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case tick := <-timer.C:
			s.exec(ctx, tick)
			if s.Oneshot {
				return
			}
		}
	}
}

func (s *Scheduler) exec(ctx context.Context, tick time.Time) {
	if err := s.Op.Run(ctx, tick); err != nil {
		s.Log.Error().Err(err).Msg("operation failed")
	}
}
