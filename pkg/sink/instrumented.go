package sink

import (
	"context"
	"time"

	"github.com/hpctools/sonar/pkg/metrics"
	"github.com/hpctools/sonar/pkg/queue"
)

// Instrumented wraps a Sink, recording each Send call's outcome and
// duration under the given name so every transport reports through the
// same sonar_send_attempts_total/sonar_send_duration_seconds series
// regardless of which backend is active.
type Instrumented struct {
	Name string
	Sink Sink
}

// Instrument wraps sink so its Send calls are observed under name.
func Instrument(name string, s Sink) *Instrumented {
	return &Instrumented{Name: name, Sink: s}
}

// Send delegates to the wrapped Sink and records one counter increment
// per message outcome, so a partially-failed batch shows up as a mix
// of ok/fatal/retry rather than being attributed entirely to whichever
// outcome happened to come first.
func (i *Instrumented) Send(ctx context.Context, batch []queue.Message) []error {
	start := time.Now()
	outcomes := i.Sink.Send(ctx, batch)
	metrics.SendDuration.WithLabelValues(i.Name).Observe(time.Since(start).Seconds())

	for _, err := range outcomes {
		outcome := "ok"
		switch {
		case err == nil:
		case queue.IsFatal(err):
			outcome = "fatal"
		default:
			outcome = "retry"
		}
		metrics.SendAttempts.WithLabelValues(i.Name, outcome).Inc()
	}
	return outcomes
}
