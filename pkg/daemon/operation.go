// Package daemon implements the cadenced scheduler and lifecycle state
// machine that drives sonar's sampling operations: Init -> Running,
// oscillating with Draining, down to Stopped on shutdown.
package daemon

import (
	"context"
	"time"
)

// Operation is one cadenced unit of work (sample, sysinfo, jobs,
// cluster). Run is called once per scheduled tick; it should enqueue
// whatever it produces itself rather than returning it, since each
// operation may fan out to more than one sink-bound message.
type Operation struct {
	Name      string
	Cadence   time.Duration
	OnStartup bool
	Run       func(ctx context.Context, tick time.Time) error
}
