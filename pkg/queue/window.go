package queue

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// ErrFatal marks a sink error as non-retriable: Fatal(err) satisfies
// errors.Is(err, ErrFatal).
var ErrFatal = errors.New("queue: fatal sink error")

// Fatal wraps err so IsFatal reports true for it. Sinks call this to
// classify an error that should drop the batch rather than retain it
// for the next sending window.
func Fatal(err error) error { return fmt.Errorf("%w: %w", ErrFatal, err) }

// IsFatal reports whether err was produced by Fatal.
func IsFatal(err error) bool { return errors.Is(err, ErrFatal) }

// Sender delivers one batch of messages to a sink backend.
//
// Send returns one outcome per message, in the same order as batch: nil
// means delivered, a Fatal-wrapped error means permanently rejected
// (drop it, never retry), and any other non-nil error means a
// transient failure (retain it for the next attempt). Delivery success
// is per-message per spec.md's sink contract, so a partially-failed
// batch discards only the messages that actually failed rather than
// retrying the whole batch. A Sender that cannot distinguish outcomes
// per message (a single whole-batch write, like one curl POST) returns
// the same outcome for every message via Replicate.
type Sender interface {
	Send(ctx context.Context, batch []Message) []error
}

// Replicate returns a slice of length n with every element set to err,
// for Senders whose underlying transport only reports one outcome for
// an entire batch.
func Replicate(err error, n int) []error {
	out := make([]error, n)
	for i := range out {
		out[i] = err
	}
	return out
}

// Window drives one sink's randomized sending-window cycle against a
// Queue: on arming, wait a random duration in [0, Max], then drain and
// attempt delivery, re-arming immediately (without an intervening
// enqueue) on transient failure.
type Window struct {
	Queue  *Queue
	Sender Sender
	Max    time.Duration
	TTL    time.Duration
	Log    zerolog.Logger

	armed chan struct{}
	rand  func(max time.Duration) time.Duration
}

// NewWindow builds a Window ready for Run.
func NewWindow(q *Queue, sender Sender, max, ttl time.Duration, log zerolog.Logger) *Window {
	return &Window{
		Queue: q, Sender: sender, Max: max, TTL: ttl, Log: log,
		armed: make(chan struct{}, 1),
		rand:  defaultRandWindow,
	}
}

func defaultRandWindow(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max) + 1))
}

// Arm requests a fresh sending-window wait. It is idempotent while
// already armed: a burst of enqueues collapses into one pending arm, so
// the batch naturally picks up everything queued by the time the timer
// fires. Call this after an Enqueue reports wasEmpty=true.
func (w *Window) Arm() {
	select {
	case w.armed <- struct{}{}:
	default:
	}
}

// Run drives the window loop until ctx is cancelled. On cancellation it
// performs one final drain-and-send attempt (best-effort flush) before
// returning.
func (w *Window) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.attempt(ctx)
			return
		case <-w.armed:
		}

		d := w.rand(w.Max)
		select {
		case <-ctx.Done():
			w.attempt(ctx)
			return
		case <-time.After(d):
		}

		if !w.attempt(ctx) {
			w.Arm()
		}
	}
}

// Flush attempts one immediate drain-and-send, bypassing the random
// sending-window wait. It is the shutdown-path primitive: during drain
// the daemon calls this on every sink repeatedly, until it reports the
// batch resolved or the drain deadline passes, instead of going through
// Arm/Run's randomized timer.
func (w *Window) Flush(ctx context.Context) bool {
	return w.attempt(ctx)
}

// attempt drains TTL-expired items, sends the remainder, and reports
// whether the batch is now fully resolved (every message either
// delivered or dropped as fatal) as opposed to some of it needing a
// retry. Each message's outcome is classified independently, so one
// message's fatal rejection never causes an otherwise-delivered
// sibling to be retried, and one message's transient failure never
// causes an otherwise-delivered sibling to be resent.
func (w *Window) attempt(ctx context.Context) bool {
	batch, expired := w.Queue.DrainExpired(time.Now(), w.TTL)
	for range expired {
		w.Log.Warn().Msg("message exceeded ttl, dropping")
	}
	if len(batch) == 0 {
		return true
	}

	outcomes := w.Sender.Send(ctx, batch)
	var resolved, retry []Message
	for i, m := range batch {
		var outcome error
		if i < len(outcomes) {
			outcome = outcomes[i]
		}
		switch {
		case outcome == nil:
			resolved = append(resolved, m)
		case IsFatal(outcome):
			w.Log.Error().Err(outcome).Msg("fatal sink error, dropping message")
			resolved = append(resolved, m)
		default:
			w.Log.Warn().Err(outcome).Msg("transient sink error, retaining message")
			retry = append(retry, m)
		}
	}

	w.Queue.Discard(resolved)
	if len(retry) == 0 {
		return true
	}
	w.Queue.Requeue(retry)
	return false
}
