// Package poller repeatedly queries a long-running external operation at a fixed
// interval until its status reaches a terminal value.
//
// There is no iteration bound, backoff or jitter. The loop ends when the status is
// terminal or the context is cancelled from outside.
package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/pennsieve/account-provisioner/internal/logging"
)

// Probe returns the current status of the operation being polled.
type Probe func(ctx context.Context) (string, error)

// Sleeper suspends the loop between probes.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// ContextSleeper waits for d or until ctx is done.
var ContextSleeper = SleeperFunc(func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
})

// Result is the last status observed and the number of probes made.
type Result struct {
	Status   string
	Attempts int
}

type Poller struct {
	Interval time.Duration
	Sleeper  Sleeper
	Logger   *slog.Logger
	// OnStatus, when set, is called with every successfully observed status.
	OnStatus func(ctx context.Context, status string, attempt int)
}

func New(interval time.Duration) *Poller {
	return &Poller{Interval: interval, Sleeper: ContextSleeper, Logger: logging.Default}
}

// Poll probes until done reports a terminal status. Probe errors are logged and
// treated as non-terminal.
func (p *Poller) Poll(ctx context.Context, probe Probe, done func(status string) bool) (Result, error) {
	var result Result
	for {
		status, err := probe(ctx)
		result.Attempts++
		if err != nil {
			p.logger().Warn("status check failed",
				slog.Int("attempt", result.Attempts),
				slog.String("error", err.Error()))
		} else {
			result.Status = status
			p.logger().Info("status observed",
				slog.Int("attempt", result.Attempts),
				slog.String("status", status))
			if p.OnStatus != nil {
				p.OnStatus(ctx, status, result.Attempts)
			}
			if done(status) {
				return result, nil
			}
		}

		if err := p.sleeper().Sleep(ctx, p.Interval); err != nil {
			return result, err
		}
	}
}

// In returns a predicate matching any of the given statuses.
func In(statuses ...string) func(string) bool {
	set := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return func(status string) bool {
		_, ok := set[status]
		return ok
	}
}

func (p *Poller) logger() *slog.Logger {
	if p.Logger == nil {
		return logging.Default
	}
	return p.Logger
}

func (p *Poller) sleeper() Sleeper {
	if p.Sleeper == nil {
		return ContextSleeper
	}
	return p.Sleeper
}
