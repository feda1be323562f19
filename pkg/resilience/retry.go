// Package resilience retries report deliveries to external sinks. Each
// attempt gets its own deadline and attempts are spaced by a capped,
// jittered exponential backoff.
package resilience

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/logger"
)

// RetryConfig is the delivery policy for one sink. Zero fields take the
// defaults applied by withDefaults.
type RetryConfig struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64
	// AttemptTimeout bounds each call to fn; zero disables it.
	AttemptTimeout time.Duration
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = 100 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 10 * time.Second
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2
	}
	if c.JitterFraction <= 0 {
		c.JitterFraction = 0.1
	}
	return c
}

// Backoff returns the wait after the given failed attempt, counting from 1.
// The result never exceeds MaxDelay and never drops below zero.
func (c RetryConfig) Backoff(attempt int) time.Duration {
	c = c.withDefaults()
	base := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt-1))
	d := base * (1 + c.JitterFraction*(2*rand.Float64()-1))
	return time.Duration(max(0, min(d, float64(c.MaxDelay))))
}

// Retry calls fn until it succeeds, ctx ends or the attempts run out, and
// returns how many calls were made. sink names the destination in logs,
// which also carry the run ID found in ctx.
func Retry(ctx context.Context, sink string, cfg RetryConfig, fn func(ctx context.Context) error) (int, error) {
	cfg = cfg.withDefaults()
	log := logger.FromContext(ctx).With("component", "sink-retry", "sink", sink)

	var err error
	for attempt := 1; ; attempt++ {
		if err = callWithDeadline(ctx, cfg.AttemptTimeout, fn); err == nil {
			if attempt > 1 {
				log.Info("delivered after retry", "attempt", attempt)
			}
			return attempt, nil
		}
		if attempt == cfg.MaxAttempts {
			return attempt, fmt.Errorf("%s: giving up after %d attempts: %w", sink, attempt, err)
		}
		if ctx.Err() != nil {
			return attempt, fmt.Errorf("%s: retry aborted: %w", sink, ctx.Err())
		}

		wait := cfg.Backoff(attempt)
		log.Warn("delivery failed",
			"attempt", attempt,
			"max_attempts", cfg.MaxAttempts,
			"backoff", wait,
			"error", err,
		)
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return attempt, fmt.Errorf("%s: retry aborted during backoff: %w", sink, ctx.Err())
		}
	}
}
