// Package sink publishes finished reports to optional external stores. The
// report file is always written first, so a failing sink never loses
// results; its error is only reported.
package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/report"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/resilience"
)

// Report describes one completed run.
type Report struct {
	RunID       string
	Input       string
	Output      string
	Entries     []report.Entry
	TotalTokens int64
	StartedAt   time.Time
	Duration    time.Duration
}

// Sink is an external destination for reports.
type Sink interface {
	Name() string
	Publish(ctx context.Context, r *Report) error
	Close() error
}

// Publisher sends each report to every configured sink, retrying each one
// independently.
type Publisher struct {
	sinks   []Sink
	retry   resilience.RetryConfig
	metrics *metrics.Metrics
}

func NewPublisher(sinks []Sink, retry resilience.RetryConfig, m *metrics.Metrics) *Publisher {
	return &Publisher{sinks: sinks, retry: retry, metrics: m}
}

// Len returns the number of sinks.
func (p *Publisher) Len() int {
	return len(p.sinks)
}

// Publish delivers r to all sinks. Every sink is attempted; failures are
// collected into one error wrapping ErrSink.
func (p *Publisher) Publish(ctx context.Context, r *Report) error {
	log := logger.FromContext(ctx).With("component", "sink-publisher")
	var result *multierror.Error
	for _, s := range p.sinks {
		start := time.Now()
		attempts, err := resilience.Retry(ctx, s.Name(), p.retry, func(ctx context.Context) error {
			return s.Publish(ctx, r)
		})
		status := "success"
		if err != nil {
			status = "failure"
			result = multierror.Append(result, fmt.Errorf("%w: %s: %w", apperrors.ErrSink, s.Name(), err))
			log.Error("report publish failed", "sink", s.Name(), "attempts", attempts, "error", err)
		} else {
			log.Info("report published",
				"sink", s.Name(),
				"entries", len(r.Entries),
				"attempts", attempts,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}
		if p.metrics != nil {
			p.metrics.SinkPublishTotal.WithLabelValues(s.Name(), status).Inc()
		}
	}
	return result.ErrorOrNil()
}

// Close closes every sink and returns the combined error.
func (p *Publisher) Close() error {
	var result *multierror.Error
	for _, s := range p.sinks {
		if err := s.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing %s: %w", s.Name(), err))
		}
	}
	return result.ErrorOrNil()
}
