// Package runner executes one word-frequency run: count the input, sort the
// words, write the report file and hand the report to any sinks.
package runner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/counter"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/report"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/sink"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/tracing"
)

// Summary describes a finished run.
type Summary struct {
	RunID         string
	Input         string
	Output        string
	DistinctWords int
	TotalTokens   int64
	Duration      time.Duration
	// SinkErr holds publish failures. The report file is written regardless.
	SinkErr error
}

type Runner struct {
	engine    *counter.Engine
	publisher *sink.Publisher
	metrics   *metrics.Metrics
}

// New returns a Runner. publisher and m may be nil.
func New(engine *counter.Engine, publisher *sink.Publisher, m *metrics.Metrics) *Runner {
	return &Runner{engine: engine, publisher: publisher, metrics: m}
}

// Run counts input and writes the sorted report to output. If input cannot
// be read, output is left untouched.
func (r *Runner) Run(ctx context.Context, input, output string) (*Summary, error) {
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	ctx, span := tracing.StartSpan(ctx, "run", runID)
	log := logger.FromContext(ctx).With("component", "runner")
	start := time.Now()

	log.Info("started", "input", input, "output", output)
	summary, err := r.run(ctx, runID, input, output, start)

	total := span.End()
	span.Log(log)
	r.observe("total", total)
	if err != nil {
		r.countRun("failure")
		log.Error("run failed", "error", err, "elapsed_ms", total.Milliseconds())
		return nil, err
	}
	summary.Duration = total
	r.countRun(status(summary))
	log.Info("elapsed",
		"elapsed_ms", total.Milliseconds(),
		"distinct_words", summary.DistinctWords,
		"tokens", summary.TotalTokens,
	)
	return summary, nil
}

func (r *Runner) run(ctx context.Context, runID, input, output string, start time.Time) (*Summary, error) {
	log := logger.FromContext(ctx).With("component", "runner")

	countCtx, countSpan := tracing.StartChildSpan(ctx, "count")
	res, err := r.engine.ProcessFile(countCtx, input)
	countSpan.SetAttr("chunks", resultChunks(res))
	r.observe("count", countSpan.End())
	if err != nil {
		return nil, err
	}
	log.Info("file read",
		"elapsed_ms", time.Since(start).Milliseconds(),
		"bytes", res.Bytes,
		"distinct_words", len(res.Frequencies),
	)

	_, sortSpan := tracing.StartChildSpan(ctx, "sort")
	entries := report.Sort(res.Frequencies)
	r.observe("sort", sortSpan.End())

	_, writeSpan := tracing.StartChildSpan(ctx, "write")
	err = report.WriteFile(output, entries)
	r.observe("write", writeSpan.End())
	if err != nil {
		return nil, err
	}
	log.Info("report written",
		"elapsed_ms", time.Since(start).Milliseconds(),
		"path", output,
		"lines", len(entries),
	)

	summary := &Summary{
		RunID:         runID,
		Input:         input,
		Output:        output,
		DistinctWords: len(entries),
		TotalTokens:   res.Tokens,
	}

	if r.publisher != nil && r.publisher.Len() > 0 {
		pubCtx, pubSpan := tracing.StartChildSpan(ctx, "publish")
		summary.SinkErr = r.publisher.Publish(pubCtx, &sink.Report{
			RunID:       runID,
			Input:       input,
			Output:      output,
			Entries:     entries,
			TotalTokens: res.Tokens,
			StartedAt:   start,
			Duration:    time.Since(start),
		})
		r.observe("publish", pubSpan.End())
		if summary.SinkErr != nil {
			log.Warn("report written but not every sink accepted it", "error", summary.SinkErr)
		}
	}
	return summary, nil
}

func resultChunks(res *counter.Result) int {
	if res == nil {
		return 0
	}
	return res.Chunks
}

func status(s *Summary) string {
	if s.SinkErr != nil {
		return "partial"
	}
	return "success"
}

func (r *Runner) observe(phase string, d time.Duration) {
	if r.metrics != nil {
		r.metrics.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
	}
}

func (r *Runner) countRun(status string) {
	if r.metrics != nil {
		r.metrics.RunsTotal.WithLabelValues(status).Inc()
	}
}
