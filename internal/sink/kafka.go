package sink

import (
	"context"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/report"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/kafka"
)

// RunEvent is the message published when a run completes.
type RunEvent struct {
	RunID         string         `json:"run_id"`
	Input         string         `json:"input"`
	Output        string         `json:"output"`
	TotalTokens   int64          `json:"total_tokens"`
	DistinctWords int            `json:"distinct_words"`
	Top           []report.Entry `json:"top"`
	StartedAt     time.Time      `json:"started_at"`
	DurationMs    int64          `json:"duration_ms"`
}

// KafkaSink announces completed runs with their most frequent words, keyed
// by run ID.
type KafkaSink struct {
	producer *kafka.Producer
	topN     int
}

func NewKafkaSink(p *kafka.Producer, topN int) *KafkaSink {
	return &KafkaSink{producer: p, topN: topN}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Publish(ctx context.Context, r *Report) error {
	event := RunEvent{
		RunID:         r.RunID,
		Input:         r.Input,
		Output:        r.Output,
		TotalTokens:   r.TotalTokens,
		DistinctWords: len(r.Entries),
		Top:           report.Top(r.Entries, s.topN),
		StartedAt:     r.StartedAt,
		DurationMs:    r.Duration.Milliseconds(),
	}
	return s.producer.Publish(ctx, kafka.Event{Key: r.RunID, Value: event})
}

func (s *KafkaSink) Close() error {
	return s.producer.Close()
}
