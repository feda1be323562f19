package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/report"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/redis"
)

// RedisSink stores each report as a sorted set scored by count under
// <prefix>run:<run id>, and points <prefix>latest at the newest run.
type RedisSink struct {
	client     *redis.Client
	prefix     string
	ttl        time.Duration
	maxEntries int
}

func NewRedisSink(client *redis.Client, prefix string, ttl time.Duration, maxEntries int) *RedisSink {
	return &RedisSink{client: client, prefix: prefix, ttl: ttl, maxEntries: maxEntries}
}

func (s *RedisSink) Name() string { return "redis" }

// RunKey returns the sorted-set key for a run.
func (s *RedisSink) RunKey(runID string) string {
	return s.prefix + "run:" + runID
}

// LatestKey returns the key holding the most recent run ID.
func (s *RedisSink) LatestKey() string {
	return s.prefix + "latest"
}

func (s *RedisSink) Publish(ctx context.Context, r *Report) error {
	entries := report.Top(r.Entries, s.maxEntries)
	members := make([]redis.Member, len(entries))
	for i, e := range entries {
		members[i] = redis.Member{Name: e.Word, Score: float64(e.Count)}
	}
	key := s.RunKey(r.RunID)
	if err := s.client.ReplaceSortedSet(ctx, key, members, s.ttl); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.LatestKey(), r.RunID, s.ttl); err != nil {
		return fmt.Errorf("updating %s: %w", s.LatestKey(), err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
