package sink

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/sqlite"
)

// RetryConfig maps the shared sink settings onto a retry policy.
func RetryConfig(cfg config.SinksConfig) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    cfg.RetryAttempts,
		InitialDelay:   cfg.RetryDelay,
		AttemptTimeout: cfg.Timeout,
	}
}

// FromConfig connects every enabled sink. Sinks that fail to connect are
// left out and their errors returned alongside a Publisher holding the rest.
func FromConfig(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*Publisher, error) {
	var (
		sinks []Sink
		errs  *multierror.Error
	)

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("redis sink: %w", err))
		} else {
			sinks = append(sinks, NewRedisSink(client, cfg.Redis.KeyPrefix, cfg.Redis.TTL, cfg.Sinks.MaxEntries))
		}
	}

	if cfg.Postgres.Enabled {
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("postgres sink: %w", err))
		} else {
			s := NewSQLSink("postgres", client.DB, DialectPostgres, cfg.Sinks.MaxEntries)
			if err := s.EnsureSchema(ctx); err != nil {
				client.Close()
				errs = multierror.Append(errs, fmt.Errorf("postgres sink: %w", err))
			} else {
				sinks = append(sinks, s)
			}
		}
	}

	if cfg.SQLite.Enabled {
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("sqlite sink: %w", err))
		} else {
			s := NewSQLSink("sqlite", db, DialectSQLite, cfg.Sinks.MaxEntries)
			if err := s.EnsureSchema(ctx); err != nil {
				db.Close()
				errs = multierror.Append(errs, fmt.Errorf("sqlite sink: %w", err))
			} else {
				sinks = append(sinks, s)
			}
		}
	}

	if cfg.Kafka.Enabled {
		sinks = append(sinks, NewKafkaSink(kafka.NewProducer(cfg.Kafka), cfg.Sinks.TopN))
	}

	return NewPublisher(sinks, RetryConfig(cfg.Sinks), m), errs.ErrorOrNil()
}
