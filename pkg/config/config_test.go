package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 512*1024, cfg.Counter.ChunkSize)
	assert.Equal(t, ModeChunk, cfg.Counter.Mode)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Postgres.Enabled)
	assert.False(t, cfg.SQLite.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordfreq.yaml")
	data := `
counter:
  chunkSize: 1024
  workers: 4
  mode: line
logging:
  level: debug
  format: json
sinks:
  timeout: 3s
redis:
  enabled: true
  addr: cache:6379
kafka:
  enabled: true
  brokers: ["k1:9092", "k2:9092"]
  topic: runs
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Counter.ChunkSize)
	assert.Equal(t, 4, cfg.Counter.Workers)
	assert.Equal(t, ModeLine, cfg.Counter.Mode)
	assert.Equal(t, 64, cfg.Counter.Shards, "unset keys keep their defaults")
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 3*time.Second, cfg.Sinks.Timeout)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WF_COUNTER_CHUNK_SIZE", "4096")
	t.Setenv("WF_COUNTER_MODE", "line")
	t.Setenv("WF_SQLITE_PATH", "/tmp/runs.db")
	t.Setenv("WF_KAFKA_BROKERS", "a:1,b:2")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 4096, cfg.Counter.ChunkSize)
	assert.Equal(t, ModeLine, cfg.Counter.Mode)
	assert.True(t, cfg.SQLite.Enabled)
	assert.Equal(t, "/tmp/runs.db", cfg.SQLite.Path)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Kafka.Brokers)
}

func TestLoadFromEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("counter:\n  chunkSize: 77\n"), 0o644))
	t.Setenv(EnvConfigPath, path)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 77, cfg.Counter.ChunkSize)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk", func(c *Config) { c.Counter.ChunkSize = 0 }},
		{"negative workers", func(c *Config) { c.Counter.Workers = -1 }},
		{"unknown mode", func(c *Config) { c.Counter.Mode = "words" }},
		{"kafka without topic", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Topic = "" }},
		{"sqlite without path", func(c *Config) { c.SQLite.Enabled = true; c.SQLite.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, defaultConfig().Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	p := defaultConfig().Postgres
	assert.Equal(t, "host=localhost port=5432 user=wordfreq password=localdev dbname=wordfreq sslmode=disable", p.DSN())
}
