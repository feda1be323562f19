// Package config loads and validates wordfreq configuration from YAML files
// with environment-variable overrides. It provides typed structs for the
// counter, logging, metrics and every optional report sink.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
// The command-line tools accept no flags, so this is the only way to point
// them at a YAML file.
const EnvConfigPath = "WF_CONFIG"

// Counter processing modes.
const (
	ModeChunk = "chunk"
	ModeLine  = "line"
)

// Config is the top-level application configuration.
type Config struct {
	Counter  CounterConfig  `yaml:"counter"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Sinks    SinksConfig    `yaml:"sinks"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

// CounterConfig controls how input files are read and aggregated.
type CounterConfig struct {
	ChunkSize int    `yaml:"chunkSize"`
	Workers   int    `yaml:"workers"`
	Shards    int    `yaml:"shards"`
	Mode      string `yaml:"mode"`
}

// LoggingConfig controls structured logging level, output format and an
// optional log file that receives a copy of every record.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// MetricsConfig controls the Prometheus scrape server and the textfile dump
// written at the end of a run.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Port     int    `yaml:"port"`
	Textfile string `yaml:"textfile"`
}

// SinksConfig holds settings shared by every report sink.
type SinksConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	RetryAttempts int           `yaml:"retryAttempts"`
	RetryDelay    time.Duration `yaml:"retryDelay"`
	MaxEntries    int           `yaml:"maxEntries"`
	TopN          int           `yaml:"topN"`
}

// RedisConfig holds Redis connection and sorted-set publishing parameters.
type RedisConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	PoolSize  int           `yaml:"poolSize"`
	KeyPrefix string        `yaml:"keyPrefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// SQLiteConfig points at a local SQLite run archive.
type SQLiteConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// KafkaConfig holds the brokers and topic for run-completed events.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by WF_CONFIG, or defaults when unset.
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv(EnvConfigPath))
}

// Validate rejects settings the counter cannot run with.
func (c *Config) Validate() error {
	if c.Counter.ChunkSize <= 0 {
		return fmt.Errorf("counter.chunkSize must be positive, got %d", c.Counter.ChunkSize)
	}
	if c.Counter.Workers < 0 {
		return fmt.Errorf("counter.workers must not be negative, got %d", c.Counter.Workers)
	}
	if c.Counter.Shards < 0 {
		return fmt.Errorf("counter.shards must not be negative, got %d", c.Counter.Shards)
	}
	switch c.Counter.Mode {
	case ModeChunk, ModeLine:
	default:
		return fmt.Errorf("counter.mode must be %q or %q, got %q", ModeChunk, ModeLine, c.Counter.Mode)
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return fmt.Errorf("kafka sink enabled without brokers or topic")
	}
	if c.SQLite.Enabled && c.SQLite.Path == "" {
		return fmt.Errorf("sqlite sink enabled without a path")
	}
	return nil
}

// defaultConfig returns a Config that counts with 512 KiB chunks and has
// every external sink switched off.
func defaultConfig() *Config {
	return &Config{
		Counter: CounterConfig{
			ChunkSize: 512 * 1024,
			Workers:   0,
			Shards:    64,
			Mode:      ModeChunk,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
		Sinks: SinksConfig{
			Timeout:       10 * time.Second,
			RetryAttempts: 3,
			RetryDelay:    200 * time.Millisecond,
			TopN:          10,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			PoolSize:  10,
			KeyPrefix: "wordfreq:",
			TTL:       24 * time.Hour,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "wordfreq",
			User:            "wordfreq",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		SQLite: SQLiteConfig{
			Path: "wordfreq.db",
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "wordfreq.runs",
		},
	}
}

// applyEnvOverrides reads WF_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WF_COUNTER_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Counter.ChunkSize = n
		}
	}
	if v := os.Getenv("WF_COUNTER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Counter.Workers = n
		}
	}
	if v := os.Getenv("WF_COUNTER_MODE"); v != "" {
		cfg.Counter.Mode = v
	}
	if v := os.Getenv("WF_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WF_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("WF_LOGGING_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("WF_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.Textfile = v
	}
	if v := os.Getenv("WF_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("WF_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("WF_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
		cfg.Postgres.Enabled = true
	}
	if v := os.Getenv("WF_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("WF_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("WF_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("WF_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("WF_SQLITE_PATH"); v != "" {
		cfg.SQLite.Path = v
		cfg.SQLite.Enabled = true
	}
	if v := os.Getenv("WF_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
		cfg.Kafka.Enabled = true
	}
	if v := os.Getenv("WF_KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
}
