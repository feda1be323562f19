// Package counter streams a text file through the tokenizer in fixed-size
// chunks and aggregates the tokens of each chunk concurrently into a shared
// frequency table.
package counter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/counter/table"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/counter/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/metrics"
)

// DefaultChunkSize is the number of bytes read per chunk.
const DefaultChunkSize = 512 * 1024

// Options configures an Engine. Zero values pick defaults.
type Options struct {
	ChunkSize int
	// Workers bounds the goroutines counting one chunk. Zero means GOMAXPROCS.
	Workers int
	Shards  int
	// Mode is config.ModeChunk or config.ModeLine.
	Mode    string
	Metrics *metrics.Metrics
}

// OptionsFromConfig maps the counter section of the config file.
func OptionsFromConfig(cfg config.CounterConfig, m *metrics.Metrics) Options {
	return Options{
		ChunkSize: cfg.ChunkSize,
		Workers:   cfg.Workers,
		Shards:    cfg.Shards,
		Mode:      cfg.Mode,
		Metrics:   m,
	}
}

// Result is the outcome of counting one input.
type Result struct {
	Frequencies table.Frequencies
	Chunks      int
	Bytes       int64
	Tokens      int64
}

type Engine struct {
	opts   Options
	logger *slog.Logger
}

func NewEngine(opts Options) *Engine {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Shards <= 0 {
		opts.Shards = table.DefaultShards
	}
	if opts.Mode == "" {
		opts.Mode = config.ModeChunk
	}
	return &Engine{
		opts:   opts,
		logger: slog.Default().With("component", "counter"),
	}
}

// ProcessFile counts the words in the file at path.
func (e *Engine) ProcessFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrFileNotFound, err)
		}
		return nil, fmt.Errorf("%w: opening %s: %w", apperrors.ErrIO, path, err)
	}
	defer f.Close()

	start := time.Now()
	res, err := e.ProcessReader(ctx, f)
	if err != nil {
		return nil, err
	}
	e.logger.Info("file counted",
		"path", path,
		"mode", e.opts.Mode,
		"bytes", res.Bytes,
		"tokens", res.Tokens,
		"distinct_words", len(res.Frequencies),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// ProcessReader counts the words read from r. Cancellation is observed
// before each read; a failed or cancelled run returns no partial result.
func (e *Engine) ProcessReader(ctx context.Context, r io.Reader) (*Result, error) {
	tbl := table.New(e.opts.Shards)
	agg := NewAggregator(tbl, e.opts.Workers)
	res := &Result{}

	var err error
	switch e.opts.Mode {
	case config.ModeLine:
		err = e.countLines(ctx, r, agg, res)
	default:
		err = e.countChunks(ctx, r, agg, res)
	}
	if err != nil {
		return nil, err
	}

	res.Frequencies = tbl.Snapshot()
	if m := e.opts.Metrics; m != nil {
		m.DistinctWords.Set(float64(len(res.Frequencies)))
	}
	return res, nil
}

func (e *Engine) countChunks(ctx context.Context, r io.Reader, agg *Aggregator, res *Result) error {
	dec := tokenizer.NewDecoder()
	raw := make([]byte, e.opts.ChunkSize)
	// text holds decoded bytes not yet followed by a delimiter. Only the
	// newly decoded tail is scanned, so a word spanning many chunks costs
	// time linear in its length.
	var text []byte
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("counting cancelled after %d chunks: %w", res.Chunks, err)
		}
		n, readErr := io.ReadFull(r, raw)
		if n > 0 {
			e.recordRead(res, n)
			start := len(text)
			text = dec.Append(text, raw[:n], false)
			var tokens []string
			if cut := tokenizer.LastDelimiterEnd(text, start); cut >= 0 {
				tokens = tokenizer.Fields(string(text[:cut]))
				text = text[:copy(text, text[cut:])]
			}
			if err := e.dispatch(agg, tokens, res); err != nil {
				return err
			}
			e.logger.Debug("chunk processed",
				"chunk", res.Chunks,
				"bytes", n,
				"tokens", len(tokens),
				"leftover_len", len(text),
				"pending_bytes", dec.Pending(),
			)
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("%w: reading chunk %d: %w", apperrors.ErrIO, res.Chunks+1, readErr)
		}
	}
	text = dec.Append(text, nil, true)
	return e.dispatch(agg, tokenizer.Fields(string(text)), res)
}

// countLines reads r one line at a time with no line-length limit. Tokens
// are buffered until about one chunk of input has been read, then counted.
func (e *Engine) countLines(ctx context.Context, r io.Reader, agg *Aggregator, res *Result) error {
	br := bufio.NewReaderSize(r, 64*1024)
	dec := tokenizer.NewDecoder()
	var (
		batch   []string
		text    []byte
		pending int
	)
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("counting cancelled after %d lines: %w", res.Chunks, err)
		}
		line, readErr := br.ReadBytes('\n')
		if len(line) > 0 {
			e.recordRead(res, len(line))
			pending += len(line)
			text = dec.Append(text[:0], line, true)
			batch = append(batch, tokenizer.Fields(string(text))...)
			if pending >= e.opts.ChunkSize {
				if err := e.dispatch(agg, batch, res); err != nil {
					return err
				}
				batch, pending = batch[:0], 0
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("%w: reading line %d: %w", apperrors.ErrIO, res.Chunks+1, readErr)
		}
	}
	return e.dispatch(agg, batch, res)
}

func (e *Engine) recordRead(res *Result, n int) {
	res.Chunks++
	res.Bytes += int64(n)
	if m := e.opts.Metrics; m != nil {
		m.ChunksReadTotal.Inc()
		m.BytesReadTotal.Add(float64(n))
	}
}

func (e *Engine) dispatch(agg *Aggregator, tokens []string, res *Result) error {
	if len(tokens) == 0 {
		return nil
	}
	if err := agg.Dispatch(tokens); err != nil {
		return fmt.Errorf("aggregating chunk %d: %w", res.Chunks, err)
	}
	res.Tokens += int64(len(tokens))
	if m := e.opts.Metrics; m != nil {
		m.TokensCountedTotal.Add(float64(len(tokens)))
	}
	return nil
}
