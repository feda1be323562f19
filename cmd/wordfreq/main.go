package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/counter"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/runner"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/sink"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/metrics"
)

const usage = "Usage: wordfreq <inputFilePath> <outputFilePath>"

func main() {
	if _, err := maxprocs.Set(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set maxprocs: %v\n", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	cmd := newRootCmd(stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrInvalidArgs):
		fmt.Fprintln(stdout, usage)
	case errors.Is(err, apperrors.ErrFileNotFound):
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			fmt.Fprintf(stderr, "Error: Input file '%s' not found.\n", pathErr.Path)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return apperrors.ExitCode(err)
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "wordfreq <inputFilePath> <outputFilePath>",
		Short: "Count word occurrences in a text file",
		Long: "wordfreq counts every word in a UTF-8 text file and writes one " +
			"\"word,count\" line per distinct word, most frequent first.\n\n" +
			"Settings are read from the YAML file named by " + config.EnvConfigPath + ".",
		// Both arguments are paths; anything starting with '-' is a file name.
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return apperrors.New(apperrors.ErrInvalidArgs, apperrors.ExitOK, usage)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], args[1], stdout)
		},
	}
}

func run(ctx context.Context, input, output string, stdout io.Writer) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	closeLog, err := logger.Setup(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
	if err != nil {
		return err
	}
	defer closeLog()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	if cfg.Metrics.Enabled {
		srv, err := metrics.StartServer(cfg.Metrics.Port, reg)
		if err != nil {
			slog.Warn("metrics endpoint unavailable", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					slog.Warn("metrics server shutdown", "error", err)
				}
			}()
		}
	}
	if cfg.Metrics.Textfile != "" {
		defer func() {
			if err := metrics.WriteTextfile(cfg.Metrics.Textfile, reg); err != nil {
				slog.Warn("metrics textfile not written", "error", err)
			}
		}()
	}

	pub, err := sink.FromConfig(ctx, cfg, m)
	if err != nil {
		slog.Warn("some report sinks are unavailable", "error", err)
	}
	defer func() {
		if err := pub.Close(); err != nil {
			slog.Warn("closing report sinks", "error", err)
		}
	}()

	engine := counter.NewEngine(counter.OptionsFromConfig(cfg.Counter, m))
	summary, err := runner.New(engine, pub, m).Run(ctx, input, output)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Processing complete. Output written to: %s\n", output)
	if summary.SinkErr != nil {
		fmt.Fprintf(stdout, "Warning: %v\n", summary.SinkErr)
	}
	return nil
}
