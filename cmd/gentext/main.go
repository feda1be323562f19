package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/generate"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/logger"
)

const usage = "Usage: gentext <outputFilePath> <sizeMB> [seed]"

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	cmd := &cobra.Command{
		Use:                "gentext <outputFilePath> <sizeMB> [seed]",
		Short:              "Write a random text file for exercising wordfreq",
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 || len(args) > 3 {
				return apperrors.Newf(apperrors.ErrInvalidArgs, apperrors.ExitOK, "expected 2 or 3 arguments, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, stdout)
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrInvalidArgs):
		fmt.Fprintln(stdout, usage)
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return apperrors.ExitCode(err)
}

func run(args []string, stdout io.Writer) error {
	sizeMB, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || sizeMB <= 0 {
		return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitFailure, "size must be a positive number of megabytes, got %q", args[1])
	}
	seed := uint64(time.Now().UnixNano())
	if len(args) == 3 {
		if seed, err = strconv.ParseUint(args[2], 10, 64); err != nil {
			return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitFailure, "seed must be an unsigned integer, got %q", args[2])
		}
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	closeLog, err := logger.Setup(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
	if err != nil {
		return err
	}
	defer closeLog()

	if _, err := generate.GenerateFile(args[0], sizeMB, seed); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrIO, err)
	}
	fmt.Fprintf(stdout, "File '%s' has been created with approximate size %d MB.\n", args[0], sizeMB)
	return nil
}
