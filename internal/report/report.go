// Package report orders word counts and writes them as "word,count" lines.
package report

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/counter/table"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
)

// Entry is one line of the report.
type Entry struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}

// Sort returns the words of freq ordered by count descending, then by word
// ascending using byte-wise comparison.
func Sort(freq table.Frequencies) []Entry {
	entries := make([]Entry, 0, len(freq))
	for w, n := range freq {
		entries = append(entries, Entry{Word: w, Count: n})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Word, b.Word)
	})
	return entries
}

// Top returns at most n leading entries. Non-positive n returns all of them.
func Top(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}

// LineSeparator is the platform line terminator.
func LineSeparator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// Write emits one "word,count" line per entry, each ended by sep.
func Write(w io.Writer, entries []Entry, sep string) error {
	bw := bufio.NewWriterSize(w, 64*1024)
	var num []byte
	for _, e := range entries {
		bw.WriteString(e.Word)
		bw.WriteByte(',')
		num = strconv.AppendInt(num[:0], e.Count, 10)
		bw.Write(num)
		if _, err := bw.WriteString(sep); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile creates or replaces the file at path with the report. Lines are
// written to path+".tmp", synced and renamed over path, so a failed write
// never leaves a partial report behind. Zero entries produce an empty file.
func WriteFile(path string, entries []Entry) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %w", apperrors.ErrIO, tmpPath, err)
	}
	if err := Write(f, entries, LineSeparator()); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: writing %s: %w", apperrors.ErrIO, tmpPath, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: syncing %s: %w", apperrors.ErrIO, tmpPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: closing %s: %w", apperrors.ErrIO, tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: renaming report to %s: %w", apperrors.ErrIO, path, err)
	}
	return nil
}
