// Package generate writes synthetic input files for exercising the counter
// on large inputs. Words come from a fixed vocabulary mixing case variants of
// the same word, separated by random punctuation, spaces and newlines.
package generate

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
)

// Vocabulary is the word list the generator draws from. "input" appears
// twice and so is drawn twice as often.
var Vocabulary = []string{
	"apple", "banana", "cat", "broadridge", "elephant", "frog", "GRAPe", "house", "ice", "jungle",
	"kite", "lion", "mountain", "night", "orange", "pencil", "queen", "river", "snake", "tree",
	"umbrella", "violet", "whale", "xylophone", "yacht", "zebra", "file", "input", "application",
	"output", "input", "Boris", "grape", "Engineer", "BANANA", "BROADRIDGE",
}

// Delimiters separate generated words.
var Delimiters = []byte{' ', ',', '.', ';', '!', '?', '\n'}

const bufferSize = 4096

// Generate writes words followed by a delimiter to w until at least size
// bytes have been written, and returns the number of bytes written.
func Generate(w io.Writer, size int64, rng *rand.Rand) (int64, error) {
	bw := bufio.NewWriterSize(w, bufferSize)
	var written int64
	for written < size {
		word := Vocabulary[rng.IntN(len(Vocabulary))]
		n, err := bw.WriteString(word)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("writing word: %w", err)
		}
		if err := bw.WriteByte(Delimiters[rng.IntN(len(Delimiters))]); err != nil {
			return written, fmt.Errorf("writing delimiter: %w", err)
		}
		written++
	}
	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("flushing generated text: %w", err)
	}
	return written, nil
}

// GenerateFile creates (or truncates) path and fills it with roughly sizeMB
// mebibytes of generated text. The same seed always yields the same file.
func GenerateFile(path string, sizeMB int64, seed uint64) (int64, error) {
	if sizeMB <= 0 {
		return 0, fmt.Errorf("size must be positive, got %d MB", sizeMB)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	written, err := Generate(f, sizeMB*1024*1024, rng)
	if err != nil {
		f.Close()
		return written, err
	}
	if err := f.Close(); err != nil {
		return written, fmt.Errorf("closing %s: %w", path, err)
	}
	slog.Default().With("component", "generate").Info("test file created",
		"path", path,
		"size_mb", sizeMB,
		"bytes", written,
	)
	return written, nil
}
