// Package table holds the shared word-frequency table. Words are routed by
// hash to one of several shards, each guarded by its own mutex, so
// concurrent workers counting different words rarely contend.
package table

import (
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultShards is used when New is given a non-positive shard count.
const DefaultShards = 64

type shard struct {
	mu     sync.Mutex
	counts map[string]int64
}

// Table maps case-sensitive words to occurrence counts. Counts only grow.
type Table struct {
	shards []*shard
	mask   uint64
}

// Frequencies is an immutable copy of a Table's contents.
type Frequencies map[string]int64

// Total returns the sum of every count.
func (f Frequencies) Total() int64 {
	var total int64
	for _, n := range f {
		total += n
	}
	return total
}

// New returns an empty table. The shard count is rounded up to a power of two.
func New(shards int) *Table {
	if shards <= 0 {
		shards = DefaultShards
	}
	n := 1
	for n < shards {
		n <<= 1
	}
	t := &Table{
		shards: make([]*shard, n),
		mask:   uint64(n - 1),
	}
	for i := range t.shards {
		t.shards[i] = &shard{counts: make(map[string]int64)}
	}
	return t
}

func (t *Table) shardFor(word string) *shard {
	return t.shards[xxhash.Sum64String(word)&t.mask]
}

// Increment adds one occurrence of word.
func (t *Table) Increment(word string) {
	t.Add(word, 1)
}

// Add adds n occurrences of word, inserting it if absent. Blank words and
// non-positive n are ignored.
func (t *Table) Add(word string, n int64) {
	if n <= 0 || strings.TrimSpace(word) == "" {
		return
	}
	s := t.shardFor(word)
	s.mu.Lock()
	if cur, ok := s.counts[word]; ok {
		s.counts[word] = cur + n
	} else {
		// Tokens are substrings of a whole decoded chunk.
		s.counts[strings.Clone(word)] = n
	}
	s.mu.Unlock()
}

// Count returns the current count for word.
func (t *Table) Count(word string) int64 {
	s := t.shardFor(word)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[word]
}

// Len returns the number of distinct words.
func (t *Table) Len() int {
	total := 0
	for _, s := range t.shards {
		s.mu.Lock()
		total += len(s.counts)
		s.mu.Unlock()
	}
	return total
}

// Snapshot copies the table. It is meant to be called once all writers have
// finished.
func (t *Table) Snapshot() Frequencies {
	out := make(Frequencies, t.Len())
	for _, s := range t.shards {
		s.mu.Lock()
		for w, n := range s.counts {
			out[w] = n
		}
		s.mu.Unlock()
	}
	return out
}
