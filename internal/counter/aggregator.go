package counter

import (
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/counter/table"
	"golang.org/x/sync/errgroup"
)

// minPartSize is the smallest slice of a batch handed to one worker. Smaller
// batches are counted on the calling goroutine.
const minPartSize = 2048

// Aggregator fans one batch of tokens out to a bounded number of workers that
// update a shared table. Dispatch returns only after every worker finished,
// so batches never overlap.
type Aggregator struct {
	table   *table.Table
	workers int
}

func NewAggregator(t *table.Table, workers int) *Aggregator {
	if workers <= 0 {
		workers = 1
	}
	return &Aggregator{table: t, workers: workers}
}

// Dispatch counts every token in batch. Each worker tallies its part locally
// and then merges into the table, one Add per distinct word.
func (a *Aggregator) Dispatch(batch []string) error {
	if len(batch) == 0 {
		return nil
	}
	parts := min(a.workers, len(batch)/minPartSize)
	if parts <= 1 {
		a.count(batch)
		return nil
	}

	var g errgroup.Group
	g.SetLimit(a.workers)
	size := (len(batch) + parts - 1) / parts
	for start := 0; start < len(batch); start += size {
		part := batch[start:min(start+size, len(batch))]
		g.Go(func() error {
			a.count(part)
			return nil
		})
	}
	return g.Wait()
}

func (a *Aggregator) count(part []string) {
	local := make(map[string]int64, len(part)/4+1)
	for _, w := range part {
		local[w]++
	}
	for w, n := range local {
		a.table.Add(w, n)
	}
}
