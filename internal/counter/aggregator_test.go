package counter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/counter/table"
)

func TestDispatchSmallBatchInline(t *testing.T) {
	tbl := table.New(4)
	agg := NewAggregator(tbl, 8)
	require.NoError(t, agg.Dispatch([]string{"a", "b", "a"}))
	require.NoError(t, agg.Dispatch(nil))

	assert.Equal(t, table.Frequencies{"a": 2, "b": 1}, tbl.Snapshot())
}

func TestDispatchLargeBatchMatchesSequential(t *testing.T) {
	batch := make([]string, 0, 50_000)
	want := table.Frequencies{}
	for i := 0; i < cap(batch); i++ {
		w := fmt.Sprintf("w%d", i%137)
		batch = append(batch, w)
		want[w]++
	}

	for _, workers := range []int{0, 1, 3, 8, 64} {
		tbl := table.New(16)
		require.NoError(t, NewAggregator(tbl, workers).Dispatch(batch))
		assert.Equal(t, want, tbl.Snapshot(), "workers=%d", workers)
	}
}
