package workerspool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelFor(t *testing.T) {
	for _, parallelism := range []int{0, 1, 3, -1} {
		pool := New()
		pool.SetMaxParallelism(parallelism)
		const numSamples = 100
		var seen [numSamples]atomic.Int32
		pool.ParallelFor(numSamples, func(sample int) {
			seen[sample].Add(1)
		})
		for sample := range numSamples {
			require.Equalf(t, int32(1), seen[sample].Load(), "parallelism=%d, sample %d", parallelism, sample)
		}
	}
	New().ParallelFor(0, func(int) { t.Fatal("no samples should be processed") })
}

func TestParallelForLimit(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(2)
	assert.Equal(t, 2, pool.MaxParallelism())
	var running, maxRunning atomic.Int32
	pool.ParallelFor(20, func(int) {
		current := running.Add(1)
		for {
			prev := maxRunning.Load()
			if current <= prev || maxRunning.CompareAndSwap(prev, current) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		running.Add(-1)
	})
	// 2 pool goroutines plus the caller's.
	assert.LessOrEqual(t, maxRunning.Load(), int32(3))
}

func TestParallelForNested(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(1)
	var count atomic.Int32
	pool.ParallelFor(4, func(int) {
		pool.ParallelFor(4, func(int) { count.Add(1) })
	})
	assert.Equal(t, int32(16), count.Load())
}
