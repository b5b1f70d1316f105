package task

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAllocator_SameMillisecond(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	ids := NewIDAllocatorWithClock(0, func() time.Time { return at })

	first := ids.Next()
	second := ids.Next()

	assert.Equal(t, int64(-1700000000000), first)
	assert.Equal(t, first-1, second)
}

func TestIDAllocator_RespectsFloor(t *testing.T) {
	at := time.UnixMilli(1000)
	ids := NewIDAllocatorWithClock(-5000, func() time.Time { return at })

	assert.Equal(t, int64(-5001), ids.Next())
}

func TestIDAllocator_PositiveFloorIsIgnored(t *testing.T) {
	at := time.UnixMilli(1000)
	ids := NewIDAllocatorWithClock(42, func() time.Time { return at })

	assert.Equal(t, int64(-1000), ids.Next())
}

func TestIDAllocator_ConcurrentUnique(t *testing.T) {
	ids := NewIDAllocator(0)

	const workers, perWorker = 8, 500
	results := make(chan int64, workers*perWorker)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				results <- ids.Next()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]struct{}, workers*perWorker)
	for id := range results {
		require.Negative(t, id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
}
