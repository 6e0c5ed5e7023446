package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor_CoversAllIndices(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}
	const n = 1000

	seen := make([]int32, n)
	For(n, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	}, cfg)

	for i, count := range seen {
		assert.Equal(t, int32(1), count, "index %d", i)
	}
}

func TestFor_SequentialFallback(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 64}

	// Below the chunk threshold, indices run in order on the caller's
	// goroutine.
	var order []int
	For(10, func(i int) {
		order = append(order, i)
	}, cfg)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestFor_Disabled(t *testing.T) {
	cfg := Config{Enabled: false}

	var count int
	For(200, func(i int) { count++ }, cfg)

	assert.Equal(t, 200, count)
}

func TestFor_Zero(t *testing.T) {
	called := false
	For(0, func(i int) { called = true }, DefaultConfig())
	assert.False(t, called)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 64, cfg.MinChunkSize)
	assert.Positive(t, cfg.NumWorkers)
}
