package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	ctx := t.Context()
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(ctx, 50))
	require.NoError(t, c.AcquireMemory(ctx, 40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	assert.ErrorIs(t, c.AcquireMemory(ctx, 101), ErrMemoryLimitExceeded)

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())
	require.NoError(t, c.AcquireMemory(ctx, 60))
	assert.Equal(t, int64(100), c.MemoryUsage())
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_MemoryBlocks(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 10})
	require.NoError(t, c.AcquireMemory(t.Context(), 10))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireMemory(ctx, 5), context.DeadlineExceeded)

	done := make(chan error, 1)
	go func() { done <- c.AcquireMemory(t.Context(), 5) }()
	c.ReleaseMemory(10)
	require.NoError(t, <-done)
	assert.Equal(t, int64(5), c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(t.Context(), 1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
	assert.Zero(t, c.MemoryLimit())
}

func TestController_IO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1000})

	// The first burst is free.
	require.NoError(t, c.AcquireIO(t.Context(), 1000))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.Error(t, c.AcquireIO(ctx, 2500))
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	ctx := t.Context()

	assert.NoError(t, c.AcquireMemory(ctx, 1<<40))
	c.ReleaseMemory(1)
	assert.Zero(t, c.MemoryUsage())
	assert.NoError(t, c.AcquireIO(ctx, 1<<40))
}
