package dispatch

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsSubmittedWork(t *testing.T) {
	p := NewPool(3)
	var n atomic.Int32
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Submit(func() { n.Add(1) }))
	}
	p.Close()
	assert.Equal(t, int32(3), n.Load())
}

func TestPool_SubmitDoesNotBlockWhenFull(t *testing.T) {
	p := NewPool(1)
	release := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, p.Submit(func() { close(started); <-release }))
	<-started
	require.NoError(t, p.Submit(func() {}))
	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolFull)

	close(release)
	p.Close()
}

func TestPool_SubmitAfterClose(t *testing.T) {
	p := NewPool(2)
	p.Close()
	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolClosed)
	p.Close()
}

func TestPool_CloseWaitsForWork(t *testing.T) {
	p := NewPool(2)
	var mu sync.Mutex
	done := 0
	for i := 0; i < 2; i++ {
		require.NoError(t, p.Submit(func() {
			mu.Lock()
			done++
			mu.Unlock()
		}))
	}
	p.Close()
	assert.Equal(t, 2, done)
}
