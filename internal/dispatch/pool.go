package dispatch

import (
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrPoolFull is returned by Submit when every buffer slot is taken.
var ErrPoolFull = errors.New("worker pool is full")

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("worker pool is closed")

// Pool runs submitted functions on a fixed set of goroutines.
type Pool struct {
	tasks  chan func()
	group  errgroup.Group
	mu     sync.Mutex
	closed bool
}

// NewPool starts size workers. The task buffer holds size entries.
func NewPool(size int) *Pool {
	if size <= 0 {
		panic("pool size must be positive")
	}
	p := &Pool{tasks: make(chan func(), size)}
	for i := 0; i < size; i++ {
		p.group.Go(func() error {
			for fn := range p.tasks {
				fn()
			}
			return nil
		})
	}
	return p
}

// Submit hands fn to the pool without blocking.
func (p *Pool) Submit(fn func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- fn:
		return nil
	default:
		return ErrPoolFull
	}
}

// Close stops accepting work and waits for submitted functions to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()
	p.group.Wait() //nolint:errcheck
}
