// Package dispatch schedules insert tasks onto a bounded worker pool.
//
// Tasks wait in a FIFO queue and are admitted in order while fewer than
// MaxConcurrentTasks are in flight. Every completion admits the next task
// and wakes Drain once nothing is queued or running.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vvka-141/sheetload/pkg/sheetload"
)

// ErrDispatcherClosed is returned by Enqueue after Close.
var ErrDispatcherClosed = errors.New("dispatcher is closed")

// Runner executes one task.
type Runner func(ctx context.Context, task sheetload.WorkTask) sheetload.Outcome

// Dispatcher owns the task queue and the worker pool.
type Dispatcher struct {
	ctx    context.Context
	limits Limits
	run    Runner
	policy sheetload.FailurePolicy
	logger sheetload.Logger
	pool   *Pool

	mu       sync.Mutex
	idle     *sync.Cond
	queue    []sheetload.WorkTask
	active   int
	stats    sheetload.RunState
	outcomes []sheetload.Outcome
	closed   bool
	aborted  bool

	closeOnce sync.Once
}

// New starts a Dispatcher with limits.MaxWorkers pool goroutines.
// ctx is handed to every task that starts; cancelling it does not interrupt running tasks.
func New(ctx context.Context, limits Limits, run Runner, policy sheetload.FailurePolicy, logger sheetload.Logger) *Dispatcher {
	if run == nil {
		panic("runner cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if limits.MaxConcurrentTasks <= 0 || limits.MaxConcurrentTasks > limits.MaxWorkers {
		panic(fmt.Sprintf("invalid limits %+v", limits))
	}
	d := &Dispatcher{
		ctx:    ctx,
		limits: limits,
		run:    run,
		policy: policy,
		logger: logger,
		pool:   NewPool(limits.MaxWorkers),
	}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Enqueue appends task to the queue and admits what the limits allow.
// After an abort, tasks are counted as discarded instead of queued.
func (d *Dispatcher) Enqueue(task sheetload.WorkTask) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	d.stats.Submitted++
	if d.aborted {
		d.stats.Discarded++
		return nil
	}
	d.queue = append(d.queue, task)
	d.admitLocked()
	return nil
}

// admitLocked starts queued tasks in FIFO order while below the concurrency limit.
func (d *Dispatcher) admitLocked() {
	for d.active < d.limits.MaxConcurrentTasks && len(d.queue) > 0 {
		task := d.queue[0]
		d.queue[0] = sheetload.WorkTask{}
		d.queue = d.queue[1:]

		if err := d.pool.Submit(func() { d.complete(d.execute(task)) }); err != nil {
			d.recordLocked(sheetload.Outcome{Seq: task.Batch.Seq, WorkerID: task.WorkerID, Err: err})
			continue
		}
		d.active++
		if d.active > d.stats.PeakActive {
			d.stats.PeakActive = d.active
		}
	}
}

func (d *Dispatcher) execute(task sheetload.WorkTask) (outcome sheetload.Outcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			outcome = sheetload.Outcome{
				Seq:      task.Batch.Seq,
				WorkerID: task.WorkerID,
				Duration: time.Since(start),
				Err:      fmt.Errorf("worker panic: %v", r),
			}
		}
	}()
	return d.run(d.ctx, task)
}

func (d *Dispatcher) complete(outcome sheetload.Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.active--
	d.recordLocked(outcome)
	d.admitLocked()
	if d.active == 0 && len(d.queue) == 0 {
		d.idle.Broadcast()
	}
}

func (d *Dispatcher) recordLocked(outcome sheetload.Outcome) {
	d.outcomes = append(d.outcomes, outcome)
	if !outcome.Failed() {
		d.stats.Succeeded++
		d.stats.RowsInserted += outcome.Inserted
		return
	}

	d.stats.Failed++
	d.logger.Error("Batch %d failed: %v", outcome.Seq, outcome.Err)
	if d.policy == sheetload.FailureAbort && !d.aborted {
		d.aborted = true
		if n := len(d.queue); n > 0 {
			d.stats.Discarded += n
			d.queue = nil
			d.logger.Warn("Aborting import, %d queued batch(es) discarded", n)
		}
	}
}

// Drain blocks until no task is queued or running.
func (d *Dispatcher) Drain() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.active > 0 || len(d.queue) > 0 {
		d.idle.Wait()
	}
}

// Close rejects further tasks, drains, and stops the pool.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()

		d.Drain()
		d.pool.Close()
	})
}

// Stats returns a snapshot of the counters.
func (d *Dispatcher) Stats() sheetload.RunState {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.stats
	s.Active = d.active
	s.Queued = len(d.queue)
	return s
}

// Outcomes returns the outcomes recorded so far, in completion order.
func (d *Dispatcher) Outcomes() []sheetload.Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]sheetload.Outcome(nil), d.outcomes...)
}

// Limits returns the limits the dispatcher runs with.
func (d *Dispatcher) Limits() Limits {
	return d.limits
}
