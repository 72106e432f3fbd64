// Package worker implements the shared progress/cancellation harness
// spec.md §5 describes: a 2-word atomic control block (progress counter,
// cancel flag) per search, and a one-way goroutine-to-channel result
// stream a front-end can poll without ever blocking itself. This plays
// the role the teacher's embeddingWorker/jobs/results channel trio plays
// for pipeline/1_DATA_MINER's PDF processor, adapted from a fan-out
// worker pool down to the single-worker-per-search shape spec.md names
// ("each worker task exclusively owns its internal PRNG instances").
package worker

import "sync/atomic"

// ControlBlock is the 2-element 64-bit shared state spec.md §5 names:
// word 0 is a monotonic progress counter incremented from inside the
// worker, word 1 is a cancel flag set by the front-end and observed by
// the worker at node boundaries. Nothing else is shared between
// a worker goroutine and its caller.
type ControlBlock struct {
	progress atomic.Uint64
	cancel   atomic.Uint64
}

// NewControlBlock returns a fresh control block with zero progress and
// no cancellation requested.
func NewControlBlock() *ControlBlock {
	return &ControlBlock{}
}

// Tick increments the progress counter by one. The forward generator
// calls this once per visited node (spec.md §4.8's "not every
// specimen"). The seed-inversion stages take no ControlBlock, so they
// report no progress and cannot be cancelled through one.
func (c *ControlBlock) Tick() {
	c.progress.Add(1)
}

// Progress returns the current progress count.
func (c *ControlBlock) Progress() uint64 {
	return c.progress.Load()
}

// RequestCancel sets the cancel flag. Safe to call from the front-end
// goroutine at any time; per spec.md §5 this is cooperative, not
// preemptive.
func (c *ControlBlock) RequestCancel() {
	c.cancel.Store(1)
}

// Cancelled reports whether cancellation has been requested. The
// worker checks this at node boundaries and stops expanding further
// work once it observes true, per spec.md §5's bounded-expansions
// guarantee (invariant 7).
func (c *ControlBlock) Cancelled() bool {
	return c.cancel.Load() != 0
}

// Run starts fn in its own goroutine, handing it a fresh ControlBlock
// and a result channel it may push to freely. The channel is closed
// automatically once fn returns, which is how a consumer detects
// completion (whether by exhaustion or by observing cancellation).
// The caller never blocks: it reads the returned channel at its own
// pace and may call RequestCancel on the returned ControlBlock at any
// time, matching spec.md §5's "front-end never blocks" rule.
func Run[T any](fn func(control *ControlBlock, emit func(T))) (<-chan T, *ControlBlock) {
	control := NewControlBlock()
	out := make(chan T, 64)
	go func() {
		defer close(out)
		fn(control, func(v T) { out <- v })
	}()
	return out, control
}
