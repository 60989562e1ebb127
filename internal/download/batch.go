package download

import (
	"sync"
	"sync/atomic"
)

// BatchState is the lifecycle state of a batch.
type BatchState int32

const (
	// BatchPending means no fetch of the batch has settled yet.
	BatchPending BatchState = iota

	// BatchSettling means at least one fetch settled and others are outstanding.
	BatchSettling

	// BatchDone means every fetch settled and the callback has fired.
	BatchDone
)

// String returns the state name.
func (s BatchState) String() string {
	switch s {
	case BatchPending:
		return "pending"
	case BatchSettling:
		return "settling"
	case BatchDone:
		return "done"
	default:
		return "unknown"
	}
}

// Batch tracks one group of concurrently issued fetches.
//
// A Batch is created by Manager.DownloadImages and is finished once all of
// its fetches have settled. It keeps the first error any fetch reported;
// later errors are dropped.
type Batch struct {
	// ID uniquely identifies the batch.
	ID string

	// Count is the number of fetches requested.
	Count int

	remaining atomic.Int32
	state     atomic.Int32

	errOnce  sync.Once
	firstErr error

	done chan struct{}
}

func newBatch(id string, count int) *Batch {
	b := &Batch{
		ID:    id,
		Count: count,
		done:  make(chan struct{}),
	}
	b.remaining.Store(int32(count))
	return b
}

// Remaining returns the number of fetches that have not settled.
func (b *Batch) Remaining() int {
	return int(b.remaining.Load())
}

// State returns the current batch state.
func (b *Batch) State() BatchState {
	return BatchState(b.state.Load())
}

// Done returns a channel closed after the batch callback has fired.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Err returns the first error observed in the batch. It is only final once
// Done is closed.
func (b *Batch) Err() error {
	select {
	case <-b.done:
		return b.firstErr
	default:
		return nil
	}
}

// recordError keeps err if it is the first one. It reports whether err was kept.
func (b *Batch) recordError(err error) bool {
	kept := false
	b.errOnce.Do(func() {
		b.firstErr = err
		kept = true
	})
	return kept
}

// settleOne marks one fetch as settled and returns how many remain.
func (b *Batch) settleOne() int {
	b.state.CompareAndSwap(int32(BatchPending), int32(BatchSettling))
	return int(b.remaining.Add(-1))
}

// finish moves the batch to BatchDone. Callers must have waited for every
// fetch, which makes firstErr safe to read after done is closed.
func (b *Batch) finish() {
	b.state.Store(int32(BatchDone))
	close(b.done)
}
