package storage

import (
	"context"
	"sync"
)

// Serializer enforces single-writer access to the persisted stores. Mutations
// are chained in strict FIFO order: each call waits for every earlier call to
// finish before running its closure. A failing mutation never blocks the ones
// queued behind it.
//
// The zero value is ready to use.
type Serializer struct {
	mu   sync.Mutex
	tail chan struct{}
}

// RunExclusive runs fn once all previously enqueued mutations have completed.
// The context is only consulted while waiting in the queue; once fn starts it
// runs to completion and cannot be aborted.
func (s *Serializer) RunExclusive(ctx context.Context, fn func() error) error {
	done := make(chan struct{})

	s.mu.Lock()
	prev := s.tail
	s.tail = done
	s.mu.Unlock()

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			// Abandon our slot but keep the chain intact: successors
			// may only start after the predecessor finishes.
			go func() {
				<-prev
				close(done)
			}()
			return ctx.Err()
		}
	}

	defer close(done)
	return fn()
}
