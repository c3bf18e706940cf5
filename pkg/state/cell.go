package state

import (
	"context"
	"sync"
)

// Observable is the read side of a Cell.
type Observable[T any] interface {
	Value() T
	Subscribe(ctx context.Context) <-chan T
}

// Cell holds the latest value of T and notifies watchers when it changes.
// Values are shared with readers, so callers must not mutate what they Set
// or what they read back.
type Cell[T any] struct {
	mu      sync.RWMutex
	value   T
	changed chan struct{}
}

func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value:   initial,
		changed: make(chan struct{}),
	}
}

func (c *Cell[T]) Value() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set replaces the current value and wakes every watcher. It never blocks on
// readers.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	close(c.changed)
	c.changed = make(chan struct{})
	c.mu.Unlock()
}

// Watch returns the current value and a channel that is closed on the next Set.
func (c *Cell[T]) Watch() (T, <-chan struct{}) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.changed
}

// Subscribe emits the current value, then the latest value after every change.
// Intermediate values are dropped when the reader falls behind. The channel is
// closed once ctx is done.
func (c *Cell[T]) Subscribe(ctx context.Context) <-chan T {
	out := make(chan T)

	go func() {
		defer close(out)
		for {
			v, changed := c.Watch()
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}

			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
