package logging

import (
	"context"
	"sync"
)

// Entry pairs a published value with its hub sequence number.
type Entry[T any] struct {
	Sequence uint64 `json:"seq"`
	Value    T      `json:"value"`
}

// Hub stores the most recent published values and wakes waiters when new
// values arrive. Sequence numbers start at 1 and never repeat.
type Hub[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int
	buffer   []Entry[T]
	nextSeq  uint64
	closed   bool
}

// NewHub constructs a bounded in-memory fan-out buffer.
func NewHub[T any](capacity int) *Hub[T] {
	if capacity <= 0 {
		capacity = 512
	}
	h := &Hub[T]{capacity: capacity}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// Publish appends a value and returns its sequence number.
func (h *Hub[T]) Publish(value T) uint64 {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	h.nextSeq++
	seq := h.nextSeq
	if len(h.buffer) == h.capacity {
		copy(h.buffer, h.buffer[1:])
		h.buffer = h.buffer[:h.capacity-1]
	}
	h.buffer = append(h.buffer, Entry[T]{Sequence: seq, Value: value})
	h.cond.Broadcast()
	h.mu.Unlock()
	return seq
}

// Close wakes all waiters; later Fetch calls return immediately.
func (h *Hub[T]) Close() {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.closed = true
	h.cond.Broadcast()
	h.mu.Unlock()
}

// Fetch returns entries with sequence greater than since. When wait is true,
// Fetch blocks until at least one entry is available, the hub is closed or
// the context ends.
func (h *Hub[T]) Fetch(ctx context.Context, since uint64, limit int, wait bool) ([]Entry[T], uint64, error) {
	if h == nil {
		return nil, since, nil
	}
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}

	cancelWait := make(chan struct{})
	if wait && ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				h.mu.Lock()
				h.cond.Broadcast()
				h.mu.Unlock()
			case <-cancelWait:
			}
		}()
	}
	defer close(cancelWait)

	h.mu.Lock()
	defer h.mu.Unlock()

	for {
		entries, next := h.snapshotLocked(since, limit)
		if len(entries) > 0 || !wait || h.closed {
			return entries, next, contextError(ctx)
		}
		if err := contextError(ctx); err != nil {
			return nil, next, err
		}
		h.cond.Wait()
		if err := contextError(ctx); err != nil {
			return nil, next, err
		}
	}
}

// Tail returns the most recent limit entries without blocking.
func (h *Hub[T]) Tail(limit int) ([]Entry[T], uint64) {
	if h == nil {
		return nil, 0
	}
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	start := len(h.buffer) - limit
	if start < 0 {
		start = 0
	}
	out := make([]Entry[T], len(h.buffer)-start)
	copy(out, h.buffer[start:])
	return out, h.nextSeq
}

func (h *Hub[T]) snapshotLocked(since uint64, limit int) ([]Entry[T], uint64) {
	startIdx := -1
	for i, entry := range h.buffer {
		if entry.Sequence > since {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return nil, h.nextSeq
	}
	end := startIdx + limit
	if end > len(h.buffer) {
		end = len(h.buffer)
	}
	out := make([]Entry[T], end-startIdx)
	copy(out, h.buffer[startIdx:end])
	return out, out[len(out)-1].Sequence
}

func contextError(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
