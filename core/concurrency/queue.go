// File: core/concurrency/queue.go
// Package concurrency provides the coordination primitives between a
// producer goroutine and a background drain.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Queue is an unbounded FIFO over eapache/queue guarded by a short mutex.
// It is used as a single-producer/single-consumer handoff, but any number of
// goroutines may call it.

package concurrency

import (
	"sync"

	"github.com/eapache/queue"
)

// Queue is an unbounded, mutex-guarded FIFO.
type Queue[T any] struct {
	mu     sync.Mutex
	q      *queue.Queue
	closed bool
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{q: queue.New()}
}

// Enqueue appends val. It fails with ErrQueueClosed after Close.
func (q *Queue[T]) Enqueue(val T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.q.Add(val)
	return nil
}

// Dequeue removes and returns the oldest item; ok false if empty.
func (q *Queue[T]) Dequeue() (val T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.q.Length() == 0 {
		return val, false
	}
	return q.q.Remove().(T), true
}

// Len returns number of items currently queued.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.q.Length()
}

// Close rejects further items and drops the queued ones. Returns how many
// were dropped.
func (q *Queue[T]) Close() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	n := q.q.Length()
	for q.q.Length() > 0 {
		q.q.Remove()
	}
	return n
}
