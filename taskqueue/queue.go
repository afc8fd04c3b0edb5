// Package taskqueue provides the single-consumer FIFO that serializes every
// simulated input action.
package taskqueue

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed is returned when submitting to, or waiting on, a closed queue.
var ErrQueueClosed = errors.New("task queue closed")

// Task is one deferred unit of work.
type Task struct {
	// Name identifies the task in logs, e.g. "fire(3)".
	Name string
	Run  func(ctx context.Context) error
}

// Queue is an unbounded FIFO of tasks. Submit never blocks.
// Any number of goroutines may submit; exactly one should consume.
type Queue struct {
	mu     sync.Mutex
	items  []Task
	closed bool

	// ready holds at most one wake-up token for the consumer.
	ready chan struct{}
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Submit appends tasks in order. Tasks passed in a single call are
// contiguous in the queue.
func (q *Queue) Submit(tasks ...Task) error {
	if len(tasks) == 0 {
		return nil
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.items = append(q.items, tasks...)
	q.mu.Unlock()

	q.wake()
	return nil
}

// Len returns the number of queued tasks, excluding one being executed.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops accepting tasks and discards whatever is still queued.
// It returns the number of discarded tasks.
func (q *Queue) Close() int {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0
	}
	q.closed = true
	dropped := len(q.items)
	q.items = nil
	q.mu.Unlock()

	q.wake()
	return dropped
}

// Next blocks until a task is available, the queue is closed, or ctx is done.
func (q *Queue) Next(ctx context.Context) (Task, error) {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return Task{}, ErrQueueClosed
		}
		if len(q.items) > 0 {
			t := q.items[0]
			q.items[0] = Task{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return t, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Task{}, ctx.Err()
		case <-q.ready:
		}
	}
}

func (q *Queue) wake() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
