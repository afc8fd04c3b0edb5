package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// Worker drains a Queue strictly in order. A failing or panicking task is
// logged and the worker moves on to the next one.
type Worker struct {
	queue  *Queue
	logger *slog.Logger

	// onDone, if set, observes every finished task and its error.
	onDone func(t Task, err error)
}

// NewWorker creates a worker for q.
func NewWorker(q *Queue, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{queue: q, logger: logger}
}

// OnDone registers an observer for finished tasks. Must be called before Run.
func (w *Worker) OnDone(fn func(t Task, err error)) {
	w.onDone = fn
}

// Run executes tasks until ctx is cancelled or the queue is closed.
// It returns nil in both cases.
func (w *Worker) Run(ctx context.Context) error {
	for {
		t, err := w.queue.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("next task: %w", err)
		}

		start := time.Now()
		err = w.execute(ctx, t)
		if err != nil {
			w.logger.Error("task failed", "task", t.Name, "error", err)
		} else {
			w.logger.Debug("task done", "task", t.Name, "took", time.Since(start))
		}
		if w.onDone != nil {
			w.onDone(t, err)
		}
	}
}

func (w *Worker) execute(ctx context.Context, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			w.logger.Debug("task panic stack", "task", t.Name, "stack", string(debug.Stack()))
		}
	}()

	if t.Run == nil {
		return fmt.Errorf("task %q has no body", t.Name)
	}
	return t.Run(ctx)
}
