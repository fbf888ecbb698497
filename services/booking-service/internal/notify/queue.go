package notify

import (
	"context"
	"log/slog"
	"sync"

	otelx "github.com/md-rashed-zaman/salonbook/libs/otel"
)

// Queue runs side effects of booking mutations (messages, events) on a fixed
// pool of workers so a slow collaborator never holds up the request.
type Queue struct {
	logger *slog.Logger
	tasks  chan task
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

type task struct {
	name string
	ctx  context.Context
	run  func(context.Context) error
}

func NewQueue(logger *slog.Logger, size, workers int) *Queue {
	if size <= 0 {
		size = 256
	}
	if workers <= 0 {
		workers = 4
	}
	q := &Queue{logger: logger, tasks: make(chan task, size)}
	q.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go q.work()
	}
	return q
}

// Submit enqueues run without blocking. The task gets a context detached from
// ctx's cancellation but carrying its trace. It reports false when the queue
// is full or closed; the task is then dropped.
func (q *Queue) Submit(ctx context.Context, name string, run func(context.Context) error) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("outbound queue closed, task dropped", "task", name)
		return false
	}
	select {
	case q.tasks <- task{name: name, ctx: otelx.Detached(ctx), run: run}:
		return true
	default:
		q.logger.Warn("outbound queue full, task dropped", "task", name)
		return false
	}
}

// Notify queues a single message through d.
func (q *Queue) Notify(ctx context.Context, d Dispatcher, to, body string) bool {
	if to == "" {
		return false
	}
	return q.Submit(ctx, "notify", func(ctx context.Context) error {
		return d.Send(ctx, to, body)
	})
}

// Close stops accepting tasks and waits for queued ones to finish or ctx to end.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for t := range q.tasks {
		if err := t.run(t.ctx); err != nil {
			q.logger.Error("outbound task failed", "task", t.name, "err", err)
		}
	}
}
