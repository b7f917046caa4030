// Package jobs provides the in-memory dispatcher used to run post-creation
// work (document rendering, email notification) outside the request
// transaction.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Task is one unit of deferred work, keyed by the request it belongs to.
type Task struct {
	ID        string
	RequestID int64
	Enqueued  time.Time
}

// Handler executes a task. The handler owns its own retry policy; the
// dispatcher does not requeue failures.
type Handler func(context.Context, Task) error

// Dispatcher fans tasks out to a fixed worker pool.
type Dispatcher struct {
	name    string
	handler Handler
	logger  *zap.Logger

	tasks   chan Task
	workers int

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewDispatcher builds a dispatcher with the provided handler.
func NewDispatcher(name string, handler Handler, workers, buffer int, logger *zap.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if buffer <= 0 {
		buffer = workers * 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		name:    name,
		handler: handler,
		logger:  logger,
		tasks:   make(chan Task, buffer),
		workers: workers,
	}
}

// Start launches the worker pool. Safe to call once.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.ctx, d.cancel = context.WithCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	d.started = true
	d.logger.Sugar().Infow("dispatcher started", "name", d.name, "workers", d.workers)
}

// Stop cancels workers and waits for them to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	d.cancel()
	d.mu.Unlock()
	d.wg.Wait()
	d.logger.Sugar().Infow("dispatcher stopped", "name", d.name)
}

// Enqueue schedules a task for a request.
func (d *Dispatcher) Enqueue(requestID int64) error {
	d.mu.Lock()
	ctx := d.ctx
	started := d.started
	d.mu.Unlock()

	if !started {
		return fmt.Errorf("dispatcher %s not started", d.name)
	}

	task := Task{ID: uuid.NewString(), RequestID: requestID, Enqueued: time.Now().UTC()}
	select {
	case <-ctx.Done():
		return fmt.Errorf("dispatcher %s stopped: %w", d.name, ctx.Err())
	case d.tasks <- task:
		return nil
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case task := <-d.tasks:
			if err := d.handler(d.ctx, task); err != nil {
				d.logger.Sugar().Errorw("task failed",
					"name", d.name, "task_id", task.ID, "request_id", task.RequestID, "error", err)
			}
		}
	}
}
