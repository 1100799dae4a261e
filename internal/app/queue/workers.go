package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taskforge/taskforge/internal/app/metrics"
	"github.com/taskforge/taskforge/internal/app/system"
	"github.com/taskforge/taskforge/pkg/logger"
)

var _ system.Service = (*Workers)(nil)
var _ Queue = (*Workers)(nil)

// Workers is an in-process job queue: a buffered channel consumed by a fixed
// pool of goroutines. It decouples producers from delivery work within a
// single process; an external broker can replace it behind the Queue
// interface without touching producers.
type Workers struct {
	handler   Handler
	log       *logger.Logger
	jobs      chan Job
	workers   int
	onFailure func(ctx context.Context, job Job, err error)

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewWorkers creates a worker pool with the given concurrency and buffer.
func NewWorkers(handler Handler, workers, buffer int, log *logger.Logger) *Workers {
	if log == nil {
		log = logger.NewDefault("queue")
	}
	if workers <= 0 {
		workers = 2
	}
	if buffer <= 0 {
		buffer = 256
	}
	return &Workers{
		handler: handler,
		log:     log,
		jobs:    make(chan Job, buffer),
		workers: workers,
	}
}

// OnFailure registers a callback invoked after a job handler fails. The
// runtime uses it to send the courtesy failure notification to the acting
// user.
func (w *Workers) OnFailure(fn func(ctx context.Context, job Job, err error)) {
	w.mu.Lock()
	w.onFailure = fn
	w.mu.Unlock()
}

// Enqueue submits a job without blocking. A full buffer is an error: the
// entity mutation has already committed, so the caller logs and moves on
// (accepted degraded mode).
func (w *Workers) Enqueue(_ context.Context, job Job) error {
	select {
	case w.jobs <- job:
		metrics.SetQueueDepth(len(w.jobs))
		return nil
	default:
		return fmt.Errorf("queue full, dropping %s job", job.Kind())
	}
}

// Depth returns the number of jobs currently buffered.
func (w *Workers) Depth() int { return len(w.jobs) }

func (w *Workers) Name() string { return "queue-workers" }

func (w *Workers) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.mu.Unlock()

	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for {
				select {
				case <-runCtx.Done():
					return
				case job := <-w.jobs:
					w.run(runCtx, job)
					metrics.SetQueueDepth(len(w.jobs))
				}
			}
		}()
	}

	w.log.WithField("workers", w.workers).Info("queue workers started")
	return nil
}

func (w *Workers) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.wg.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if pending := len(w.jobs); pending > 0 {
		w.log.WithField("pending", pending).Warn("queue stopped with jobs still buffered")
	}
	w.log.Info("queue workers stopped")
	return nil
}

func (w *Workers) run(ctx context.Context, job Job) {
	start := time.Now()
	err := w.handler.Handle(ctx, job)
	metrics.RecordJobRun(job.Kind(), time.Since(start), err == nil)
	if err == nil {
		return
	}

	w.log.WithError(err).
		WithField("kind", job.Kind()).
		WithField("actor", job.Actor()).
		Warn("fan-out job failed")

	w.mu.Lock()
	onFailure := w.onFailure
	w.mu.Unlock()
	if onFailure != nil {
		onFailure(ctx, job, err)
	}
}
