package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bladeshop-be/internal/logger"
	"bladeshop-be/internal/metrics"

	"go.uber.org/zap"
)

const (
	defaultWorkers    = 2
	defaultQueueSize  = 64
	defaultJobTimeout = 30 * time.Second
)

// Job is a unit of background work. Its error is only logged.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

type DispatcherConfig struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

// Dispatcher runs jobs on a fixed pool of workers fed by a bounded queue.
type Dispatcher struct {
	jobs    chan Job
	timeout time.Duration
	metrics *metrics.Payments

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(cfg DispatcherConfig, m *metrics.Payments) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}
	if m == nil {
		m = metrics.Default
	}

	d := &Dispatcher{
		jobs:    make(chan Job, cfg.QueueSize),
		timeout: cfg.JobTimeout,
		metrics: m,
	}

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	return d
}

// Submit enqueues job without blocking. It reports false when the queue is
// full or the dispatcher is closed; the job is dropped.
func (d *Dispatcher) Submit(job Job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		logger.L().Warn("dispatcher closed, job dropped", zap.String("job", job.Name))
		d.metrics.NotificationsDropped.Inc()
		return false
	}

	select {
	case d.jobs <- job:
		return true
	default:
		logger.L().Warn("notification queue full, job dropped", zap.String("job", job.Name))
		d.metrics.NotificationsDropped.Inc()
		return false
	}
}

// Close stops accepting jobs and waits for queued ones to finish or for ctx
// to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		d.run(job)
	}
}

func (d *Dispatcher) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	log := logger.L().With(zap.String("job", job.Name))
	start := metrics.StartTimer()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return job.Run(ctx)
	}()

	if err != nil {
		d.metrics.NotificationsFailed.Inc()
		log.Error("background job failed", zap.Duration("duration", start.Duration()), zap.Error(err))
		return
	}

	d.metrics.NotificationsSent.Inc()
	log.Info("background job done", zap.Duration("duration", start.Duration()))
}
