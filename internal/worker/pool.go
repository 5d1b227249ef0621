package worker

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Job is one unit of background work.
type Job interface {
	Execute(ctx context.Context) error
	ID() string
}

// JobFunc adapts a plain function into a Job.
type JobFunc struct {
	Name string
	Fn   func(ctx context.Context) error
}

func (j JobFunc) Execute(ctx context.Context) error { return j.Fn(ctx) }
func (j JobFunc) ID() string                        { return j.Name }

// Dispatcher feeds queued jobs to a fixed set of workers.
type Dispatcher struct {
	MaxWorkers int
	JobQueue   chan Job

	log     logrus.FieldLogger
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.RWMutex
	stopped bool
}

func NewDispatcher(maxWorkers, queueSize int, log logrus.FieldLogger) *Dispatcher {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		MaxWorkers: maxWorkers,
		JobQueue:   make(chan Job, queueSize),
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run starts the workers.
func (d *Dispatcher) Run() {
	for i := 1; i <= d.MaxWorkers; i++ {
		d.wg.Add(1)
		go d.work(i)
	}
	d.log.WithField("workers", d.MaxWorkers).Info("dispatcher running")
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case job, ok := <-d.JobQueue:
			if !ok {
				return
			}
			entry := d.log.WithFields(logrus.Fields{"worker": id, "job": job.ID()})
			if err := job.Execute(d.ctx); err != nil {
				entry.WithError(err).Error("job failed")
				continue
			}
			entry.Debug("job done")
		}
	}
}

// Submit queues job without blocking. It reports false when the queue is
// full or the dispatcher is stopped.
func (d *Dispatcher) Submit(job Job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return false
	}
	select {
	case d.JobQueue <- job:
		return true
	default:
		d.log.WithField("job", job.ID()).Warn("job queue full, job dropped")
		return false
	}
}

// Stop lets the queued jobs drain, then waits for every worker to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.JobQueue)
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
}
