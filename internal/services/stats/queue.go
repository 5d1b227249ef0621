package stats

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/worker"
)

// Submitter is the part of worker.Dispatcher the queue needs.
type Submitter interface {
	Submit(job worker.Job) bool
}

// Queue runs recomputes on the worker pool so request handlers never wait
// for them.
type Queue struct {
	pool Submitter
	svc  *Service
	log  logrus.FieldLogger
}

func NewQueue(pool Submitter, svc *Service, log logrus.FieldLogger) *Queue {
	return &Queue{pool: pool, svc: svc, log: log}
}

func (q *Queue) Enqueue(profileID uuid.UUID) {
	if profileID == uuid.Nil {
		return
	}
	ok := q.pool.Submit(worker.JobFunc{
		Name: "stats:" + profileID.String(),
		Fn: func(ctx context.Context) error {
			_, err := q.svc.RecomputeDerivedStats(ctx, profileID)
			return err
		},
	})
	if !ok {
		q.log.WithField("profile_id", profileID).Warn("stats recompute not queued")
	}
}
