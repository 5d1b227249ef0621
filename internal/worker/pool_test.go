package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestDispatcherRunsEveryJob(t *testing.T) {
	log, _ := test.NewNullLogger()
	d := NewDispatcher(3, 50, log)
	d.Run()

	var done int32
	for i := 0; i < 20; i++ {
		ok := d.Submit(JobFunc{Name: "count", Fn: func(ctx context.Context) error {
			atomic.AddInt32(&done, 1)
			return nil
		}})
		assert.True(t, ok)
	}
	d.Submit(JobFunc{Name: "fails", Fn: func(ctx context.Context) error { return errors.New("boom") }})

	d.Stop()
	assert.Equal(t, int32(20), atomic.LoadInt32(&done))
	assert.False(t, d.Submit(JobFunc{Name: "late", Fn: func(ctx context.Context) error { return nil }}))
}

func TestDispatcherQueueFull(t *testing.T) {
	log, _ := test.NewNullLogger()
	d := NewDispatcher(1, 1, log)
	// workers not started, so the single slot fills up
	assert.True(t, d.Submit(JobFunc{Name: "a", Fn: func(ctx context.Context) error { return nil }}))
	assert.False(t, d.Submit(JobFunc{Name: "b", Fn: func(ctx context.Context) error { return nil }}))
}
