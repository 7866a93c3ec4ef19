package worker_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/flashdeck/internal/worker"
)

type countJob struct {
	name string
	runs *atomic.Int32
	err  error
}

func (j countJob) Name() string { return j.name }

func (j countJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestPool_DrainsQueueOnStop(t *testing.T) {
	var runs atomic.Int32
	pool := worker.NewPool(3, 20)
	pool.Start(context.Background())

	for i := range 20 {
		var err error
		if i%5 == 0 {
			err = fmt.Errorf("boom")
		}
		pool.Submit(countJob{name: fmt.Sprintf("job-%d", i), runs: &runs, err: err})
	}

	failed := pool.Stop()
	assert.Equal(t, int32(20), runs.Load())
	assert.Equal(t, 4, failed)
	assert.Equal(t, 0, pool.QueueSize())
}

func TestPool_CancelledContextSkipsJobs(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := worker.NewPool(1, 4)
	for i := range 4 {
		pool.Submit(countJob{name: fmt.Sprintf("job-%d", i), runs: &runs})
	}
	pool.Start(ctx)

	assert.Equal(t, 4, pool.Stop())
	assert.Equal(t, int32(0), runs.Load())
}

func TestNewPool_Defaults(t *testing.T) {
	pool := worker.NewPool(0, 0)
	pool.Start(context.Background())
	assert.Equal(t, 0, pool.Stop())
}
