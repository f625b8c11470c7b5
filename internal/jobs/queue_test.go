package jobs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/studypals/studypals/internal/jobs"
	"github.com/studypals/studypals/internal/worker"
)

type capturePool struct {
	jobs []worker.Job
	err  error
}

func (p *capturePool) Submit(job worker.Job) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

type mockRecomputer struct{ mock.Mock }

func (m *mockRecomputer) RecomputeAnalytics(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func TestWorkerQueue_EnqueueRecompute(t *testing.T) {
	pool := &capturePool{}
	rec := new(mockRecomputer)
	rec.On("RecomputeAnalytics", mock.Anything, "u1").Return(nil).Once()
	q := jobs.NewWorkerQueue(pool, rec)

	require.NoError(t, q.EnqueueRecompute("u1"))
	require.NoError(t, q.EnqueueRecompute("u1"))
	require.Len(t, pool.jobs, 1, "a pending user is queued once")
	assert.Equal(t, "recompute_analytics", pool.jobs[0].Name())

	require.NoError(t, pool.jobs[0].Run(context.Background()))
	rec.AssertExpectations(t)

	require.NoError(t, q.EnqueueRecompute("u1"))
	assert.Len(t, pool.jobs, 2, "finished users can be queued again")
}

func TestWorkerQueue_RequestDuringRunIsQueued(t *testing.T) {
	pool := &capturePool{}
	rec := new(mockRecomputer)
	q := jobs.NewWorkerQueue(pool, rec)

	var enqueueErr error
	rec.On("RecomputeAnalytics", mock.Anything, "u1").
		Run(func(mock.Arguments) { enqueueErr = q.EnqueueRecompute("u1") }).
		Return(nil).Once()

	require.NoError(t, q.EnqueueRecompute("u1"))
	require.NoError(t, pool.jobs[0].Run(context.Background()))

	require.NoError(t, enqueueErr)
	assert.Len(t, pool.jobs, 2, "a request made while the job runs gets its own job")
	rec.AssertExpectations(t)
}

func TestWorkerQueue_SubmitFailureReleasesUser(t *testing.T) {
	pool := &capturePool{err: worker.ErrQueueFull}
	q := jobs.NewWorkerQueue(pool, new(mockRecomputer))

	assert.ErrorIs(t, q.EnqueueRecompute("u1"), worker.ErrQueueFull)

	pool.err = nil
	require.NoError(t, q.EnqueueRecompute("u1"))
	assert.Len(t, pool.jobs, 1)
}
