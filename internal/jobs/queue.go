// Package jobs schedules background work on the worker pool.
package jobs

import (
	"sync"

	"github.com/studypals/studypals/internal/worker"
)

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueRecompute(userID string) error
}

// Submitter is the part of worker.Pool the queue needs.
type Submitter interface {
	Submit(job worker.Job) error
}

// WorkerQueue implements JobQueue on a worker pool. A user already waiting
// for a recompute is not queued twice; once the job starts, a new request
// queues another.
type WorkerQueue struct {
	pool       Submitter
	recomputer worker.AnalyticsRecomputer

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool Submitter, recomputer worker.AnalyticsRecomputer) *WorkerQueue {
	return &WorkerQueue{
		pool:       pool,
		recomputer: recomputer,
		pending:    map[string]struct{}{},
	}
}

func (q *WorkerQueue) EnqueueRecompute(userID string) error {
	q.mu.Lock()
	if _, ok := q.pending[userID]; ok {
		q.mu.Unlock()
		return nil
	}
	q.pending[userID] = struct{}{}
	q.mu.Unlock()

	err := q.pool.Submit(&worker.RecomputeAnalyticsJob{
		Recomputer: q.recomputer,
		UserID:     userID,
		Started:    func() { q.release(userID) },
	})
	if err != nil {
		q.release(userID)
	}
	return err
}

func (q *WorkerQueue) release(userID string) {
	q.mu.Lock()
	delete(q.pending, userID)
	q.mu.Unlock()
}
