package worker

import (
	"context"
)

// AnalyticsRecomputer rebuilds a user's analytics from stored history.
// Declared here so the worker does not import the services package.
type AnalyticsRecomputer interface {
	RecomputeAnalytics(ctx context.Context, userID string) error
}

// RecomputeAnalyticsJob rebuilds one user's analytics snapshot.
type RecomputeAnalyticsJob struct {
	Recomputer AnalyticsRecomputer
	UserID     string
	// Started, when set, runs before the history is read. A recompute
	// requested after that point needs a job of its own.
	Started func()
}

func (j *RecomputeAnalyticsJob) Name() string { return "recompute_analytics" }

func (j *RecomputeAnalyticsJob) Run(ctx context.Context) error {
	if j.Started != nil {
		j.Started()
	}
	return j.Recomputer.RecomputeAnalytics(ctx, j.UserID)
}
