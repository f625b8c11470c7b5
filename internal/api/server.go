// Package api serves the StudyPals JSON API.
package api

import (
	"context"

	"github.com/studypals/studypals/internal/jobs"
	"github.com/studypals/studypals/internal/services"
)

// Pinger reports whether a dependency can serve requests.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	AnalyticsService services.AnalyticsService
	SessionService   services.SessionService
	FlashcardService services.FlashcardService
	RecomputeQueue   jobs.JobQueue
	DB               Pinger
}
