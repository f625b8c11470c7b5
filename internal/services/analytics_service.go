package services

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/studypals/studypals/internal/analytics"
	"github.com/studypals/studypals/internal/errors"
	"github.com/studypals/studypals/internal/logger"
	"github.com/studypals/studypals/internal/models"
	"github.com/studypals/studypals/internal/repository"
)

// AnalyticsService keeps each user's analytics snapshot current.
type AnalyticsService interface {
	GetAnalytics(ctx context.Context, userID string) (*models.StudyAnalytics, error)
	Recompute(ctx context.Context, userID string) (*models.StudyAnalytics, error)
	RecomputeAnalytics(ctx context.Context, userID string) error
	ApplySession(ctx context.Context, session models.StudySession, insert func(context.Context) error) (*models.StudyAnalytics, error)
	GetInsights(ctx context.Context, userID string) (*models.Insights, error)
}

type analyticsService struct {
	sessions  repository.SessionRepository
	quizzes   repository.QuizRepository
	reviews   repository.ReviewRepository
	snapshots repository.AnalyticsRepository
	calc      *analytics.Calculator
	locks     userLocks
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(
	sessions repository.SessionRepository,
	quizzes repository.QuizRepository,
	reviews repository.ReviewRepository,
	snapshots repository.AnalyticsRepository,
	calc *analytics.Calculator,
) AnalyticsService {
	return &analyticsService{
		sessions:  sessions,
		quizzes:   quizzes,
		reviews:   reviews,
		snapshots: snapshots,
		calc:      calc,
	}
}

// GetAnalytics returns the stored snapshot, computing and storing one when
// none exists or the stored one cannot be read. A snapshot written on an
// earlier day has its streaks and trend window brought up to today first.
func (s *analyticsService) GetAnalytics(ctx context.Context, userID string) (*models.StudyAnalytics, error) {
	log := logger.FromContext(ctx).WithField("user_id", userID)
	log.Debug("getting analytics")

	unlock := s.locks.lock(userID)
	defer unlock()

	snapshot, err := s.snapshots.Get(ctx, userID)
	if err != nil && !isDeserialization(err) {
		log.Error("failed to load analytics snapshot: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if err != nil {
		log.Warn("stored snapshot unreadable, recomputing: %v", err)
	}
	if snapshot == nil {
		return s.recompute(ctx, userID)
	}
	if !s.calc.IsStale(*snapshot) {
		return snapshot, nil
	}

	refreshed := s.calc.Refresh(*snapshot)
	if err := s.snapshots.Save(ctx, refreshed); err != nil {
		// The refreshed view is still correct; the next read retries the save.
		log.Warn("failed to save refreshed snapshot: %v", err)
	} else {
		log.Debug("stale snapshot refreshed: last_updated=%s", snapshot.LastUpdated.Format(models.DateLayout))
	}
	return &refreshed, nil
}

// Recompute rebuilds the snapshot from the full stored history.
func (s *analyticsService) Recompute(ctx context.Context, userID string) (*models.StudyAnalytics, error) {
	unlock := s.locks.lock(userID)
	defer unlock()
	return s.recompute(ctx, userID)
}

func (s *analyticsService) recompute(ctx context.Context, userID string) (*models.StudyAnalytics, error) {
	log := logger.FromContext(ctx).WithField("user_id", userID)
	filter := models.HistoryFilter{UserID: userID}

	sessions, err := s.sessions.ListByUser(ctx, filter)
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	quizzes, err := s.quizzes.ListByUser(ctx, filter)
	if err != nil {
		log.Error("failed to list quizzes: %v", err)
		return nil, errors.NewInternalError(err)
	}
	reviews, err := s.reviews.ListByUser(ctx, filter)
	if err != nil {
		log.Error("failed to list reviews: %v", err)
		return nil, errors.NewInternalError(err)
	}

	snapshot := s.calc.CalculateUserAnalytics(userID, sessions, quizzes, reviews)
	if err := s.snapshots.Save(ctx, snapshot); err != nil {
		log.Error("failed to save analytics snapshot: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("analytics recomputed: sessions=%d, quizzes=%d, reviews=%d", len(sessions), len(quizzes), len(reviews))
	return &snapshot, nil
}

// RecomputeAnalytics lets the service run as a background job.
func (s *analyticsService) RecomputeAnalytics(ctx context.Context, userID string) error {
	_, err := s.Recompute(ctx, userID)
	return err
}

// ApplySession stores a session through insert and folds it into the user's
// snapshot. Both steps run under the user's lock, so a recompute cannot read
// the new session from storage before the fold and count it twice. An insert
// error is returned unchanged and leaves the snapshot alone. Without a usable
// snapshot the fold falls back to a full recompute.
func (s *analyticsService) ApplySession(
	ctx context.Context,
	session models.StudySession,
	insert func(context.Context) error,
) (*models.StudyAnalytics, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"user_id": session.UserID, "session_id": session.ID})

	unlock := s.locks.lock(session.UserID)
	defer unlock()

	if insert != nil {
		if err := insert(ctx); err != nil {
			return nil, err
		}
	}

	previous, err := s.snapshots.Get(ctx, session.UserID)
	if err != nil && !isDeserialization(err) {
		log.Error("failed to load analytics snapshot: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if previous == nil {
		log.Debug("no usable snapshot, recomputing")
		return s.recompute(ctx, session.UserID)
	}

	updated := s.calc.UpdateAnalyticsWithSession(*previous, session)
	if err := s.snapshots.Save(ctx, updated); err != nil {
		log.Error("failed to save analytics snapshot: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Debug("analytics updated incrementally")
	return &updated, nil
}

func (s *analyticsService) GetInsights(ctx context.Context, userID string) (*models.Insights, error) {
	snapshot, err := s.GetAnalytics(ctx, userID)
	if err != nil {
		return nil, err
	}
	insights := snapshot.Insights()
	return &insights, nil
}

func isDeserialization(err error) bool {
	var decErr *errors.DeserializationError
	return stderrors.As(err, &decErr)
}

// userLocks serialises snapshot read-modify-write per user.
type userLocks struct {
	m sync.Map
}

func (l *userLocks) lock(userID string) func() {
	v, _ := l.m.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
