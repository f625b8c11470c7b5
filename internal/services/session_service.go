package services

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/studypals/studypals/internal/errors"
	"github.com/studypals/studypals/internal/jobs"
	"github.com/studypals/studypals/internal/logger"
	"github.com/studypals/studypals/internal/models"
	"github.com/studypals/studypals/internal/repository"
)

// SessionService records study history and keeps analytics in step with it.
type SessionService interface {
	RecordSession(ctx context.Context, userID string, session models.StudySession) (*models.StudySession, error)
	RecordQuiz(ctx context.Context, userID string, quiz models.QuizSession) (*models.QuizSession, error)
}

type sessionService struct {
	sessions  repository.SessionRepository
	quizzes   repository.QuizRepository
	analytics AnalyticsService
	queue     jobs.JobQueue
}

// NewSessionService creates a new SessionService
func NewSessionService(
	sessions repository.SessionRepository,
	quizzes repository.QuizRepository,
	analytics AnalyticsService,
	queue jobs.JobQueue,
) SessionService {
	return &sessionService{
		sessions:  sessions,
		quizzes:   quizzes,
		analytics: analytics,
		queue:     queue,
	}
}

// RecordSession stores a finished session and folds it into the user's
// analytics under the user's lock. The session is kept even when the
// analytics update fails; a full recompute is queued instead.
func (s *sessionService) RecordSession(ctx context.Context, userID string, session models.StudySession) (*models.StudySession, error) {
	log := logger.FromContext(ctx).WithField("user_id", userID)

	if err := claimOwnership(&session.UserID, userID); err != nil {
		return nil, err
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	} else {
		existing, err := s.sessions.Get(ctx, userID, session.ID)
		if err != nil {
			log.Error("failed to look up session: %v", err)
			return nil, errors.NewInternalError(err)
		}
		if existing != nil {
			return nil, errors.NewBadRequestError(fmt.Sprintf("session %s already recorded", session.ID))
		}
	}
	session.StartTime = session.StartTime.UTC()
	session.EndTime = session.EndTime.UTC()
	session.Activities = append([]models.SessionActivity{}, session.Activities...)
	for i := range session.Activities {
		session.Activities[i].Timestamp = session.Activities[i].Timestamp.UTC()
	}

	log = log.WithField("session_id", session.ID)
	log.Debug("recording session: subject=%q, activities=%d", session.Subject, len(session.Activities))

	var insertErr error
	_, err := s.analytics.ApplySession(ctx, session, func(ctx context.Context) error {
		insertErr = s.sessions.Insert(ctx, session)
		return insertErr
	})
	if insertErr != nil {
		if stderrors.Is(insertErr, repository.ErrDuplicate) {
			return nil, errors.NewBadRequestError(fmt.Sprintf("session %s already recorded", session.ID))
		}
		log.Error("failed to insert session: %v", insertErr)
		return nil, errors.NewInternalError(insertErr)
	}
	if err != nil {
		log.Warn("incremental analytics update failed, queueing recompute: %v", err)
		if qErr := s.queue.EnqueueRecompute(userID); qErr != nil {
			log.Error("failed to queue recompute: %v", qErr)
		}
	}

	return &session, nil
}

// RecordQuiz stores a quiz attempt and queues a full recompute, since quiz
// scores feed the trend and recent-score views.
func (s *sessionService) RecordQuiz(ctx context.Context, userID string, quiz models.QuizSession) (*models.QuizSession, error) {
	log := logger.FromContext(ctx).WithField("user_id", userID)

	if err := claimOwnership(&quiz.UserID, userID); err != nil {
		return nil, err
	}
	if quiz.FinalScore < 0 || quiz.FinalScore > 1 {
		return nil, errors.NewValidationError("finalScore", "must be between 0 and 1")
	}
	if quiz.ID == "" {
		quiz.ID = uuid.NewString()
	}
	quiz.StartTime = quiz.StartTime.UTC()
	if quiz.EndTime != nil {
		end := quiz.EndTime.UTC()
		quiz.EndTime = &end
	}
	if quiz.IsCompleted && quiz.EndTime == nil {
		end := quiz.FinishedAt().UTC()
		quiz.EndTime = &end
	}
	quiz.Answers = append([]models.QuizAnswer{}, quiz.Answers...)
	for i := range quiz.Answers {
		quiz.Answers[i].AnsweredAt = quiz.Answers[i].AnsweredAt.UTC()
	}

	log = log.WithField("quiz_id", quiz.ID)
	log.Debug("recording quiz: completed=%t, score=%.2f", quiz.IsCompleted, quiz.FinalScore)

	if err := s.quizzes.Insert(ctx, quiz); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.NewBadRequestError(fmt.Sprintf("quiz %s already recorded", quiz.ID))
		}
		log.Error("failed to insert quiz: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if err := s.queue.EnqueueRecompute(userID); err != nil {
		log.Warn("failed to queue recompute: %v", err)
	}

	return &quiz, nil
}

// claimOwnership fills an empty owner with userID and rejects a different one.
func claimOwnership(owner *string, userID string) error {
	if userID == "" {
		return errors.NewValidationError("userId", "is required")
	}
	if *owner == "" {
		*owner = userID
		return nil
	}
	if *owner != userID {
		return errors.NewValidationError("userId", "does not match the request path")
	}
	return nil
}
