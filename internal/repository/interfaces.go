// Package repository declares the storage interfaces used by the services.
//
// Get-style methods return (nil, nil) when the record does not exist.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/studypals/studypals/internal/models"
)

// ErrDuplicate is wrapped by Insert when a record with the same ID exists.
var ErrDuplicate = errors.New("record already exists")

// SessionRepository stores study sessions with their activities.
type SessionRepository interface {
	Insert(ctx context.Context, session models.StudySession) error
	Get(ctx context.Context, userID, id string) (*models.StudySession, error)
	ListByUser(ctx context.Context, filter models.HistoryFilter) ([]models.StudySession, error)
}

// QuizRepository stores quiz attempts.
type QuizRepository interface {
	Insert(ctx context.Context, quiz models.QuizSession) error
	ListByUser(ctx context.Context, filter models.HistoryFilter) ([]models.QuizSession, error)
}

// ReviewRepository stores flashcard review history.
type ReviewRepository interface {
	Insert(ctx context.Context, review models.ReviewRecord) error
	ListByUser(ctx context.Context, filter models.HistoryFilter) ([]models.ReviewRecord, error)
}

// FlashcardRepository stores flashcards and their scheduling state.
type FlashcardRepository interface {
	Insert(ctx context.Context, card models.Flashcard) error
	Get(ctx context.Context, userID, id string) (*models.Flashcard, error)
	Update(ctx context.Context, card models.Flashcard) error
	NextDue(ctx context.Context, userID string, now time.Time, limit int) ([]models.Flashcard, error)
}

// AnalyticsRepository stores the latest analytics snapshot per user.
type AnalyticsRepository interface {
	Get(ctx context.Context, userID string) (*models.StudyAnalytics, error)
	Save(ctx context.Context, snapshot models.StudyAnalytics) error
}
