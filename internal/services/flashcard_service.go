package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/studypals/studypals/internal/errors"
	"github.com/studypals/studypals/internal/flashcard"
	"github.com/studypals/studypals/internal/logger"
	"github.com/studypals/studypals/internal/models"
	"github.com/studypals/studypals/internal/repository"
	"github.com/studypals/studypals/internal/validation"
)

const defaultCardDifficulty = 3

// CreateFlashcardRequest is the body accepted when adding a card to a deck.
type CreateFlashcardRequest struct {
	DeckID     string `json:"deckId" validate:"required"`
	Front      string `json:"front" validate:"required,max=2000"`
	Back       string `json:"back" validate:"required,max=2000"`
	Difficulty int    `json:"difficulty" validate:"omitempty,min=1,max=5"`
}

// FlashcardService handles flashcard-related business logic
type FlashcardService interface {
	CreateFlashcard(ctx context.Context, userID string, req CreateFlashcardRequest) (*models.Flashcard, error)
	NextFlashcard(ctx context.Context, userID string) (*models.Flashcard, error)
	ReviewFlashcard(ctx context.Context, userID, cardID string, quality int, responseSeconds float64) (*models.Flashcard, error)
}

type flashcardService struct {
	cards   repository.FlashcardRepository
	reviews repository.ReviewRepository
	now     func() time.Time
}

// NewFlashcardService creates a new FlashcardService. A nil clock uses time.Now.
func NewFlashcardService(cards repository.FlashcardRepository, reviews repository.ReviewRepository, now func() time.Time) FlashcardService {
	if now == nil {
		now = time.Now
	}
	return &flashcardService{cards: cards, reviews: reviews, now: now}
}

func (s *flashcardService) CreateFlashcard(ctx context.Context, userID string, req CreateFlashcardRequest) (*models.Flashcard, error) {
	log := logger.FromContext(ctx).WithField("user_id", userID)

	if userID == "" {
		return nil, errors.NewValidationError("userId", "is required")
	}
	if errs := validation.Struct(req); errs != nil {
		return nil, errors.NewValidationError(errs[0].Field, errs.Error())
	}
	if req.Difficulty == 0 {
		req.Difficulty = defaultCardDifficulty
	}

	card := flashcard.NewCard(uuid.NewString(), userID, req.DeckID, req.Front, req.Back, req.Difficulty, s.now().UTC())
	if err := s.cards.Insert(ctx, card); err != nil {
		log.Error("failed to insert flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Debug("created flashcard: card_id=%s, deck_id=%s", card.ID, card.DeckID)
	return &card, nil
}

// NextFlashcard returns the most overdue card, or nil when nothing is due.
func (s *flashcardService) NextFlashcard(ctx context.Context, userID string) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting next flashcard: user_id=%s", userID)

	cards, err := s.cards.NextDue(ctx, userID, s.now().UTC(), 1)
	if err != nil {
		log.Error("failed to get next flashcards: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if len(cards) == 0 {
		log.Debug("no flashcards due for review")
		return nil, nil
	}
	return &cards[0], nil
}

func (s *flashcardService) ReviewFlashcard(ctx context.Context, userID, cardID string, quality int, responseSeconds float64) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("reviewing flashcard: card_id=%s, quality=%d", cardID, quality)

	q := flashcard.Quality(quality)
	if !q.Valid() {
		return nil, errors.NewValidationError("quality", "must be between 0 and 3")
	}
	if responseSeconds < 0 {
		return nil, errors.NewValidationError("responseTimeSeconds", "must not be negative")
	}

	card, err := s.cards.Get(ctx, userID, cardID)
	if err != nil {
		log.Error("failed to get flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("flashcard", cardID)
	}

	now := s.now().UTC()
	updated := flashcard.ApplyReview(*card, q, now)
	log.Debug("applied review, new interval=%d days, ease_factor=%.2f", updated.IntervalDays, updated.EaseFactor)

	if err := s.cards.Update(ctx, updated); err != nil {
		log.Error("failed to update flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}

	review := models.ReviewRecord{
		ID:                  uuid.NewString(),
		UserID:              userID,
		CardID:              cardID,
		Quality:             quality,
		ResponseTimeSeconds: responseSeconds,
		ReviewedAt:          now,
	}
	if err := s.reviews.Insert(ctx, review); err != nil {
		// The schedule is already saved; losing the history row is tolerable.
		log.Warn("failed to store review history: %v", err)
	}

	return &updated, nil
}
