// Package flashcard schedules flashcard reviews with an SM-2 variant.
package flashcard

import (
	"math"
	"time"

	"github.com/studypals/studypals/internal/models"
)

// Quality grades how well a card was recalled.
type Quality int

const (
	QualityAgain Quality = iota
	QualityHard
	QualityGood
	QualityEasy
)

const (
	InitialEase = 2.5
	minEase     = 1.3
	day         = 24 * time.Hour
)

// Valid reports whether q is one of the four grades.
func (q Quality) Valid() bool {
	return q >= QualityAgain && q <= QualityEasy
}

// Correct reports whether the grade counts as a successful recall.
func (q Quality) Correct() bool {
	return q >= QualityGood
}

// NewCard returns a card due immediately with the default ease.
func NewCard(id, userID, deckID, front, back string, difficulty int, now time.Time) models.Flashcard {
	return models.Flashcard{
		ID:         id,
		UserID:     userID,
		DeckID:     deckID,
		Front:      front,
		Back:       back,
		Difficulty: difficulty,
		DueAt:      now,
		EaseFactor: InitialEase,
		CreatedAt:  now,
	}
}

// ApplyReview returns card rescheduled after a review graded q at now.
// A failed recall resets the interval to one day and the correct streak to
// zero.
func ApplyReview(card models.Flashcard, q Quality, now time.Time) models.Flashcard {
	miss := float64(QualityEasy - q)
	ease := card.EaseFactor + 0.1 - miss*(0.08+miss*0.02)
	ease = math.Max(ease, minEase)

	var interval int
	switch {
	case !q.Correct(), card.IntervalDays == 0:
		interval = 1
	case card.IntervalDays == 1:
		interval = 6
	default:
		interval = int(float64(card.IntervalDays) * ease)
	}

	card.TimesReviewed++
	if q.Correct() {
		card.TimesCorrect++
	} else {
		card.TimesCorrect = 0
	}
	card.IntervalDays = interval
	card.EaseFactor = ease
	card.DueAt = now.Add(time.Duration(interval) * day)
	return card
}

// IsDue reports whether card should be shown at now.
func IsDue(card models.Flashcard, now time.Time) bool {
	return !card.DueAt.After(now)
}
