package models

import "time"

type Flashcard struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	DeckID        string    `json:"deckId"`
	Front         string    `json:"front"`
	Back          string    `json:"back"`
	Difficulty    int       `json:"difficulty"`
	DueAt         time.Time `json:"dueAt"`
	IntervalDays  int       `json:"intervalDays"`
	EaseFactor    float64   `json:"easeFactor"`
	TimesReviewed int       `json:"timesReviewed"`
	TimesCorrect  int       `json:"timesCorrect"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ReviewRecord is one spaced-repetition review of a flashcard.
// Quality: 0=Again, 1=Hard, 2=Good, 3=Easy.
type ReviewRecord struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	CardID              string    `json:"cardId"`
	Quality             int       `json:"quality"`
	ResponseTimeSeconds float64   `json:"responseTimeSeconds"`
	ReviewedAt          time.Time `json:"reviewedAt"`
}

// HistoryFilter narrows history listings to one user and an optional window.
type HistoryFilter struct {
	UserID string
	Since  *time.Time
	Until  *time.Time
	Limit  int
}
