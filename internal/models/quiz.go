package models

import "time"

type QuizAnswer struct {
	CardID              string    `json:"cardId"`
	SelectedOptionIndex int       `json:"selectedOptionIndex"`
	CorrectOptionIndex  int       `json:"correctOptionIndex"`
	IsCorrect           bool      `json:"isCorrect"`
	AnsweredAt          time.Time `json:"answeredAt"`
}

// QuizSession is one quiz attempt over a deck. EndTime is nil while the quiz
// is in progress.
type QuizSession struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	DeckID      string       `json:"deckId"`
	DeckTitle   string       `json:"deckTitle"`
	CardIDs     []string     `json:"cardIds"`
	StartTime   time.Time    `json:"startTime"`
	EndTime     *time.Time   `json:"endTime,omitempty"`
	IsCompleted bool         `json:"isCompleted"`
	FinalScore  float64      `json:"finalScore"`
	Answers     []QuizAnswer `json:"answers"`
}

// FinishedAt is EndTime when set, otherwise the last answer or StartTime.
func (q QuizSession) FinishedAt() time.Time {
	if q.EndTime != nil {
		return *q.EndTime
	}
	last := q.StartTime
	for _, a := range q.Answers {
		if a.AnsweredAt.After(last) {
			last = a.AnsweredAt
		}
	}
	return last
}

// CorrectCount counts answers marked correct.
func (q QuizSession) CorrectCount() int {
	n := 0
	for _, a := range q.Answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}
