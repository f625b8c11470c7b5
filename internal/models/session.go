package models

import (
	"math"
	"strconv"
	"time"
)

// ActivityType identifies what happened inside a study session.
type ActivityType string

const (
	ActivityCardView ActivityType = "card_view"
	ActivityAnswer   ActivityType = "answer"
	ActivityFlip     ActivityType = "card_flip"
	ActivityHint     ActivityType = "hint"
)

// Session metadata keys written by the session recorder.
const (
	MetaLearningStyle     = "learningStyle"
	MetaDifficultyRatings = "difficultyRatings"
)

// SessionActivity is one recorded event inside a StudySession.
type SessionActivity struct {
	Type           ActivityType   `json:"type"`
	Timestamp      time.Time      `json:"timestamp"`
	CardID         string         `json:"cardId"`
	WasCorrect     *bool          `json:"wasCorrect,omitempty"`
	ResponseTimeMs *int           `json:"responseTimeMs,omitempty"`
	Data           map[string]any `json:"data"`
}

// IsCorrectAnswer reports an answer activity explicitly marked correct.
func (a SessionActivity) IsCorrectAnswer() bool {
	return a.Type == ActivityAnswer && a.WasCorrect != nil && *a.WasCorrect
}

// IsIncorrectAnswer reports an answer activity explicitly marked wrong.
func (a SessionActivity) IsIncorrectAnswer() bool {
	return a.Type == ActivityAnswer && a.WasCorrect != nil && !*a.WasCorrect
}

// StudySession is one continuous study interval. Activities keep insertion
// order.
type StudySession struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	DeckID     string            `json:"deckId"`
	Subject    string            `json:"subject"`
	StartTime  time.Time         `json:"startTime"`
	EndTime    time.Time         `json:"endTime"`
	Activities []SessionActivity `json:"activities"`
	Metadata   map[string]any    `json:"metadata"`
}

// Duration is EndTime-StartTime, clamped to zero when the interval is inverted.
func (s StudySession) Duration() time.Duration {
	d := s.EndTime.Sub(s.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// DurationMinutes rounds Duration to whole minutes.
func (s StudySession) DurationMinutes() int {
	return int(math.Round(s.Duration().Minutes()))
}

// LastActive is the later of the session's start and end.
func (s StudySession) LastActive() time.Time {
	if s.EndTime.After(s.StartTime) {
		return s.EndTime
	}
	return s.StartTime
}

// LearningStyle returns the session's learning-style tag, or "".
func (s StudySession) LearningStyle() string {
	style, _ := s.Metadata[MetaLearningStyle].(string)
	return style
}

// CardDifficulty returns the 1-5 difficulty rating recorded for cardID in
// this session's metadata.
func (s StudySession) CardDifficulty(cardID string) (int, bool) {
	var raw any
	switch ratings := s.Metadata[MetaDifficultyRatings].(type) {
	case map[string]any:
		raw = ratings[cardID]
	case map[string]int:
		if r, found := ratings[cardID]; found {
			raw = r
		}
	default:
		return 0, false
	}
	rating, ok := asInt(raw)
	if !ok || rating < 1 || rating > 5 {
		return 0, false
	}
	return rating, true
}

// asInt accepts the numeric shapes metadata values take after a JSON trip.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case uint64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}
