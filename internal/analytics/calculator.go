// Package analytics folds a user's study history into a StudyAnalytics
// snapshot.
//
// Both entry points are pure: inputs are never mutated and every call returns
// a freshly allocated snapshot, so a Calculator can be shared between
// goroutines. A full recompute and an incremental update share one
// accumulator, and the snapshot carries the counters the accumulator needs
// (answer tallies, session counts, distinct study dates, weekly tallies), so
// folding one more session into a snapshot gives the same result as
// recomputing over the whole history at the same instant.
package analytics

import (
	"sort"
	"time"

	"github.com/studypals/studypals/internal/models"
)

const (
	DefaultRecentScoreWindow = 5
	DefaultTrendThreshold    = 0.05

	// UncategorizedSubject is used for sessions recorded without a subject.
	UncategorizedSubject = "Uncategorized"
)

type Calculator struct {
	now               func() time.Time
	loc               *time.Location
	deckSubjects      map[string]string
	recentScoreWindow int
	trendThreshold    float64
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithClock sets the source of "now" used for streaks, trends and LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLocation sets the time zone calendar days and weeks are cut in.
func WithLocation(loc *time.Location) Option {
	return func(c *Calculator) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithDeckSubjects maps quiz deck IDs to subjects. Quizzes on unmapped decks
// fall back to the deck title.
func WithDeckSubjects(m map[string]string) Option {
	return func(c *Calculator) {
		c.deckSubjects = make(map[string]string, len(m))
		for k, v := range m {
			c.deckSubjects[k] = v
		}
	}
}

// WithRecentScoreWindow bounds SubjectPerformance.RecentScores.
func WithRecentScoreWindow(n int) Option {
	return func(c *Calculator) {
		if n > 0 {
			c.recentScoreWindow = n
		}
	}
}

// WithTrendThreshold sets the accuracy delta (0-1) beyond which a trend is
// improving or declining rather than stable.
func WithTrendThreshold(t float64) Option {
	return func(c *Calculator) {
		if t >= 0 {
			c.trendThreshold = t
		}
	}
}

// NewCalculator creates a Calculator with the given options.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		now:               time.Now,
		loc:               time.Local,
		deckSubjects:      map[string]string{},
		recentScoreWindow: DefaultRecentScoreWindow,
		trendThreshold:    DefaultTrendThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CalculateUserAnalytics computes a snapshot from a user's full history.
// Reviews are accepted for future scoring and do not affect the result.
// The function is total: degenerate input yields zero values, never an error.
func (c *Calculator) CalculateUserAnalytics(
	userID string,
	sessions []models.StudySession,
	quizSessions []models.QuizSession,
	reviews []models.ReviewRecord,
) models.StudyAnalytics {
	acc := c.newAccumulator(userID, nil)

	for _, s := range sessions {
		acc.addSession(s)
	}

	// Quizzes are folded oldest first so RecentScores ends with the newest.
	quizzes := make([]models.QuizSession, len(quizSessions))
	copy(quizzes, quizSessions)
	sort.SliceStable(quizzes, func(i, j int) bool {
		return quizzes[i].FinishedAt().Before(quizzes[j].FinishedAt())
	})
	for _, q := range quizzes {
		acc.addQuiz(q)
	}

	return acc.finish()
}

// UpdateAnalyticsWithSession folds one more session into a snapshot without
// the full history. previous is not modified.
func (c *Calculator) UpdateAnalyticsWithSession(previous models.StudyAnalytics, session models.StudySession) models.StudyAnalytics {
	userID := previous.UserID
	if userID == "" {
		userID = session.UserID
	}
	acc := c.newAccumulator(userID, &previous)
	acc.addSession(session)
	return acc.finish()
}

// UpdateAnalyticsWithQuiz folds one more quiz into a snapshot. Because quiz
// scores are kept newest last, a quiz that finished before ones already in
// the snapshot lands at the end of RecentScores; use a full recompute when
// back-filling old quizzes.
func (c *Calculator) UpdateAnalyticsWithQuiz(previous models.StudyAnalytics, quiz models.QuizSession) models.StudyAnalytics {
	userID := previous.UserID
	if userID == "" {
		userID = quiz.UserID
	}
	acc := c.newAccumulator(userID, &previous)
	acc.addQuiz(quiz)
	return acc.finish()
}

// Refresh re-derives the fields that depend on the current day (streaks,
// the four-week trend window, LastUpdated) without adding history. The result
// equals a full recompute over the same history at the calculator's now.
func (c *Calculator) Refresh(previous models.StudyAnalytics) models.StudyAnalytics {
	return c.newAccumulator(previous.UserID, &previous).finish()
}

// IsStale reports whether previous was computed on an earlier calendar day
// than now, in the calculator's zone.
func (c *Calculator) IsStale(previous models.StudyAnalytics) bool {
	last := civilDate(previous.LastUpdated.In(c.loc))
	today := civilDate(c.now().In(c.loc))
	return last.Before(today)
}

func (c *Calculator) subjectForQuiz(q models.QuizSession) string {
	if s, ok := c.deckSubjects[q.DeckID]; ok && s != "" {
		return s
	}
	if q.DeckTitle != "" {
		return q.DeckTitle
	}
	return UncategorizedSubject
}

func subjectForSession(s models.StudySession) string {
	if s.Subject == "" {
		return UncategorizedSubject
	}
	return s.Subject
}
