package analytics

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/studypals/studypals/internal/models"
)

// fastAnswerMs is the response time under which a wrong answer counts as
// rushed.
const fastAnswerMs = 3000

// accumulator holds the additive state of a snapshot while sessions and
// quizzes are folded in. finish derives every ratio from it.
type accumulator struct {
	calc  *Calculator
	now   time.Time
	state models.StudyAnalytics
	dates map[string]struct{}
	weeks []time.Time
}

// newAccumulator starts from previous (deep-copied) or from an empty
// snapshot.
func (c *Calculator) newAccumulator(userID string, previous *models.StudyAnalytics) *accumulator {
	now := c.now()
	acc := &accumulator{
		calc:  c,
		now:   now,
		dates: map[string]struct{}{},
		weeks: weekStarts(now, c.loc),
	}

	if previous == nil {
		acc.state = emptySnapshot(userID)
	} else {
		acc.state = cloneSnapshot(*previous)
		acc.state.UserID = userID
		for _, d := range previous.StudyDates {
			acc.dates[d] = struct{}{}
		}
	}
	acc.state.RecentTrend.WeeklyData = acc.alignWeeks(acc.state.RecentTrend.WeeklyData)
	return acc
}

func emptySnapshot(userID string) models.StudyAnalytics {
	return models.StudyAnalytics{
		UserID:             userID,
		SubjectPerformance: map[string]models.SubjectPerformance{},
		LearningPatterns: models.LearningPatterns{
			PreferredStudyHours:        map[string]int{},
			LearningStyleEffectiveness: map[string]float64{},
			TopicInterest:              map[string]float64{},
			CommonMistakePatterns:      []string{},
			StyleCounts:                map[string]models.AnswerTally{},
			MistakeProfile: models.MistakeProfile{
				IncorrectBySubject: map[string]int{},
				IncorrectByCard:    map[string]int{},
			},
		},
		RecentTrend: models.PerformanceTrend{
			Direction:     models.TrendStable,
			WeeksAnalyzed: models.WeeksAnalyzed,
		},
		StudyDates: []string{},
	}
}

// alignWeeks re-anchors weekly tallies from a previous snapshot onto the
// current four-week window. Weeks that slid out of the window are dropped.
func (a *accumulator) alignWeeks(previous []models.WeekStat) []models.WeekStat {
	out := make([]models.WeekStat, len(a.weeks))
	for i, start := range a.weeks {
		out[i] = models.WeekStat{WeekStart: start}
		for _, prev := range previous {
			if sameDate(prev.WeekStart.In(a.calc.loc), start) {
				out[i].CardsStudied = prev.CardsStudied
				out[i].AnsweredCount = prev.AnsweredCount
				out[i].CorrectCount = prev.CorrectCount
				break
			}
		}
	}
	return out
}

func (a *accumulator) subject(name string) models.SubjectPerformance {
	perf, ok := a.state.SubjectPerformance[name]
	if !ok {
		perf = models.SubjectPerformance{
			Subject:             name,
			RecentScores:        []float64{},
			DifficultyBreakdown: map[models.DifficultyBucket]int{},
		}
	}
	return perf
}

func (a *accumulator) addSession(s models.StudySession) {
	name := subjectForSession(s)
	perf := a.subject(name)
	patterns := &a.state.LearningPatterns
	style := s.LearningStyle()

	minutes := s.DurationMinutes()
	a.state.SessionCount++
	a.state.TotalStudyTime += minutes
	perf.SessionCount++
	perf.StudyTimeMinutes += minutes
	if last := s.LastActive(); last.After(perf.LastStudied) {
		perf.LastStudied = last
	}

	start := s.StartTime.In(a.calc.loc)
	patterns.PreferredStudyHours[strconv.Itoa(start.Hour())]++
	a.dates[start.Format(models.DateLayout)] = struct{}{}

	var tally models.AnswerTally
	if style != "" {
		tally = patterns.StyleCounts[style]
	}

	for _, act := range s.Activities {
		ts := act.Timestamp
		if ts.IsZero() {
			ts = s.StartTime
		}
		week := a.weekIndex(ts)

		switch act.Type {
		case models.ActivityCardView:
			a.state.TotalCardsStudied++
			perf.TotalCards++
			if rating, ok := s.CardDifficulty(act.CardID); ok {
				perf.DifficultyBreakdown[models.BucketForRating(rating)]++
			}
			if week >= 0 {
				a.state.RecentTrend.WeeklyData[week].CardsStudied++
			}

		case models.ActivityAnswer:
			correct := act.IsCorrectAnswer()
			a.state.AnsweredCount++
			perf.AnsweredCount++
			tally.Answered++
			if correct {
				a.state.CorrectCount++
				perf.CorrectCount++
				tally.Correct++
			}
			if act.ResponseTimeMs != nil && *act.ResponseTimeMs >= 0 {
				perf.ResponseTimeTotalMs += int64(*act.ResponseTimeMs)
				perf.ResponseSamples++
			}
			if week >= 0 {
				a.state.RecentTrend.WeeklyData[week].AnsweredCount++
				if correct {
					a.state.RecentTrend.WeeklyData[week].CorrectCount++
				}
			}
			if act.IsIncorrectAnswer() {
				a.recordMistake(s, act, name)
			}
		}
	}

	if style != "" {
		patterns.StyleCounts[style] = tally
	}
	a.state.SubjectPerformance[name] = perf
}

func (a *accumulator) recordMistake(s models.StudySession, act models.SessionActivity, subject string) {
	mp := &a.state.LearningPatterns.MistakeProfile
	mp.Incorrect++
	mp.IncorrectBySubject[subject]++
	if act.CardID != "" {
		mp.IncorrectByCard[act.CardID]++
	}
	if rating, ok := s.CardDifficulty(act.CardID); ok && models.BucketForRating(rating) == models.DifficultyHard {
		mp.IncorrectOnHard++
	}
	if act.ResponseTimeMs != nil && *act.ResponseTimeMs < fastAnswerMs {
		mp.IncorrectFast++
	}
}

// addQuiz counts completed quizzes only; in-progress attempts have no score.
func (a *accumulator) addQuiz(q models.QuizSession) {
	if !q.IsCompleted {
		return
	}
	name := a.calc.subjectForQuiz(q)
	perf := a.subject(name)

	a.state.TotalQuizzesTaken++
	perf.TotalQuizzes++
	perf.AnsweredCount += len(q.Answers)
	perf.CorrectCount += q.CorrectCount()
	if finished := q.FinishedAt(); finished.After(perf.LastStudied) {
		perf.LastStudied = finished
	}

	perf.RecentScores = append(perf.RecentScores, clamp01(q.FinalScore))
	if window := a.calc.recentScoreWindow; len(perf.RecentScores) > window {
		perf.RecentScores = perf.RecentScores[len(perf.RecentScores)-window:]
	}

	a.state.SubjectPerformance[name] = perf
}

func (a *accumulator) weekIndex(ts time.Time) int {
	local := ts.In(a.calc.loc)
	for i, start := range a.weeks {
		if !local.Before(start) && local.Before(start.AddDate(0, 0, 7)) {
			return i
		}
	}
	return -1
}

// finish derives ratios, streaks, patterns and the trend from the
// accumulated counters.
func (a *accumulator) finish() models.StudyAnalytics {
	out := a.state
	out.LastUpdated = a.now
	out.OverallAccuracy = ratio(out.CorrectCount, out.AnsweredCount)

	for name, perf := range out.SubjectPerformance {
		perf.Accuracy = ratio(perf.CorrectCount, perf.AnsweredCount)
		perf.AverageResponseTime = 0
		if perf.ResponseSamples > 0 {
			perf.AverageResponseTime = float64(perf.ResponseTimeTotalMs) / float64(perf.ResponseSamples) / 1000
		}
		out.SubjectPerformance[name] = perf
	}

	out.StudyDates = sortedDates(a.dates)
	out.CurrentStreak, out.LongestStreak = streaks(out.StudyDates, a.now, a.calc.loc)

	a.finishPatterns(&out)
	out.RecentTrend = buildTrend(out.RecentTrend.WeeklyData, a.calc.trendThreshold)
	return out
}

func (a *accumulator) finishPatterns(out *models.StudyAnalytics) {
	lp := &out.LearningPatterns

	lp.LearningStyleEffectiveness = make(map[string]float64, len(lp.StyleCounts))
	for style, tally := range lp.StyleCounts {
		lp.LearningStyleEffectiveness[style] = tally.Accuracy()
	}

	lp.AverageSessionLength = 0
	lp.PreferredCardsPerSession = 0
	if out.SessionCount > 0 {
		lp.AverageSessionLength = float64(out.TotalStudyTime) / float64(out.SessionCount)
		lp.PreferredCardsPerSession = int(math.Round(float64(out.TotalCardsStudied) / float64(out.SessionCount)))
	}

	// Share of all sessions spent on the subject: more sessions, more interest.
	lp.TopicInterest = map[string]float64{}
	for name, perf := range out.SubjectPerformance {
		if perf.SessionCount > 0 && out.SessionCount > 0 {
			lp.TopicInterest[name] = float64(perf.SessionCount) / float64(out.SessionCount)
		}
	}

	lp.CommonMistakePatterns = mistakePatterns(lp.MistakeProfile)
}

func ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return clamp01(float64(num) / float64(den))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func sortedDates(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func cloneSnapshot(in models.StudyAnalytics) models.StudyAnalytics {
	out := in

	out.SubjectPerformance = make(map[string]models.SubjectPerformance, len(in.SubjectPerformance))
	for name, perf := range in.SubjectPerformance {
		perf.RecentScores = append([]float64{}, perf.RecentScores...)
		perf.DifficultyBreakdown = copyMap(perf.DifficultyBreakdown)
		out.SubjectPerformance[name] = perf
	}

	lp := in.LearningPatterns
	out.LearningPatterns = models.LearningPatterns{
		PreferredStudyHours:        copyMap(lp.PreferredStudyHours),
		LearningStyleEffectiveness: copyMap(lp.LearningStyleEffectiveness),
		AverageSessionLength:       lp.AverageSessionLength,
		PreferredCardsPerSession:   lp.PreferredCardsPerSession,
		TopicInterest:              copyMap(lp.TopicInterest),
		CommonMistakePatterns:      append([]string{}, lp.CommonMistakePatterns...),
		StyleCounts:                copyMap(lp.StyleCounts),
		MistakeProfile: models.MistakeProfile{
			Incorrect:          lp.MistakeProfile.Incorrect,
			IncorrectOnHard:    lp.MistakeProfile.IncorrectOnHard,
			IncorrectFast:      lp.MistakeProfile.IncorrectFast,
			IncorrectBySubject: copyMap(lp.MistakeProfile.IncorrectBySubject),
			IncorrectByCard:    copyMap(lp.MistakeProfile.IncorrectByCard),
		},
	}

	out.RecentTrend.WeeklyData = append([]models.WeekStat{}, in.RecentTrend.WeeklyData...)
	out.StudyDates = append([]string{}, in.StudyDates...)
	return out
}

// copyMap never returns nil.
func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
