package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studypals/studypals/internal/analytics"
	"github.com/studypals/studypals/internal/models"
)

// Thursday afternoon; the current week opens on Monday 2024-03-11.
var fixedNow = time.Date(2024, 3, 14, 15, 0, 0, 0, time.UTC)

func newCalculator(opts ...analytics.Option) *analytics.Calculator {
	base := []analytics.Option{
		analytics.WithClock(func() time.Time { return fixedNow }),
		analytics.WithLocation(time.UTC),
	}
	return analytics.NewCalculator(append(base, opts...)...)
}

func day(offset int, hour int) time.Time {
	return time.Date(2024, 3, 14+offset, hour, 0, 0, 0, time.UTC)
}

func session(id, subject string, start time.Time, minutes int, acts ...models.SessionActivity) models.StudySession {
	for i := range acts {
		acts[i].Timestamp = start.Add(time.Duration(i) * time.Minute)
	}
	return models.StudySession{
		ID:         id,
		UserID:     "u1",
		DeckID:     "deck-" + subject,
		Subject:    subject,
		StartTime:  start,
		EndTime:    start.Add(time.Duration(minutes) * time.Minute),
		Activities: acts,
		Metadata:   map[string]any{},
	}
}

func view(card string) models.SessionActivity {
	return models.SessionActivity{Type: models.ActivityCardView, CardID: card, Data: map[string]any{}}
}

func answer(card string, correct bool) models.SessionActivity {
	return models.SessionActivity{Type: models.ActivityAnswer, CardID: card, WasCorrect: &correct, Data: map[string]any{}}
}

func timedAnswer(card string, correct bool, ms int) models.SessionActivity {
	a := answer(card, correct)
	a.ResponseTimeMs = &ms
	return a
}

func quiz(id, deck string, finished time.Time, score float64, correct ...bool) models.QuizSession {
	end := finished
	q := models.QuizSession{
		ID:          id,
		UserID:      "u1",
		DeckID:      deck,
		DeckTitle:   deck,
		CardIDs:     []string{},
		StartTime:   finished.Add(-10 * time.Minute),
		EndTime:     &end,
		IsCompleted: true,
		FinalScore:  score,
		Answers:     []models.QuizAnswer{},
	}
	for i, c := range correct {
		q.Answers = append(q.Answers, models.QuizAnswer{CardID: id + "-" + string(rune('a'+i)), IsCorrect: c, AnsweredAt: finished})
	}
	return q
}

// twoSubjectHistory is four sessions on the four days up to today.
func twoSubjectHistory() []models.StudySession {
	return []models.StudySession{
		session("m1", "Mathematics", day(0, 10), 90,
			view("c1"), view("c2"), answer("c1", true), answer("c2", true)),
		session("m2", "Mathematics", day(-2, 10), 120,
			view("c3"), view("c4"), answer("c3", true), answer("c4", false)),
		session("s1", "Science", day(-1, 10), 60,
			view("s1"), answer("s1", true)),
		session("s2", "Science", day(-3, 10), 60,
			view("s2"), answer("s2", true)),
	}
}

func TestCalculateUserAnalytics_WorkedExample(t *testing.T) {
	got := newCalculator().CalculateUserAnalytics("u1", twoSubjectHistory(), nil, nil)

	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, fixedNow, got.LastUpdated)
	assert.Equal(t, 330, got.TotalStudyTime, "total minutes across sessions")
	assert.Equal(t, 6, got.TotalCardsStudied)
	assert.Equal(t, 0, got.TotalQuizzesTaken)
	assert.InDelta(t, 5.0/6.0, got.OverallAccuracy, 1e-9)
	assert.Equal(t, 4, got.CurrentStreak)
	assert.Equal(t, 4, got.LongestStreak)

	require.Len(t, got.SubjectPerformance, 2)
	math := got.SubjectPerformance["Mathematics"]
	assert.Equal(t, "Mathematics", math.Subject)
	assert.Equal(t, 210, math.StudyTimeMinutes)
	assert.Equal(t, 4, math.TotalCards)
	assert.InDelta(t, 0.75, math.Accuracy, 1e-9)
	assert.Equal(t, day(0, 10).Add(90*time.Minute), math.LastStudied)

	science := got.SubjectPerformance["Science"]
	assert.Equal(t, 120, science.StudyTimeMinutes)
	assert.Equal(t, 2, science.TotalCards)
	assert.InDelta(t, 1.0, science.Accuracy, 1e-9)

	lp := got.LearningPatterns
	assert.Equal(t, map[string]int{"10": 4}, lp.PreferredStudyHours)
	assert.InDelta(t, 82.5, lp.AverageSessionLength, 1e-9)
	assert.Equal(t, 2, lp.PreferredCardsPerSession)
	assert.InDelta(t, 0.5, lp.TopicInterest["Mathematics"], 1e-9)
	assert.InDelta(t, 0.5, lp.TopicInterest["Science"], 1e-9)
	assert.Empty(t, lp.CommonMistakePatterns)

	assert.Equal(t, models.LevelAdvanced, got.PerformanceLevel())
	assert.Equal(t, []string{"Science"}, got.StrongSubjects())
	assert.Empty(t, got.StrugglingSubjects())
}

func TestCalculateUserAnalytics_EmptyHistory(t *testing.T) {
	got := newCalculator().CalculateUserAnalytics("u1", nil, nil, nil)

	assert.Equal(t, "u1", got.UserID)
	assert.Zero(t, got.OverallAccuracy)
	assert.Zero(t, got.TotalStudyTime)
	assert.Zero(t, got.TotalCardsStudied)
	assert.Zero(t, got.CurrentStreak)
	assert.Zero(t, got.LongestStreak)
	assert.NotNil(t, got.SubjectPerformance)
	assert.Empty(t, got.SubjectPerformance)
	assert.NotNil(t, got.LearningPatterns.CommonMistakePatterns)
	assert.Equal(t, models.TrendStable, got.RecentTrend.Direction)
	assert.Zero(t, got.RecentTrend.ChangeRate)
	assert.Equal(t, models.WeeksAnalyzed, got.RecentTrend.WeeksAnalyzed)
	assert.Len(t, got.RecentTrend.WeeklyData, models.WeeksAnalyzed)
	assert.Equal(t, models.LevelBeginner, got.PerformanceLevel())
}

func TestCalculateUserAnalytics_SubjectIsolation(t *testing.T) {
	calc := newCalculator()
	history := twoSubjectHistory()
	before := calc.CalculateUserAnalytics("u1", history, nil, nil)

	extra := session("m3", "Mathematics", day(0, 12), 30,
		view("c5"), answer("c5", false), answer("c5", false))
	after := calc.CalculateUserAnalytics("u1", append(history, extra), nil, nil)

	assert.Equal(t, before.SubjectPerformance["Science"].Accuracy, after.SubjectPerformance["Science"].Accuracy)
	assert.Equal(t, before.SubjectPerformance["Science"].TotalCards, after.SubjectPerformance["Science"].TotalCards)
	assert.Less(t, after.SubjectPerformance["Mathematics"].Accuracy, before.SubjectPerformance["Mathematics"].Accuracy)
}

func TestCalculateUserAnalytics_IsDeterministic(t *testing.T) {
	calc := newCalculator()
	history := twoSubjectHistory()
	quizzes := []models.QuizSession{quiz("q1", "Science", day(-1, 18), 0.8, true, false)}

	first := calc.CalculateUserAnalytics("u1", history, quizzes, nil)
	second := calc.CalculateUserAnalytics("u1", history, quizzes, nil)

	assert.Equal(t, first, second)
}

func TestCalculateUserAnalytics_DoesNotMutateInput(t *testing.T) {
	history := twoSubjectHistory()
	quizzes := []models.QuizSession{
		quiz("q2", "Science", day(-1, 18), 0.5),
		quiz("q1", "Science", day(-2, 18), 0.9),
	}

	newCalculator().CalculateUserAnalytics("u1", history, quizzes, nil)

	assert.Equal(t, twoSubjectHistory(), history)
	assert.Equal(t, "q2", quizzes[0].ID, "quiz slice order must be preserved")
}

func TestCalculateUserAnalytics_NegativeDurationClampsToZero(t *testing.T) {
	s := session("x", "History", day(0, 10), 0, view("h1"))
	s.EndTime = s.StartTime.Add(-45 * time.Minute)

	got := newCalculator().CalculateUserAnalytics("u1", []models.StudySession{s}, nil, nil)

	assert.Zero(t, got.TotalStudyTime)
	assert.Zero(t, got.SubjectPerformance["History"].StudyTimeMinutes)
	assert.Equal(t, s.StartTime, got.SubjectPerformance["History"].LastStudied)
}

func TestCalculateUserAnalytics_DifficultyBreakdown(t *testing.T) {
	s := session("d", "Chemistry", day(0, 9), 20,
		view("e1"), view("e2"), view("m1"), view("h1"), view("h2"), view("unrated"), view("h1"))
	s.Metadata[models.MetaDifficultyRatings] = map[string]any{
		"e1": 1.0, "e2": 2.0, "m1": 3.0, "h1": 4.0, "h2": 5.0, "bogus": 9.0,
	}

	got := newCalculator().CalculateUserAnalytics("u1", []models.StudySession{s}, nil, nil)

	perf := got.SubjectPerformance["Chemistry"]
	assert.Equal(t, 7, perf.TotalCards, "every view counts, rated or not")
	assert.Equal(t, map[models.DifficultyBucket]int{
		models.DifficultyEasy:     2,
		models.DifficultyModerate: 1,
		models.DifficultyHard:     3,
	}, perf.DifficultyBreakdown)
}

func TestCalculateUserAnalytics_ResponseTimeInSeconds(t *testing.T) {
	s := session("r", "Biology", day(0, 9), 10,
		timedAnswer("b1", true, 2000), timedAnswer("b2", true, 4000), answer("b3", true))

	got := newCalculator().CalculateUserAnalytics("u1", []models.StudySession{s}, nil, nil)

	assert.InDelta(t, 3.0, got.SubjectPerformance["Biology"].AverageResponseTime, 1e-9)
}

func TestCalculateUserAnalytics_UnknownActivityTypesIgnored(t *testing.T) {
	s := session("u", "Art", day(0, 9), 10,
		models.SessionActivity{Type: models.ActivityFlip, CardID: "a1"},
		models.SessionActivity{Type: "doodle", CardID: "a1"},
		models.SessionActivity{Type: models.ActivityHint, CardID: "a1"})

	got := newCalculator().CalculateUserAnalytics("u1", []models.StudySession{s}, nil, nil)

	assert.Zero(t, got.TotalCardsStudied)
	assert.Zero(t, got.OverallAccuracy)
	assert.Equal(t, 10, got.TotalStudyTime)
}

func TestCalculateUserAnalytics_AnswerWithoutVerdict(t *testing.T) {
	s := session("v", "Art", day(0, 9), 10,
		answer("a1", true),
		models.SessionActivity{Type: models.ActivityAnswer, CardID: "a2"})

	got := newCalculator().CalculateUserAnalytics("u1", []models.StudySession{s}, nil, nil)

	assert.InDelta(t, 0.5, got.OverallAccuracy, 1e-9, "answers without a verdict are not correct")
	assert.Zero(t, got.LearningPatterns.MistakeProfile.Incorrect, "nor are they mistakes")
}

func TestCalculateUserAnalytics_Quizzes(t *testing.T) {
	calc := newCalculator(analytics.WithDeckSubjects(map[string]string{"deck-physics": "Physics"}))

	inProgress := quiz("q0", "deck-physics", day(0, 8), 0.1, false)
	inProgress.IsCompleted = false
	inProgress.EndTime = nil

	quizzes := []models.QuizSession{
		quiz("q2", "deck-physics", day(-1, 8), 1.0, true, true),
		quiz("q1", "deck-physics", day(-2, 8), 0.5, true, false),
		quiz("q3", "Geography", day(-1, 9), 0.0, false),
		inProgress,
	}

	got := calc.CalculateUserAnalytics("u1", nil, quizzes, nil)

	assert.Equal(t, 3, got.TotalQuizzesTaken)
	physics := got.SubjectPerformance["Physics"]
	assert.Equal(t, 2, physics.TotalQuizzes)
	assert.Equal(t, []float64{0.5, 1.0}, physics.RecentScores, "scores are oldest first")
	assert.InDelta(t, 0.75, physics.Accuracy, 1e-9)
	assert.Equal(t, day(-1, 8), physics.LastStudied)

	geo := got.SubjectPerformance["Geography"]
	assert.Equal(t, 1, geo.TotalQuizzes, "unmapped decks fall back to the deck title")

	assert.Zero(t, got.OverallAccuracy, "quiz answers do not feed overall accuracy")
	assert.Zero(t, got.CurrentStreak, "quizzes are not study days")
}

func TestCalculateUserAnalytics_RecentScoresWindow(t *testing.T) {
	calc := newCalculator(analytics.WithRecentScoreWindow(3))
	var quizzes []models.QuizSession
	for i := 0; i < 6; i++ {
		quizzes = append(quizzes, quiz("q", "Latin", day(-6+i, 12), float64(i)/10))
	}

	got := calc.CalculateUserAnalytics("u1", nil, quizzes, nil)

	assert.Equal(t, []float64{0.3, 0.4, 0.5}, got.SubjectPerformance["Latin"].RecentScores)
	assert.Equal(t, 6, got.SubjectPerformance["Latin"].TotalQuizzes)
}

func TestCalculateUserAnalytics_LearningStyleEffectiveness(t *testing.T) {
	visual := session("v", "Art", day(0, 9), 10, answer("a", true), answer("b", true))
	visual.Metadata[models.MetaLearningStyle] = "visual"
	audio := session("a", "Art", day(-1, 9), 10, answer("c", true), answer("d", false))
	audio.Metadata[models.MetaLearningStyle] = "auditory"
	quiet := session("q", "Art", day(-2, 9), 10, view("e"))
	quiet.Metadata[models.MetaLearningStyle] = "reading"

	got := newCalculator().CalculateUserAnalytics("u1", []models.StudySession{visual, audio, quiet}, nil, nil)

	assert.Equal(t, map[string]float64{
		"visual":   1.0,
		"auditory": 0.5,
		"reading":  0.0,
	}, got.LearningPatterns.LearningStyleEffectiveness)
}

func TestCalculateUserAnalytics_MistakePatterns(t *testing.T) {
	s := session("w", "Mathematics", day(0, 9), 15,
		timedAnswer("h1", false, 1200),
		timedAnswer("h1", false, 900),
		timedAnswer("h2", false, 1500),
		answer("e1", true))
	s.Metadata[models.MetaDifficultyRatings] = map[string]any{"h1": 5, "h2": 4, "e1": 1}
	other := session("o", "Science", day(0, 11), 15, answer("s1", false))

	got := newCalculator().CalculateUserAnalytics("u1", []models.StudySession{s, other}, nil, nil)

	assert.Equal(t, []string{
		analytics.PatternHardCards,
		analytics.PatternRepeatedCard,
		analytics.PatternRushed,
		analytics.PatternSubjectPrefix + "Mathematics",
	}, got.LearningPatterns.CommonMistakePatterns)
}

func TestCalculateUserAnalytics_SubjectPatternNeedsMissesInTwoSubjects(t *testing.T) {
	s := session("w", "Mathematics", day(0, 9), 15,
		answer("m1", false), answer("m2", false), answer("m3", false))
	clean := session("o", "Science", day(0, 11), 15, answer("s1", true))
	quizOnly := quiz("q1", "History", day(0, 12), 0.5, true, false)

	got := newCalculator().CalculateUserAnalytics("u1",
		[]models.StudySession{s, clean}, []models.QuizSession{quizOnly}, nil)

	require.Len(t, got.SubjectPerformance, 3)
	for _, p := range got.LearningPatterns.CommonMistakePatterns {
		assert.NotContains(t, p, analytics.PatternSubjectPrefix)
	}
}

func TestCalculateUserAnalytics_TooFewMistakesForPatterns(t *testing.T) {
	s := session("w", "Mathematics", day(0, 9), 15,
		timedAnswer("h1", false, 100), timedAnswer("h1", false, 100))

	got := newCalculator().CalculateUserAnalytics("u1", []models.StudySession{s}, nil, nil)

	assert.Empty(t, got.LearningPatterns.CommonMistakePatterns)
}

func TestCalculateUserAnalytics_EmptySubjectIsUncategorized(t *testing.T) {
	s := session("n", "", day(0, 9), 5, view("x"))

	got := newCalculator().CalculateUserAnalytics("u1", []models.StudySession{s}, nil, nil)

	assert.Contains(t, got.SubjectPerformance, analytics.UncategorizedSubject)
}

func TestCalculateUserAnalytics_Bounds(t *testing.T) {
	history := append(twoSubjectHistory(),
		session("old", "History", time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC), 30, answer("z", false)),
		session("future", "History", day(3, 10), 30, answer("z", true)),
	)

	got := newCalculator().CalculateUserAnalytics("u1", history, nil, nil)

	assert.GreaterOrEqual(t, got.OverallAccuracy, 0.0)
	assert.LessOrEqual(t, got.OverallAccuracy, 1.0)
	for _, perf := range got.SubjectPerformance {
		assert.GreaterOrEqual(t, perf.Accuracy, 0.0)
		assert.LessOrEqual(t, perf.Accuracy, 1.0)
	}
	assert.GreaterOrEqual(t, got.CurrentStreak, 0)
	assert.GreaterOrEqual(t, got.LongestStreak, got.CurrentStreak)
}

func TestCalculateUserAnalytics_LocationDecidesStudyDay(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 20:00 UTC on the 13th is already the 14th in Tokyo.
	s := session("t", "Japanese", time.Date(2024, 3, 13, 20, 0, 0, 0, time.UTC), 20, view("k"))

	utc := newCalculator().CalculateUserAnalytics("u1", []models.StudySession{s}, nil, nil)
	local := newCalculator(analytics.WithLocation(tokyo)).CalculateUserAnalytics("u1", []models.StudySession{s}, nil, nil)

	assert.Equal(t, []string{"2024-03-13"}, utc.StudyDates)
	assert.Equal(t, []string{"2024-03-14"}, local.StudyDates)
	assert.Equal(t, map[string]int{"5": 1}, local.LearningPatterns.PreferredStudyHours)
}
