package models

import (
	"sort"
	"time"
)

// TrendDirection summarises how accuracy moved across the analysed weeks.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// DifficultyBucket groups 1-5 card difficulty ratings.
type DifficultyBucket string

const (
	DifficultyEasy     DifficultyBucket = "easy"
	DifficultyModerate DifficultyBucket = "moderate"
	DifficultyHard     DifficultyBucket = "hard"
)

// BucketForRating maps a 1-5 rating to its bucket: 1-2 easy, 3 moderate,
// 4-5 hard.
func BucketForRating(rating int) DifficultyBucket {
	switch {
	case rating <= 2:
		return DifficultyEasy
	case rating == 3:
		return DifficultyModerate
	default:
		return DifficultyHard
	}
}

// PerformanceLevel is the coarse tier derived from overall accuracy.
type PerformanceLevel string

const (
	LevelBeginner     PerformanceLevel = "beginner"
	LevelIntermediate PerformanceLevel = "intermediate"
	LevelAdvanced     PerformanceLevel = "advanced"
)

// RecommendedDifficulty is the difficulty suggested for new material.
type RecommendedDifficulty string

const (
	RecommendEasy        RecommendedDifficulty = "easy"
	RecommendModerate    RecommendedDifficulty = "moderate"
	RecommendChallenging RecommendedDifficulty = "challenging"
)

// WeeksAnalyzed is the fixed length of PerformanceTrend.WeeklyData.
const WeeksAnalyzed = 4

// DateLayout formats the calendar dates kept in StudyAnalytics.StudyDates.
const DateLayout = "2006-01-02"

// StudyAnalytics is an immutable summary of one user's study history.
//
// SessionCount, AnsweredCount, CorrectCount and StudyDates are retained so a
// snapshot can absorb one more session without the full history.
type StudyAnalytics struct {
	UserID             string                        `json:"userId"`
	LastUpdated        time.Time                     `json:"lastUpdated"`
	OverallAccuracy    float64                       `json:"overallAccuracy"`
	TotalStudyTime     int                           `json:"totalStudyTime"`
	TotalCardsStudied  int                           `json:"totalCardsStudied"`
	TotalQuizzesTaken  int                           `json:"totalQuizzesTaken"`
	CurrentStreak      int                           `json:"currentStreak"`
	LongestStreak      int                           `json:"longestStreak"`
	SubjectPerformance map[string]SubjectPerformance `json:"subjectPerformance"`
	LearningPatterns   LearningPatterns              `json:"learningPatterns"`
	RecentTrend        PerformanceTrend              `json:"recentTrend"`

	SessionCount  int      `json:"sessionCount"`
	AnsweredCount int      `json:"answeredCount"`
	CorrectCount  int      `json:"correctCount"`
	StudyDates    []string `json:"studyDates"`
}

// SubjectPerformance is the per-subject rollup. Accuracy covers session
// answers and quiz answers for the subject.
type SubjectPerformance struct {
	Subject             string                   `json:"subject"`
	Accuracy            float64                  `json:"accuracy"`
	TotalCards          int                      `json:"totalCards"`
	TotalQuizzes        int                      `json:"totalQuizzes"`
	StudyTimeMinutes    int                      `json:"studyTimeMinutes"`
	LastStudied         time.Time                `json:"lastStudied"`
	RecentScores        []float64                `json:"recentScores"`
	DifficultyBreakdown map[DifficultyBucket]int `json:"difficultyBreakdown"`
	AverageResponseTime float64                  `json:"averageResponseTime"`

	SessionCount        int   `json:"sessionCount"`
	AnsweredCount       int   `json:"answeredCount"`
	CorrectCount        int   `json:"correctCount"`
	ResponseTimeTotalMs int64 `json:"responseTimeTotalMs"`
	ResponseSamples     int   `json:"responseSamples"`
}

// AnswerTally counts answers and how many of them were correct.
type AnswerTally struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

// Accuracy is Correct/Answered, or 0 without answers.
func (t AnswerTally) Accuracy() float64 {
	if t.Answered == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Answered)
}

// MistakeProfile tallies incorrect answers for the mistake heuristics.
type MistakeProfile struct {
	Incorrect          int            `json:"incorrect"`
	IncorrectOnHard    int            `json:"incorrectOnHard"`
	IncorrectFast      int            `json:"incorrectFast"`
	IncorrectBySubject map[string]int `json:"incorrectBySubject"`
	IncorrectByCard    map[string]int `json:"incorrectByCard"`
}

type LearningPatterns struct {
	PreferredStudyHours        map[string]int     `json:"preferredStudyHours"`
	LearningStyleEffectiveness map[string]float64 `json:"learningStyleEffectiveness"`
	AverageSessionLength       float64            `json:"averageSessionLength"`
	PreferredCardsPerSession   int                `json:"preferredCardsPerSession"`
	TopicInterest              map[string]float64 `json:"topicInterest"`
	CommonMistakePatterns      []string           `json:"commonMistakePatterns"`

	StyleCounts    map[string]AnswerTally `json:"styleCounts"`
	MistakeProfile MistakeProfile         `json:"mistakeProfile"`
}

type PerformanceTrend struct {
	Direction     TrendDirection `json:"direction"`
	ChangeRate    float64        `json:"changeRate"`
	WeeksAnalyzed int            `json:"weeksAnalyzed"`
	WeeklyData    []WeekStat     `json:"weeklyData"`
}

// WeekStat covers the calendar week opening on WeekStart (a Monday).
type WeekStat struct {
	WeekStart       time.Time `json:"weekStart"`
	CardsStudied    int       `json:"cardsStudied"`
	AverageAccuracy float64   `json:"averageAccuracy"`
	AnsweredCount   int       `json:"answeredCount"`
	CorrectCount    int       `json:"correctCount"`
}

// Thresholds for the derived views.
const (
	BeginnerBelow     = 0.5
	IntermediateBelow = 0.75

	StrongAtLeast   = 0.85
	StrugglingBelow = 0.70

	ChallengingAtLeast = 0.85
	ModerateAtLeast    = 0.60
)

// PerformanceLevel tiers the snapshot by overall accuracy.
func (a StudyAnalytics) PerformanceLevel() PerformanceLevel {
	switch {
	case a.OverallAccuracy < BeginnerBelow:
		return LevelBeginner
	case a.OverallAccuracy < IntermediateBelow:
		return LevelIntermediate
	default:
		return LevelAdvanced
	}
}

// StrongSubjects lists, sorted, the answered subjects at or above
// StrongAtLeast accuracy.
func (a StudyAnalytics) StrongSubjects() []string {
	return a.subjectsWhere(func(p SubjectPerformance) bool {
		return p.Accuracy >= StrongAtLeast
	})
}

// StrugglingSubjects lists, sorted, the answered subjects below
// StrugglingBelow accuracy.
func (a StudyAnalytics) StrugglingSubjects() []string {
	return a.subjectsWhere(func(p SubjectPerformance) bool {
		return p.Accuracy < StrugglingBelow
	})
}

func (a StudyAnalytics) subjectsWhere(keep func(SubjectPerformance) bool) []string {
	out := []string{}
	for name, perf := range a.SubjectPerformance {
		// Subjects nobody has answered anything in have no accuracy to judge.
		if perf.AnsweredCount == 0 {
			continue
		}
		if keep(perf) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// RecommendedDifficulty suggests a difficulty for new material in subject.
// Unknown or unanswered subjects get RecommendModerate.
func (a StudyAnalytics) RecommendedDifficulty(subject string) RecommendedDifficulty {
	perf, ok := a.SubjectPerformance[subject]
	if !ok || perf.AnsweredCount == 0 {
		return RecommendModerate
	}
	switch {
	case perf.Accuracy >= ChallengingAtLeast:
		return RecommendChallenging
	case perf.Accuracy >= ModerateAtLeast:
		return RecommendModerate
	default:
		return RecommendEasy
	}
}
