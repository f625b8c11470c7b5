package models

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	apperrors "github.com/studypals/studypals/internal/errors"
	"github.com/studypals/studypals/internal/validation"
)

// Decoding is strict: every record below is decoded through a wire struct
// whose required fields are pointers, then validated. A missing or mistyped
// required field yields *apperrors.DeserializationError. Optional fields
// decode to their zero value, with nil maps and slices replaced by empty ones.

func decodeInto(record string, data []byte, wire any) error {
	if err := json.Unmarshal(data, wire); err != nil {
		return translateDecodeError(record, err)
	}
	if errs := validation.Struct(wire); errs != nil {
		return apperrors.NewDeserializationError(record, errs[0].Field, errs[0].Message, errs)
	}
	return nil
}

func translateDecodeError(record string, err error) error {
	var decErr *apperrors.DeserializationError
	if stderrors.As(err, &decErr) {
		return decErr
	}
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		reason := fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)
		return apperrors.NewDeserializationError(record, typeErr.Field, reason, err)
	}
	var timeErr *time.ParseError
	if stderrors.As(err, &timeErr) {
		return apperrors.NewDeserializationError(record, "", "timestamp is not RFC 3339", err)
	}
	return apperrors.NewDeserializationError(record, "", "malformed document", err)
}

func nonNilMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return m
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func orZero[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// DecodeStudyAnalytics decodes a stored snapshot.
func DecodeStudyAnalytics(data []byte) (StudyAnalytics, error) {
	var a StudyAnalytics
	if err := json.Unmarshal(data, &a); err != nil {
		return StudyAnalytics{}, translateDecodeError("StudyAnalytics", err)
	}
	return a, nil
}

// EncodeStudyAnalytics encodes a snapshot for storage.
func EncodeStudyAnalytics(a StudyAnalytics) ([]byte, error) {
	return json.Marshal(a)
}

// ---- SessionActivity ----

type sessionActivityWire struct {
	Type           *ActivityType  `json:"type" validate:"required,min=1"`
	Timestamp      *time.Time     `json:"timestamp" validate:"required"`
	CardID         string         `json:"cardId"`
	WasCorrect     *bool          `json:"wasCorrect"`
	ResponseTimeMs *int           `json:"responseTimeMs" validate:"omitempty,gte=0"`
	Data           map[string]any `json:"data"`
}

func (a *SessionActivity) UnmarshalJSON(data []byte) error {
	var w sessionActivityWire
	if err := decodeInto("SessionActivity", data, &w); err != nil {
		return err
	}
	*a = SessionActivity{
		Type:           *w.Type,
		Timestamp:      *w.Timestamp,
		CardID:         w.CardID,
		WasCorrect:     w.WasCorrect,
		ResponseTimeMs: w.ResponseTimeMs,
		Data:           nonNilMap(w.Data),
	}
	return nil
}

func (a SessionActivity) MarshalJSON() ([]byte, error) {
	type plain SessionActivity
	a.Data = nonNilMap(a.Data)
	return json.Marshal(plain(a))
}

// ---- StudySession ----

type studySessionWire struct {
	ID         *string           `json:"id" validate:"required,min=1"`
	UserID     *string           `json:"userId" validate:"required,min=1"`
	DeckID     string            `json:"deckId"`
	Subject    *string           `json:"subject" validate:"required"`
	StartTime  *time.Time        `json:"startTime" validate:"required"`
	EndTime    *time.Time        `json:"endTime" validate:"required"`
	Activities []SessionActivity `json:"activities"`
	Metadata   map[string]any    `json:"metadata"`
}

func (s *StudySession) UnmarshalJSON(data []byte) error {
	var w studySessionWire
	if err := decodeInto("StudySession", data, &w); err != nil {
		return err
	}
	*s = StudySession{
		ID:         *w.ID,
		UserID:     *w.UserID,
		DeckID:     w.DeckID,
		Subject:    *w.Subject,
		StartTime:  *w.StartTime,
		EndTime:    *w.EndTime,
		Activities: nonNilSlice(w.Activities),
		Metadata:   nonNilMap(w.Metadata),
	}
	return nil
}

func (s StudySession) MarshalJSON() ([]byte, error) {
	type plain StudySession
	s.Activities = nonNilSlice(s.Activities)
	s.Metadata = nonNilMap(s.Metadata)
	return json.Marshal(plain(s))
}

// ---- QuizAnswer / QuizSession ----

type quizAnswerWire struct {
	CardID              *string    `json:"cardId" validate:"required"`
	SelectedOptionIndex *int       `json:"selectedOptionIndex" validate:"required,gte=-1"`
	CorrectOptionIndex  *int       `json:"correctOptionIndex" validate:"required,gte=0"`
	IsCorrect           *bool      `json:"isCorrect"`
	AnsweredAt          *time.Time `json:"answeredAt" validate:"required"`
}

// UnmarshalJSON derives isCorrect from the option indices when absent.
func (q *QuizAnswer) UnmarshalJSON(data []byte) error {
	var w quizAnswerWire
	if err := decodeInto("QuizAnswer", data, &w); err != nil {
		return err
	}
	isCorrect := *w.SelectedOptionIndex == *w.CorrectOptionIndex
	if w.IsCorrect != nil {
		isCorrect = *w.IsCorrect
	}
	*q = QuizAnswer{
		CardID:              *w.CardID,
		SelectedOptionIndex: *w.SelectedOptionIndex,
		CorrectOptionIndex:  *w.CorrectOptionIndex,
		IsCorrect:           isCorrect,
		AnsweredAt:          *w.AnsweredAt,
	}
	return nil
}

type quizSessionWire struct {
	ID          *string      `json:"id" validate:"required,min=1"`
	UserID      string       `json:"userId"`
	DeckID      *string      `json:"deckId" validate:"required"`
	DeckTitle   string       `json:"deckTitle"`
	CardIDs     []string     `json:"cardIds"`
	StartTime   *time.Time   `json:"startTime" validate:"required"`
	EndTime     *time.Time   `json:"endTime"`
	IsCompleted bool         `json:"isCompleted"`
	FinalScore  float64      `json:"finalScore" validate:"gte=0,lte=1"`
	Answers     []QuizAnswer `json:"answers"`
}

func (q *QuizSession) UnmarshalJSON(data []byte) error {
	var w quizSessionWire
	if err := decodeInto("QuizSession", data, &w); err != nil {
		return err
	}
	*q = QuizSession{
		ID:          *w.ID,
		UserID:      w.UserID,
		DeckID:      *w.DeckID,
		DeckTitle:   w.DeckTitle,
		CardIDs:     nonNilSlice(w.CardIDs),
		StartTime:   *w.StartTime,
		EndTime:     w.EndTime,
		IsCompleted: w.IsCompleted,
		FinalScore:  w.FinalScore,
		Answers:     nonNilSlice(w.Answers),
	}
	return nil
}

func (q QuizSession) MarshalJSON() ([]byte, error) {
	type plain QuizSession
	q.CardIDs = nonNilSlice(q.CardIDs)
	q.Answers = nonNilSlice(q.Answers)
	return json.Marshal(plain(q))
}

// ---- WeekStat / PerformanceTrend ----

type weekStatWire struct {
	WeekStart       *time.Time `json:"weekStart"`
	CardsStudied    *int       `json:"cardsStudied" validate:"required,gte=0"`
	AverageAccuracy *float64   `json:"averageAccuracy" validate:"required,gte=0,lte=1"`
	AnsweredCount   int        `json:"answeredCount" validate:"gte=0"`
	CorrectCount    int        `json:"correctCount" validate:"gte=0"`
}

func (w *WeekStat) UnmarshalJSON(data []byte) error {
	var in weekStatWire
	if err := decodeInto("WeekStat", data, &in); err != nil {
		return err
	}
	*w = WeekStat{
		WeekStart:       orZero(in.WeekStart),
		CardsStudied:    *in.CardsStudied,
		AverageAccuracy: *in.AverageAccuracy,
		AnsweredCount:   in.AnsweredCount,
		CorrectCount:    in.CorrectCount,
	}
	return nil
}

type performanceTrendWire struct {
	Direction     *TrendDirection `json:"direction" validate:"required,oneof=improving declining stable"`
	ChangeRate    *float64        `json:"changeRate" validate:"required"`
	WeeksAnalyzed *int            `json:"weeksAnalyzed" validate:"required,gte=1"`
	WeeklyData    []WeekStat      `json:"weeklyData" validate:"required"`
}

func (t *PerformanceTrend) UnmarshalJSON(data []byte) error {
	var w performanceTrendWire
	if err := decodeInto("PerformanceTrend", data, &w); err != nil {
		return err
	}
	if len(w.WeeklyData) != *w.WeeksAnalyzed {
		reason := fmt.Sprintf("has %d entries, weeksAnalyzed is %d", len(w.WeeklyData), *w.WeeksAnalyzed)
		return apperrors.NewDeserializationError("PerformanceTrend", "weeklyData", reason, nil)
	}
	*t = PerformanceTrend{
		Direction:     *w.Direction,
		ChangeRate:    *w.ChangeRate,
		WeeksAnalyzed: *w.WeeksAnalyzed,
		WeeklyData:    w.WeeklyData,
	}
	return nil
}

func (t PerformanceTrend) MarshalJSON() ([]byte, error) {
	type plain PerformanceTrend
	t.WeeklyData = nonNilSlice(t.WeeklyData)
	return json.Marshal(plain(t))
}

// ---- SubjectPerformance ----

type subjectPerformanceWire struct {
	Subject             *string                  `json:"subject" validate:"required"`
	Accuracy            *float64                 `json:"accuracy" validate:"required,gte=0,lte=1"`
	TotalCards          *int                     `json:"totalCards" validate:"required,gte=0"`
	TotalQuizzes        *int                     `json:"totalQuizzes" validate:"required,gte=0"`
	StudyTimeMinutes    *int                     `json:"studyTimeMinutes" validate:"required,gte=0"`
	LastStudied         *time.Time               `json:"lastStudied"`
	RecentScores        []float64                `json:"recentScores" validate:"dive,gte=0,lte=1"`
	DifficultyBreakdown map[DifficultyBucket]int `json:"difficultyBreakdown" validate:"dive,keys,oneof=easy moderate hard,endkeys,gte=0"`
	AverageResponseTime float64                  `json:"averageResponseTime" validate:"gte=0"`
	SessionCount        int                      `json:"sessionCount" validate:"gte=0"`
	AnsweredCount       int                      `json:"answeredCount" validate:"gte=0"`
	CorrectCount        int                      `json:"correctCount" validate:"gte=0"`
	ResponseTimeTotalMs int64                    `json:"responseTimeTotalMs" validate:"gte=0"`
	ResponseSamples     int                      `json:"responseSamples" validate:"gte=0"`
}

func (p *SubjectPerformance) UnmarshalJSON(data []byte) error {
	var w subjectPerformanceWire
	if err := decodeInto("SubjectPerformance", data, &w); err != nil {
		return err
	}
	*p = SubjectPerformance{
		Subject:             *w.Subject,
		Accuracy:            *w.Accuracy,
		TotalCards:          *w.TotalCards,
		TotalQuizzes:        *w.TotalQuizzes,
		StudyTimeMinutes:    *w.StudyTimeMinutes,
		LastStudied:         orZero(w.LastStudied),
		RecentScores:        nonNilSlice(w.RecentScores),
		DifficultyBreakdown: nonNilMap(w.DifficultyBreakdown),
		AverageResponseTime: w.AverageResponseTime,
		SessionCount:        w.SessionCount,
		AnsweredCount:       w.AnsweredCount,
		CorrectCount:        w.CorrectCount,
		ResponseTimeTotalMs: w.ResponseTimeTotalMs,
		ResponseSamples:     w.ResponseSamples,
	}
	return nil
}

func (p SubjectPerformance) MarshalJSON() ([]byte, error) {
	type plain SubjectPerformance
	p.RecentScores = nonNilSlice(p.RecentScores)
	p.DifficultyBreakdown = nonNilMap(p.DifficultyBreakdown)
	return json.Marshal(plain(p))
}

// ---- LearningPatterns ----

type learningPatternsWire struct {
	PreferredStudyHours        map[string]int         `json:"preferredStudyHours" validate:"required"`
	LearningStyleEffectiveness map[string]float64     `json:"learningStyleEffectiveness" validate:"required,dive,gte=0,lte=1"`
	AverageSessionLength       *float64               `json:"averageSessionLength" validate:"required,gte=0"`
	PreferredCardsPerSession   *int                   `json:"preferredCardsPerSession" validate:"required,gte=0"`
	TopicInterest              map[string]float64     `json:"topicInterest" validate:"required,dive,gte=0,lte=1"`
	CommonMistakePatterns      []string               `json:"commonMistakePatterns"`
	StyleCounts                map[string]AnswerTally `json:"styleCounts"`
	MistakeProfile             MistakeProfile         `json:"mistakeProfile"`
}

func (l *LearningPatterns) UnmarshalJSON(data []byte) error {
	var w learningPatternsWire
	if err := decodeInto("LearningPatterns", data, &w); err != nil {
		return err
	}
	*l = LearningPatterns{
		PreferredStudyHours:        w.PreferredStudyHours,
		LearningStyleEffectiveness: w.LearningStyleEffectiveness,
		AverageSessionLength:       *w.AverageSessionLength,
		PreferredCardsPerSession:   *w.PreferredCardsPerSession,
		TopicInterest:              w.TopicInterest,
		CommonMistakePatterns:      nonNilSlice(w.CommonMistakePatterns),
		StyleCounts:                nonNilMap(w.StyleCounts),
		MistakeProfile:             w.MistakeProfile.normalized(),
	}
	return nil
}

func (l LearningPatterns) MarshalJSON() ([]byte, error) {
	type plain LearningPatterns
	l.PreferredStudyHours = nonNilMap(l.PreferredStudyHours)
	l.LearningStyleEffectiveness = nonNilMap(l.LearningStyleEffectiveness)
	l.TopicInterest = nonNilMap(l.TopicInterest)
	l.CommonMistakePatterns = nonNilSlice(l.CommonMistakePatterns)
	l.StyleCounts = nonNilMap(l.StyleCounts)
	l.MistakeProfile = l.MistakeProfile.normalized()
	return json.Marshal(plain(l))
}

func (m MistakeProfile) normalized() MistakeProfile {
	m.IncorrectBySubject = nonNilMap(m.IncorrectBySubject)
	m.IncorrectByCard = nonNilMap(m.IncorrectByCard)
	return m
}

// ---- StudyAnalytics ----

type studyAnalyticsWire struct {
	UserID             *string                       `json:"userId" validate:"required,min=1"`
	LastUpdated        *time.Time                    `json:"lastUpdated" validate:"required"`
	OverallAccuracy    *float64                      `json:"overallAccuracy" validate:"required,gte=0,lte=1"`
	TotalStudyTime     *int                          `json:"totalStudyTime" validate:"required,gte=0"`
	TotalCardsStudied  *int                          `json:"totalCardsStudied" validate:"required,gte=0"`
	TotalQuizzesTaken  *int                          `json:"totalQuizzesTaken" validate:"required,gte=0"`
	CurrentStreak      *int                          `json:"currentStreak" validate:"required,gte=0"`
	LongestStreak      *int                          `json:"longestStreak" validate:"required,gte=0"`
	SubjectPerformance map[string]SubjectPerformance `json:"subjectPerformance" validate:"required"`
	LearningPatterns   *LearningPatterns             `json:"learningPatterns" validate:"required"`
	RecentTrend        *PerformanceTrend             `json:"recentTrend" validate:"required"`
	SessionCount       int                           `json:"sessionCount" validate:"gte=0"`
	AnsweredCount      int                           `json:"answeredCount" validate:"gte=0"`
	CorrectCount       int                           `json:"correctCount" validate:"gte=0"`
	StudyDates         []string                      `json:"studyDates" validate:"dive,datetime=2006-01-02"`
}

func (a *StudyAnalytics) UnmarshalJSON(data []byte) error {
	var w studyAnalyticsWire
	if err := decodeInto("StudyAnalytics", data, &w); err != nil {
		return err
	}
	if *w.LongestStreak < *w.CurrentStreak {
		return apperrors.NewDeserializationError("StudyAnalytics", "longestStreak", "is shorter than currentStreak", nil)
	}
	*a = StudyAnalytics{
		UserID:             *w.UserID,
		LastUpdated:        *w.LastUpdated,
		OverallAccuracy:    *w.OverallAccuracy,
		TotalStudyTime:     *w.TotalStudyTime,
		TotalCardsStudied:  *w.TotalCardsStudied,
		TotalQuizzesTaken:  *w.TotalQuizzesTaken,
		CurrentStreak:      *w.CurrentStreak,
		LongestStreak:      *w.LongestStreak,
		SubjectPerformance: w.SubjectPerformance,
		LearningPatterns:   *w.LearningPatterns,
		RecentTrend:        *w.RecentTrend,
		SessionCount:       w.SessionCount,
		AnsweredCount:      w.AnsweredCount,
		CorrectCount:       w.CorrectCount,
		StudyDates:         nonNilSlice(w.StudyDates),
	}
	return nil
}

func (a StudyAnalytics) MarshalJSON() ([]byte, error) {
	type plain StudyAnalytics
	a.SubjectPerformance = nonNilMap(a.SubjectPerformance)
	a.StudyDates = nonNilSlice(a.StudyDates)
	return json.Marshal(plain(a))
}
