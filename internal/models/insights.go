package models

import "sort"

// Insights is the read-only digest served next to a snapshot.
type Insights struct {
	UserID                string                           `json:"userId"`
	PerformanceLevel      PerformanceLevel                 `json:"performanceLevel"`
	StrongSubjects        []string                         `json:"strongSubjects"`
	StrugglingSubjects    []string                         `json:"strugglingSubjects"`
	RecommendedDifficulty map[string]RecommendedDifficulty `json:"recommendedDifficulty"`
	CurrentStreak         int                              `json:"currentStreak"`
	LongestStreak         int                              `json:"longestStreak"`
	Trend                 TrendDirection                   `json:"trend"`
	CommonMistakePatterns []string                         `json:"commonMistakePatterns"`
}

// Insights derives the digest for every subject in the snapshot.
func (a StudyAnalytics) Insights() Insights {
	subjects := make([]string, 0, len(a.SubjectPerformance))
	for name := range a.SubjectPerformance {
		subjects = append(subjects, name)
	}
	sort.Strings(subjects)

	recommended := make(map[string]RecommendedDifficulty, len(subjects))
	for _, name := range subjects {
		recommended[name] = a.RecommendedDifficulty(name)
	}

	trend := a.RecentTrend.Direction
	if trend == "" {
		trend = TrendStable
	}

	patterns := a.LearningPatterns.CommonMistakePatterns
	if patterns == nil {
		patterns = []string{}
	}

	return Insights{
		UserID:                a.UserID,
		PerformanceLevel:      a.PerformanceLevel(),
		StrongSubjects:        a.StrongSubjects(),
		StrugglingSubjects:    a.StrugglingSubjects(),
		RecommendedDifficulty: recommended,
		CurrentStreak:         a.CurrentStreak,
		LongestStreak:         a.LongestStreak,
		Trend:                 trend,
		CommonMistakePatterns: patterns,
	}
}
