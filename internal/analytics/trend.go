package analytics

import (
	"time"

	"github.com/studypals/studypals/internal/models"
)

// weekStarts returns the Mondays opening the analysed weeks, oldest first.
// The last one opens the week containing now.
func weekStarts(now time.Time, loc *time.Location) []time.Time {
	local := now.In(loc)
	offset := (int(local.Weekday()) + 6) % 7
	current := time.Date(local.Year(), local.Month(), local.Day()-offset, 0, 0, 0, 0, loc)

	out := make([]time.Time, models.WeeksAnalyzed)
	for i := range out {
		out[i] = current.AddDate(0, 0, -7*(models.WeeksAnalyzed-1-i))
	}
	return out
}

// buildTrend fills in weekly accuracy and compares the earliest and latest
// weeks that saw answers. Fewer than two such weeks is a stable trend.
func buildTrend(weeks []models.WeekStat, threshold float64) models.PerformanceTrend {
	out := models.PerformanceTrend{
		Direction:     models.TrendStable,
		WeeksAnalyzed: models.WeeksAnalyzed,
		WeeklyData:    make([]models.WeekStat, len(weeks)),
	}

	var withData []int
	for i, w := range weeks {
		w.AverageAccuracy = ratio(w.CorrectCount, w.AnsweredCount)
		out.WeeklyData[i] = w
		if w.AnsweredCount > 0 {
			withData = append(withData, i)
		}
	}
	if len(withData) < 2 {
		return out
	}

	first := out.WeeklyData[withData[0]].AverageAccuracy
	last := out.WeeklyData[withData[len(withData)-1]].AverageAccuracy
	delta := last - first

	// Percentage points per week across the whole window.
	out.ChangeRate = delta * 100 / float64(models.WeeksAnalyzed-1)
	switch {
	case delta > threshold:
		out.Direction = models.TrendImproving
	case delta < -threshold:
		out.Direction = models.TrendDeclining
	}
	return out
}
