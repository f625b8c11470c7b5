package analytics

import (
	"time"

	"github.com/studypals/studypals/internal/models"
)

// streaks returns the current and longest runs of consecutive study days.
// dates must be sorted YYYY-MM-DD strings. The current streak is the run
// ending today or yesterday in loc; a run that ended earlier is broken.
func streaks(dates []string, now time.Time, loc *time.Location) (current, longest int) {
	if len(dates) == 0 {
		return 0, 0
	}

	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		// Civil dates in UTC so a DST transition never shortens a day.
		t, err := time.ParseInLocation(models.DateLayout, d, time.UTC)
		if err != nil {
			continue
		}
		days = append(days, t)
	}
	if len(days) == 0 {
		return 0, 0
	}

	run := 0
	for i, day := range days {
		if i > 0 && day.Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	today := civilDate(now.In(loc))
	present := make(map[time.Time]bool, len(days))
	for _, d := range days {
		present[d] = true
	}

	cursor := today
	if !present[cursor] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for present[cursor] {
		current++
		cursor = cursor.AddDate(0, 0, -1)
	}

	if current > longest {
		longest = current
	}
	return current, longest
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
