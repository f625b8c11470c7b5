package analytics

import (
	"fmt"
	"sort"

	"github.com/studypals/studypals/internal/models"
)

// minMistakes is the number of wrong answers below which no pattern is
// reported.
const minMistakes = 3

const (
	PatternHardCards    = "Frequent mistakes on hard cards"
	PatternRepeatedCard = "Repeated mistakes on the same cards"
	PatternRushed       = "Fast answers are often wrong"
)

// PatternSubjectPrefix prefixes the pattern naming the subject most wrong
// answers came from.
const PatternSubjectPrefix = "Mistakes concentrated in "

// mistakePatterns turns a MistakeProfile into human-readable labels, in a
// fixed order. The subject label needs misses in at least two subjects.
func mistakePatterns(mp models.MistakeProfile) []string {
	out := []string{}
	if mp.Incorrect < minMistakes {
		return out
	}

	if mp.IncorrectOnHard*2 >= mp.Incorrect {
		out = append(out, PatternHardCards)
	}
	for _, n := range mp.IncorrectByCard {
		if n >= 2 {
			out = append(out, PatternRepeatedCard)
			break
		}
	}
	if mp.IncorrectFast*2 >= mp.Incorrect {
		out = append(out, PatternRushed)
	}

	if len(mp.IncorrectBySubject) > 1 {
		names := make([]string, 0, len(mp.IncorrectBySubject))
		for name := range mp.IncorrectBySubject {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if mp.IncorrectBySubject[name]*2 > mp.Incorrect {
				out = append(out, fmt.Sprintf("%s%s", PatternSubjectPrefix, name))
				break
			}
		}
	}
	return out
}
