package scoring

import (
	"math"
	"sort"

	"github.com/jonathan/ats-analyzer/internal/rules"
)

// headroomRatio is the share of a category's maximum its base score may
// take, leaving the rest for bonuses
const headroomRatio = 0.85

// ladder maps value onto an ordered threshold ladder. The highest threshold
// the value reaches wins; below every threshold the result is 0.
func ladder(tiers []rules.Tier, value float64) float64 {
	ordered := make([]rules.Tier, len(tiers))
	copy(ordered, tiers)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Min > ordered[j].Min })

	for _, t := range ordered {
		if value >= t.Min {
			return t.Score
		}
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// capAt limits v to limit when limit is positive; a zero limit means uncapped
func capAt(v, limit float64) float64 {
	if limit > 0 && v > limit {
		return limit
	}
	return v
}

// magnitude reads a configured penalty as a positive amount regardless of its sign
func magnitude(v float64) float64 {
	return math.Abs(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func percentage(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	return round2(score / maxScore * 100)
}
