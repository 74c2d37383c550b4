package scoring

import (
	"math"
	"time"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

// Trend directions.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// Trend compares output in the latest seven days against the seven before.
type Trend struct {
	Direction     string  `json:"direction"`
	ChangePercent float64 `json:"change_percent"`
	Current       int     `json:"current"`
	Previous      int     `json:"previous"`
}

// ProductivityTrend measures commits + PRs + reviews relative to the most recent date in metrics.
// An empty previous week reports a zero change and a stable direction.
func ProductivityTrend(metrics []domain.DailyMetric) Trend {
	if len(metrics) == 0 {
		return Trend{Direction: TrendStable}
	}
	latest := time.Time{}
	for _, m := range metrics {
		if d := domain.DayStart(m.Date); d.After(latest) {
			latest = d
		}
	}
	currentFrom := latest.AddDate(0, 0, -6)
	previousFrom := latest.AddDate(0, 0, -13)

	var tr Trend
	for _, m := range metrics {
		d := domain.DayStart(m.Date)
		output := m.Commits + m.PullRequestsOpened + m.Reviews
		switch {
		case !d.Before(currentFrom):
			tr.Current += output
		case !d.Before(previousFrom):
			tr.Previous += output
		}
	}

	if tr.Previous > 0 {
		change := float64(tr.Current-tr.Previous) / float64(tr.Previous) * 100
		tr.ChangePercent = math.Round(change*10) / 10
	}
	switch {
	case tr.ChangePercent > 10:
		tr.Direction = TrendUp
	case tr.ChangePercent < -10:
		tr.Direction = TrendDown
	default:
		tr.Direction = TrendStable
	}
	return tr
}
