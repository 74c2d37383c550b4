package scoring

import (
	"math"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

// NeutralHealthScore is reported when there is not enough data to score.
const NeutralHealthScore = 50

// HealthResult is the 0–100 health score with its weighted components.
type HealthResult struct {
	Score         int     `json:"score"`
	Sufficient    bool    `json:"sufficient"`
	Consistency   float64 `json:"consistency"`
	Collaboration float64 `json:"collaboration"`
	Balance       float64 `json:"balance"`
	Focus         float64 `json:"focus"`
}

// HealthScore combines consistency (30), collaboration (20), balance (30) and focus (20).
func HealthScore(metrics []domain.DailyMetric, t Thresholds) HealthResult {
	t = t.withDefaults()
	w := trailingWindow(metrics, t.WindowDays)
	if len(w.days) < t.MinDays {
		return HealthResult{Score: NeutralHealthScore}
	}

	span := float64(w.spanDays())
	active, collaborative, focus := 0, 0, 0
	for _, d := range w.days {
		if d.Active() {
			active++
		}
		if d.PullRequestsOpened > 0 || d.PullRequestsMerged > 0 || d.Reviews > 0 {
			collaborative++
		}
		focus += d.FocusMinutes
	}

	risk := 0.0
	if p := GenerateBurnoutPrediction(metrics, t); p != nil {
		risk = p.RiskScore
	}

	r := HealthResult{
		Sufficient:    true,
		Consistency:   round2(float64(active) / span * 30),
		Collaboration: round2(float64(collaborative) / span * 20),
		Balance:       round2((1 - risk) * 30),
		Focus:         round2(math.Min(float64(focus)/span/t.FocusTargetMins, 1) * 20),
	}
	r.Score = int(math.Round(r.Consistency + r.Collaboration + r.Balance + r.Focus))
	if r.Score > 100 {
		r.Score = 100
	}
	if r.Score < 0 {
		r.Score = 0
	}
	return r
}
