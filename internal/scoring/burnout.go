package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

// Risk levels reported by GenerateBurnoutPrediction.
const (
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskHigh     = "high"
)

// SustainablePace is the only recommendation when no risk factor triggers.
const SustainablePace = "Keep up the sustainable pace: your recent activity shows a healthy rhythm."

// Signals are the intermediate measurements behind a prediction.
type Signals struct {
	Days           int     `json:"days"`
	SpanDays       int     `json:"span_days"`
	WeeklyHours    float64 `json:"weekly_hours"`
	WeekendRatio   float64 `json:"weekend_ratio"`
	LateNightRatio float64 `json:"late_night_ratio"`
	LongestStreak  int     `json:"longest_streak"`
	EarlierCommits int     `json:"earlier_commits"`
	LaterCommits   int     `json:"later_commits"`
}

// BurnoutPrediction is the 0–1 risk score with its explanation.
type BurnoutPrediction struct {
	RiskScore       float64  `json:"risk_score"`
	Level           string   `json:"level"`
	Factors         []string `json:"factors"`
	Recommendations []string `json:"recommendations"`
	Confidence      float64  `json:"confidence"`
	Signals         Signals  `json:"signals"`
}

// GenerateBurnoutPrediction scores the trailing window of metrics. It returns nil
// when fewer than the minimum number of distinct days are available.
func GenerateBurnoutPrediction(metrics []domain.DailyMetric, t Thresholds) *BurnoutPrediction {
	t = t.withDefaults()
	w := trailingWindow(metrics, t.WindowDays)
	if len(w.days) < t.MinDays {
		return nil
	}

	s := measure(w)
	risk := 0.0
	factors := make([]string, 0, 5)
	recs := make([]string, 0, 5)

	if s.WeeklyHours > t.WeeklyHours {
		risk += t.WeeklyHoursWeight
		factors = append(factors, fmt.Sprintf("Working more than %.0f hours per week", t.WeeklyHours))
		recs = append(recs, "Cap coding time and block recovery hours in your calendar.")
	}
	if s.WeekendRatio > t.WeekendRatio {
		risk += t.WeekendWeight
		factors = append(factors, "Regular weekend work")
		recs = append(recs, "Protect at least one full weekend day without commits.")
	}
	if s.LateNightRatio > t.LateNightRatio {
		risk += t.LateNightWeight
		factors = append(factors, "High share of late-night commits")
		recs = append(recs, "Move deep work earlier in the day and stop committing after 10pm.")
	}
	if s.LongestStreak >= t.StreakDays {
		risk += t.StreakWeight
		factors = append(factors, "Long streak without a rest day")
		recs = append(recs, "Schedule a rest day; streaks are not a health metric.")
	}
	if s.LaterCommits >= t.TrendMinCommits &&
		(s.EarlierCommits == 0 || float64(s.LaterCommits)/float64(s.EarlierCommits) > t.TrendRatio) {
		risk += t.TrendWeight
		factors = append(factors, "Sharp increase in commit volume")
		recs = append(recs, "Check whether the recent spike is sustainable or deadline driven.")
	}
	if len(recs) == 0 {
		recs = append(recs, SustainablePace)
	}

	risk = round2(math.Min(risk, 1))
	return &BurnoutPrediction{
		RiskScore:       risk,
		Level:           riskLevel(risk),
		Factors:         factors,
		Recommendations: recs,
		Confidence:      round2(math.Min(1, float64(len(w.days))/30)),
		Signals:         s.rounded(),
	}
}

func riskLevel(risk float64) string {
	switch {
	case risk >= 0.6:
		return RiskHigh
	case risk >= 0.3:
		return RiskModerate
	default:
		return RiskLow
	}
}

// rounded returns the signals with ratios and hours cut to two decimals for display.
func (s Signals) rounded() Signals {
	s.WeeklyHours = round2(s.WeeklyHours)
	s.WeekendRatio = round2(s.WeekendRatio)
	s.LateNightRatio = round2(s.LateNightRatio)
	return s
}

// measure computes unrounded signals; thresholds are compared against these.
func measure(w window) Signals {
	span := w.spanDays()
	byDate := make(map[time.Time]domain.DailyMetric, len(w.days))
	totalMinutes, commits, lateNight := 0, 0, 0
	for _, d := range w.days {
		byDate[d.Date] = d
		totalMinutes += d.CodingMinutes
		commits += d.Commits
		lateNight += d.LateNightCommits
	}

	s := Signals{Days: len(w.days), SpanDays: span}
	if s.Days > 0 {
		s.WeeklyHours = float64(totalMinutes) / 60 / (float64(s.Days) / 7)
	}
	if commits > 0 {
		s.LateNightRatio = float64(lateNight) / float64(commits)
	}

	weekendDays, weekendWorked := 0, 0
	streak, longest := 0, 0
	for day := w.first; !day.After(w.last); day = day.AddDate(0, 0, 1) {
		m, ok := byDate[day]
		if isWeekend(day) {
			weekendDays++
			if ok && (m.WeekendWork || m.Commits > 0) {
				weekendWorked++
			}
		}
		if ok && m.Active() {
			streak++
			if streak > longest {
				longest = streak
			}
		} else {
			streak = 0
		}
	}
	if weekendDays > 0 {
		s.WeekendRatio = float64(weekendWorked) / float64(weekendDays)
	}
	s.LongestStreak = longest

	half := len(w.days) / 2
	for i, d := range w.days {
		if i < half {
			s.EarlierCommits += d.Commits
		} else {
			s.LaterCommits += d.Commits
		}
	}
	return s
}
