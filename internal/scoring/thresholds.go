// Package scoring holds the deterministic burnout, health, trend and ranking heuristics.
// Every function is pure: the same rows always produce the same result.
package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds tunes the burnout heuristic. Zero fields fall back to defaults.
type Thresholds struct {
	WindowDays        int     `yaml:"window_days"`
	MinDays           int     `yaml:"min_days"`
	WeeklyHours       float64 `yaml:"weekly_hours"`
	WeeklyHoursWeight float64 `yaml:"weekly_hours_weight"`
	WeekendRatio      float64 `yaml:"weekend_ratio"`
	WeekendWeight     float64 `yaml:"weekend_weight"`
	LateNightRatio    float64 `yaml:"late_night_ratio"`
	LateNightWeight   float64 `yaml:"late_night_weight"`
	StreakDays        int     `yaml:"streak_days"`
	StreakWeight      float64 `yaml:"streak_weight"`
	TrendRatio        float64 `yaml:"trend_ratio"`
	TrendMinCommits   int     `yaml:"trend_min_commits"`
	TrendWeight       float64 `yaml:"trend_weight"`
	FocusTargetMins   float64 `yaml:"focus_target_minutes"`
}

// DefaultThresholds returns the stock weights.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WindowDays:        14,
		MinDays:           7,
		WeeklyHours:       50,
		WeeklyHoursWeight: 0.3,
		WeekendRatio:      0.5,
		WeekendWeight:     0.2,
		LateNightRatio:    0.3,
		LateNightWeight:   0.2,
		StreakDays:        12,
		StreakWeight:      0.15,
		TrendRatio:        1.5,
		TrendMinCommits:   10,
		TrendWeight:       0.15,
		FocusTargetMins:   120,
	}
}

// withDefaults fills zero fields from DefaultThresholds.
func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.WindowDays <= 0 {
		t.WindowDays = d.WindowDays
	}
	if t.MinDays <= 0 {
		t.MinDays = d.MinDays
	}
	if t.WeeklyHours <= 0 {
		t.WeeklyHours = d.WeeklyHours
	}
	if t.WeeklyHoursWeight <= 0 {
		t.WeeklyHoursWeight = d.WeeklyHoursWeight
	}
	if t.WeekendRatio <= 0 {
		t.WeekendRatio = d.WeekendRatio
	}
	if t.WeekendWeight <= 0 {
		t.WeekendWeight = d.WeekendWeight
	}
	if t.LateNightRatio <= 0 {
		t.LateNightRatio = d.LateNightRatio
	}
	if t.LateNightWeight <= 0 {
		t.LateNightWeight = d.LateNightWeight
	}
	if t.StreakDays <= 0 {
		t.StreakDays = d.StreakDays
	}
	if t.StreakWeight <= 0 {
		t.StreakWeight = d.StreakWeight
	}
	if t.TrendRatio <= 0 {
		t.TrendRatio = d.TrendRatio
	}
	if t.TrendMinCommits <= 0 {
		t.TrendMinCommits = d.TrendMinCommits
	}
	if t.TrendWeight <= 0 {
		t.TrendWeight = d.TrendWeight
	}
	if t.FocusTargetMins <= 0 {
		t.FocusTargetMins = d.FocusTargetMins
	}
	return t
}

// LoadThresholds reads YAML overrides from path. An empty path yields the defaults.
func LoadThresholds(path string) (Thresholds, error) {
	if path == "" {
		return DefaultThresholds(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Thresholds{}, fmt.Errorf("read scoring file: %w", err)
	}
	var t Thresholds
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Thresholds{}, fmt.Errorf("parse scoring file: %w", err)
	}
	return t.withDefaults(), nil
}
