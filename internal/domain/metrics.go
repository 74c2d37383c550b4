package domain

import (
	"context"
	"fmt"
	"time"
)

// MetricService reads daily metrics and records focus time.
type MetricService struct {
	repo MetricRepository
	now  func() time.Time
}

// NewMetricService constructs a MetricService.
func NewMetricService(repo MetricRepository) *MetricService {
	return &MetricService{repo: repo, now: time.Now}
}

// Trailing returns the rows for the last days calendar days, including today.
func (s *MetricService) Trailing(ctx context.Context, userID string, days int) ([]DailyMetric, error) {
	if days <= 0 {
		days = 30
	}
	if days > 365 {
		days = 365
	}
	to := DayStart(s.now())
	from := to.AddDate(0, 0, -(days - 1))
	return s.repo.ListDailyMetrics(ctx, userID, from, to)
}

// AddFocus adds focus minutes to today's row, creating it when absent.
func (s *MetricService) AddFocus(ctx context.Context, userID string, minutes int) error {
	if minutes <= 0 {
		return nil
	}
	if minutes > 24*60 {
		return fmt.Errorf("%w: focus minutes exceed one day", ErrValidation)
	}
	return s.repo.AddFocusMinutes(ctx, userID, DayStart(s.now()), minutes)
}
