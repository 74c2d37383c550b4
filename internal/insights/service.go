// Package insights turns stored daily metrics into scored insight reports and dashboard summaries.
package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	"github.com/devansh054/dev-pulse-sub000/internal/observability"
	"github.com/devansh054/dev-pulse-sub000/internal/scoring"
	"github.com/devansh054/dev-pulse-sub000/libs/events"
)

// lookbackDays is the metric history loaded for scoring.
const lookbackDays = 30

// Report is the output of one Generate call.
type Report struct {
	UserID      string                     `json:"user_id"`
	Days        int                        `json:"days"`
	Burnout     *scoring.BurnoutPrediction `json:"burnout"`
	Health      scoring.HealthResult       `json:"health"`
	Trend       scoring.Trend              `json:"trend"`
	Insights    []domain.Insight           `json:"insights"`
	GeneratedAt time.Time                  `json:"generated_at"`
}

// Service generates and manages insights.
type Service struct {
	metrics    domain.MetricRepository
	insights   domain.InsightRepository
	thresholds scoring.Thresholds
	now        func() time.Time
}

// NewService constructs a Service.
func NewService(metrics domain.MetricRepository, insights domain.InsightRepository, thresholds scoring.Thresholds) *Service {
	return &Service{metrics: metrics, insights: insights, thresholds: thresholds, now: time.Now}
}

func (s *Service) trailing(ctx context.Context, userID string) ([]domain.DailyMetric, error) {
	to := domain.DayStart(s.now())
	rows, err := s.metrics.ListDailyMetrics(ctx, userID, to.AddDate(0, 0, -(lookbackDays-1)), to)
	if err != nil {
		return nil, fmt.Errorf("load metrics: %w", err)
	}
	return rows, nil
}

// Generate scores the trailing metrics, replaces the user's undismissed insights and emits insights.generated.
func (s *Service) Generate(ctx context.Context, userID string) (*Report, error) {
	rows, err := s.trailing(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	report := &Report{
		UserID:      userID,
		Days:        len(rows),
		Burnout:     scoring.GenerateBurnoutPrediction(rows, s.thresholds),
		Health:      scoring.HealthScore(rows, s.thresholds),
		Trend:       scoring.ProductivityTrend(rows),
		GeneratedAt: now,
	}
	report.Insights = buildInsights(userID, report, now)

	payload := events.InsightsGenerated{
		UserID:      userID,
		HealthScore: report.Health.Score,
		Insights:    len(report.Insights),
		GeneratedAt: now,
	}
	if report.Burnout != nil {
		risk := report.Burnout.RiskScore
		payload.BurnoutRisk = &risk
		payload.RiskLevel = report.Burnout.Level
	}
	outbox := []domain.OutboxEvent{{
		EventType:    events.TypeInsightsGenerated,
		AggregateID:  userID,
		PartitionKey: userID,
		Payload:      payload,
	}}

	if err := s.insights.ReplaceInsights(ctx, userID, report.Insights, outbox); err != nil {
		return nil, fmt.Errorf("store insights: %w", err)
	}
	observability.RecordInsightsGenerated()
	return report, nil
}

// List returns stored insights, newest first.
func (s *Service) List(ctx context.Context, userID string, includeDismissed bool) ([]domain.Insight, error) {
	return s.insights.ListInsights(ctx, userID, includeDismissed)
}

// Dismiss hides an insight from the default listing.
func (s *Service) Dismiss(ctx context.Context, userID, insightID string) error {
	return s.insights.DismissInsight(ctx, userID, insightID)
}

func buildInsights(userID string, r *Report, now time.Time) []domain.Insight {
	out := make([]domain.Insight, 0, 8)
	add := func(kind domain.InsightKind, title, body string, score float64, severity string) {
		out = append(out, domain.Insight{
			ID:        uuid.NewString(),
			UserID:    userID,
			Kind:      kind,
			Title:     title,
			Body:      body,
			Score:     score,
			Severity:  severity,
			CreatedAt: now,
		})
	}

	if r.Burnout != nil {
		body := "No burnout signals in your recent activity."
		if len(r.Burnout.Factors) > 0 {
			body = joinSentences(r.Burnout.Factors)
		}
		add(domain.InsightBurnout, fmt.Sprintf("Burnout risk is %s", r.Burnout.Level), body, r.Burnout.RiskScore, r.Burnout.Level)
		for _, rec := range r.Burnout.Recommendations {
			add(domain.InsightRecommendation, "Recommendation", rec, 0, "info")
		}
	}

	healthBody := fmt.Sprintf("Consistency %.0f/30, collaboration %.0f/20, balance %.0f/30, focus %.0f/20.",
		r.Health.Consistency, r.Health.Collaboration, r.Health.Balance, r.Health.Focus)
	if !r.Health.Sufficient {
		healthBody = "Not enough activity yet. Sync at least a week of GitHub data for a full score."
	}
	add(domain.InsightHealth, fmt.Sprintf("Developer health score: %d", r.Health.Score), healthBody, float64(r.Health.Score), healthSeverity(r.Health))

	add(domain.InsightProductivity, trendTitle(r.Trend),
		fmt.Sprintf("%d contributions this week against %d the week before.", r.Trend.Current, r.Trend.Previous),
		r.Trend.ChangePercent, "info")
	return out
}

func healthSeverity(h scoring.HealthResult) string {
	switch {
	case !h.Sufficient:
		return "info"
	case h.Score >= 70:
		return "good"
	case h.Score >= 40:
		return "fair"
	default:
		return "poor"
	}
}

func trendTitle(t scoring.Trend) string {
	switch t.Direction {
	case scoring.TrendUp:
		return "Productivity is trending up"
	case scoring.TrendDown:
		return "Productivity is trending down"
	default:
		return "Productivity is steady"
	}
}

func joinSentences(parts []string) string {
	return strings.Join(parts, ". ") + "."
}
