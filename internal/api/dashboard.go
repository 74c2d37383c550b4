package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
	"github.com/devansh054/dev-pulse-sub000/internal/persistence"
)

const maxActivityPage = 100

func (h *Handler) registerDashboard(r *mux.Router) {
	r.HandleFunc("/api/metrics/daily", h.dailyMetrics).Methods(http.MethodGet)
	r.HandleFunc("/api/dashboard/summary", h.dashboardSummary).Methods(http.MethodGet)
	r.HandleFunc("/api/ai/insights/{userId}", h.generateInsights).Methods(http.MethodGet)
	r.HandleFunc("/api/insights", h.listInsights).Methods(http.MethodGet)
	r.HandleFunc("/api/insights/{id}/dismiss", h.dismissInsight).Methods(http.MethodPost)
}

func (h *Handler) dailyMetrics(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	rows, err := h.svc.Metrics.Trailing(r.Context(), claims.Subject, queryInt(r, "days", 30))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if rows == nil {
		rows = []domain.DailyMetric{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) dashboardSummary(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	summary, err := h.svc.Insights.Summary(r.Context(), claims.Subject)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// generateInsights rescores the user's metrics. It needs a linked GitHub token, and
// only admins may generate reports for someone else.
func (h *Handler) generateInsights(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	if _, ok := requireGitHubToken(w, r); !ok {
		return
	}
	userID := mux.Vars(r)["userId"]
	if userID == "me" {
		userID = claims.Subject
	}
	if userID != claims.Subject && !h.isAdmin(claims) {
		writeError(w, http.StatusForbidden, "cannot generate insights for another user")
		return
	}
	report, err := h.svc.Insights.Generate(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) listInsights(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	includeDismissed, _ := strconv.ParseBool(r.URL.Query().Get("include_dismissed"))
	items, err := h.svc.Insights.List(r.Context(), claims.Subject, includeDismissed)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Insight{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) dismissInsight(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	if err := h.svc.Insights.Dismiss(r.Context(), claims.Subject, mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"dismissed": true})
}

// ActivityPage packages a page of the audit log.
type ActivityPage struct {
	Items      []domain.ActivityLog `json:"items"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

func (h *Handler) listActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	limit := queryInt(r, "limit", 20)
	if limit > maxActivityPage {
		limit = maxActivityPage
	}
	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cursor")
		return
	}
	items, next, err := h.svc.Activity.Recent(r.Context(), claims.Subject, cursor, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if items == nil {
		items = []domain.ActivityLog{}
	}
	writeJSON(w, http.StatusOK, ActivityPage{Items: items, NextCursor: persistence.EncodeCursor(next)})
}
