package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

// GoalRequest is the payload for creating or updating a goal.
type GoalRequest struct {
	Title     string            `json:"title"`
	Metric    string            `json:"metric"`
	Target    int               `json:"target"`
	Period    domain.GoalPeriod `json:"period"`
	DueDate   *time.Time        `json:"due_date,omitempty"`
	Completed bool              `json:"completed"`
}

func (req GoalRequest) input() domain.GoalInput {
	period := req.Period
	if period == "" {
		period = domain.GoalWeekly
	}
	return domain.GoalInput{
		Title:   req.Title,
		Metric:  req.Metric,
		Target:  req.Target,
		Period:  period,
		DueDate: req.DueDate,
	}
}

func (h *Handler) registerGoals(r *mux.Router) {
	r.HandleFunc("/api/goals", h.listGoals).Methods(http.MethodGet)
	r.HandleFunc("/api/goals", h.createGoal).Methods(http.MethodPost)
	r.HandleFunc("/api/goals/{id}", h.updateGoal).Methods(http.MethodPut)
	r.HandleFunc("/api/goals/{id}", h.deleteGoal).Methods(http.MethodDelete)
}

func (h *Handler) listGoals(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	goals, err := h.svc.Goals.List(r.Context(), claims.Subject)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (h *Handler) createGoal(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req GoalRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	goal, err := h.svc.Goals.Create(r.Context(), claims.Subject, req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (h *Handler) updateGoal(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req GoalRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	goal, err := h.svc.Goals.Update(r.Context(), claims.Subject, mux.Vars(r)["id"], req.input(), req.Completed)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *Handler) deleteGoal(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	if err := h.svc.Goals.Delete(r.Context(), claims.Subject, mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
