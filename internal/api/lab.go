package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

// ExperimentRequest is the payload for creating or updating an experiment.
type ExperimentRequest struct {
	Name       string                  `json:"name"`
	Hypothesis string                  `json:"hypothesis"`
	Status     domain.ExperimentStatus `json:"status"`
}

// BenchmarkRequest attaches a benchmark to an experiment.
type BenchmarkRequest struct {
	Name          string  `json:"name"`
	Metric        string  `json:"metric"`
	Baseline      float64 `json:"baseline"`
	Target        float64 `json:"target"`
	Unit          string  `json:"unit"`
	LowerIsBetter bool    `json:"lower_is_better"`
}

// RunRequest records one measurement.
type RunRequest struct {
	BenchmarkID string    `json:"benchmark_id"`
	Value       float64   `json:"value"`
	Notes       string    `json:"notes"`
	RanAt       time.Time `json:"ran_at"`
}

func (req ExperimentRequest) input() domain.ExperimentInput {
	return domain.ExperimentInput{Name: req.Name, Hypothesis: req.Hypothesis, Status: req.Status}
}

func (h *Handler) registerLab(r *mux.Router) {
	r.HandleFunc("/api/lab/experiments", h.listExperiments).Methods(http.MethodGet)
	r.HandleFunc("/api/lab/experiments", h.createExperiment).Methods(http.MethodPost)
	r.HandleFunc("/api/lab/experiments/{id}", h.getExperiment).Methods(http.MethodGet)
	r.HandleFunc("/api/lab/experiments/{id}", h.updateExperiment).Methods(http.MethodPut)
	r.HandleFunc("/api/lab/experiments/{id}", h.deleteExperiment).Methods(http.MethodDelete)
	r.HandleFunc("/api/lab/experiments/{id}/benchmarks", h.addBenchmark).Methods(http.MethodPost)
	r.HandleFunc("/api/lab/experiments/{id}/runs", h.recordRun).Methods(http.MethodPost)
	r.HandleFunc("/api/lab/experiments/{id}/results", h.experimentResults).Methods(http.MethodGet)
}

func (h *Handler) listExperiments(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	exps, err := h.svc.Lab.List(r.Context(), claims.Subject)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if exps == nil {
		exps = []domain.Experiment{}
	}
	writeJSON(w, http.StatusOK, exps)
}

func (h *Handler) createExperiment(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req ExperimentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	exp, err := h.svc.Lab.Create(r.Context(), claims.Subject, req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, exp)
}

func (h *Handler) getExperiment(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	exp, err := h.svc.Lab.Get(r.Context(), claims.Subject, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (h *Handler) updateExperiment(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req ExperimentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	exp, err := h.svc.Lab.Update(r.Context(), claims.Subject, mux.Vars(r)["id"], req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (h *Handler) deleteExperiment(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	if err := h.svc.Lab.Delete(r.Context(), claims.Subject, mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *Handler) addBenchmark(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req BenchmarkRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	b, err := h.svc.Lab.AddBenchmark(r.Context(), claims.Subject, mux.Vars(r)["id"], domain.ExperimentBenchmark{
		Name:          req.Name,
		Metric:        req.Metric,
		Baseline:      req.Baseline,
		Target:        req.Target,
		Unit:          req.Unit,
		LowerIsBetter: req.LowerIsBetter,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) recordRun(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req RunRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	run, err := h.svc.Lab.RecordRun(r.Context(), claims.Subject, mux.Vars(r)["id"], domain.ExperimentTestRun{
		BenchmarkID: req.BenchmarkID,
		Value:       req.Value,
		Notes:       req.Notes,
		RanAt:       req.RanAt,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

func (h *Handler) experimentResults(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	results, err := h.svc.Lab.Results(r.Context(), claims.Subject, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if results == nil {
		results = []domain.BenchmarkResult{}
	}
	writeJSON(w, http.StatusOK, results)
}
