package domain

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExperimentInput carries user-editable experiment fields.
type ExperimentInput struct {
	Name       string
	Hypothesis string
	Status     ExperimentStatus
}

// BenchmarkResult summarises the runs recorded against one benchmark.
type BenchmarkResult struct {
	Benchmark   ExperimentBenchmark `json:"benchmark"`
	Runs        int                 `json:"runs"`
	Latest      *float64            `json:"latest,omitempty"`
	Best        *float64            `json:"best,omitempty"`
	Improvement float64             `json:"improvement_percent"`
	TargetMet   bool                `json:"target_met"`
}

// LabService manages laboratory experiments.
type LabService struct {
	repo ExperimentRepository
	now  func() time.Time
}

// NewLabService constructs a LabService.
func NewLabService(repo ExperimentRepository) *LabService {
	return &LabService{repo: repo, now: time.Now}
}

// Create stores a new experiment in draft unless a status is given.
func (s *LabService) Create(ctx context.Context, userID string, in ExperimentInput) (*Experiment, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	status := in.Status
	if status == "" {
		status = ExperimentDraft
	}
	if !validStatus(status) {
		return nil, fmt.Errorf("%w: unsupported status %q", ErrValidation, status)
	}
	now := s.now().UTC()
	exp := Experiment{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       strings.TrimSpace(in.Name),
		Hypothesis: in.Hypothesis,
		Status:     status,
		Benchmarks: []ExperimentBenchmark{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateExperiment(ctx, exp); err != nil {
		return nil, err
	}
	return &exp, nil
}

// Get returns an experiment with its benchmarks.
func (s *LabService) Get(ctx context.Context, userID, experimentID string) (*Experiment, error) {
	exp, err := s.repo.GetExperiment(ctx, userID, experimentID)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, ErrNotFound
	}
	return exp, nil
}

// List returns the user's experiments.
func (s *LabService) List(ctx context.Context, userID string) ([]Experiment, error) {
	return s.repo.ListExperiments(ctx, userID)
}

// Update replaces the editable fields.
func (s *LabService) Update(ctx context.Context, userID, experimentID string, in ExperimentInput) (*Experiment, error) {
	exp, err := s.Get(ctx, userID, experimentID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) != "" {
		exp.Name = strings.TrimSpace(in.Name)
	}
	if in.Hypothesis != "" {
		exp.Hypothesis = in.Hypothesis
	}
	if in.Status != "" {
		if !validStatus(in.Status) {
			return nil, fmt.Errorf("%w: unsupported status %q", ErrValidation, in.Status)
		}
		exp.Status = in.Status
	}
	exp.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateExperiment(ctx, *exp); err != nil {
		return nil, err
	}
	return exp, nil
}

// Delete removes the experiment with its benchmarks and runs.
func (s *LabService) Delete(ctx context.Context, userID, experimentID string) error {
	return s.repo.DeleteExperiment(ctx, userID, experimentID)
}

// AddBenchmark attaches a benchmark to an owned experiment.
func (s *LabService) AddBenchmark(ctx context.Context, userID, experimentID string, b ExperimentBenchmark) (*ExperimentBenchmark, error) {
	if _, err := s.Get(ctx, userID, experimentID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(b.Name) == "" {
		return nil, fmt.Errorf("%w: benchmark name is required", ErrValidation)
	}
	b.ID = uuid.NewString()
	b.ExperimentID = experimentID
	if b.Metric == "" {
		b.Metric = b.Name
	}
	if err := s.repo.AddBenchmark(ctx, b); err != nil {
		return nil, err
	}
	return &b, nil
}

// RecordRun stores a measurement for one of the experiment's benchmarks.
func (s *LabService) RecordRun(ctx context.Context, userID, experimentID string, run ExperimentTestRun) (*ExperimentTestRun, error) {
	exp, err := s.Get(ctx, userID, experimentID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, b := range exp.Benchmarks {
		if b.ID == run.BenchmarkID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: unknown benchmark %q", ErrValidation, run.BenchmarkID)
	}
	if math.IsNaN(run.Value) || math.IsInf(run.Value, 0) {
		return nil, fmt.Errorf("%w: value must be finite", ErrValidation)
	}
	run.ID = uuid.NewString()
	run.ExperimentID = experimentID
	if run.RanAt.IsZero() {
		run.RanAt = s.now().UTC()
	}
	if err := s.repo.AddTestRun(ctx, run); err != nil {
		return nil, err
	}
	return &run, nil
}

// Results summarises every benchmark of the experiment.
func (s *LabService) Results(ctx context.Context, userID, experimentID string) ([]BenchmarkResult, error) {
	exp, err := s.Get(ctx, userID, experimentID)
	if err != nil {
		return nil, err
	}
	runs, err := s.repo.ListTestRuns(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	return SummariseRuns(exp.Benchmarks, runs), nil
}

// SummariseRuns groups runs per benchmark. Runs are expected in ran_at order.
func SummariseRuns(benchmarks []ExperimentBenchmark, runs []ExperimentTestRun) []BenchmarkResult {
	byBenchmark := make(map[string][]ExperimentTestRun, len(benchmarks))
	for _, run := range runs {
		byBenchmark[run.BenchmarkID] = append(byBenchmark[run.BenchmarkID], run)
	}

	out := make([]BenchmarkResult, 0, len(benchmarks))
	for _, b := range benchmarks {
		result := BenchmarkResult{Benchmark: b}
		group := byBenchmark[b.ID]
		result.Runs = len(group)
		if len(group) > 0 {
			latest := group[len(group)-1].Value
			best := group[0].Value
			for _, run := range group[1:] {
				if better(run.Value, best, b.LowerIsBetter) {
					best = run.Value
				}
			}
			result.Latest = &latest
			result.Best = &best
			if b.Baseline != 0 {
				delta := (best - b.Baseline) / math.Abs(b.Baseline) * 100
				if b.LowerIsBetter {
					delta = -delta
				}
				result.Improvement = math.Round(delta*10) / 10
			}
			result.TargetMet = best == b.Target || better(best, b.Target, b.LowerIsBetter)
		}
		out = append(out, result)
	}
	return out
}

func better(candidate, current float64, lowerIsBetter bool) bool {
	if lowerIsBetter {
		return candidate < current
	}
	return candidate > current
}

func validStatus(status ExperimentStatus) bool {
	switch status {
	case ExperimentDraft, ExperimentRunning, ExperimentCompleted:
		return true
	}
	return false
}
