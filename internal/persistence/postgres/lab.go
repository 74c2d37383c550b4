package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

const (
	experimentColumns = `id, user_id, name, hypothesis, status, created_at, updated_at`
	benchmarkColumns  = `id, experiment_id, name, metric, baseline, target, unit, lower_is_better`
)

func scanExperiment(row pgx.CollectableRow) (domain.Experiment, error) {
	var e domain.Experiment
	err := row.Scan(&e.ID, &e.UserID, &e.Name, &e.Hypothesis, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func scanBenchmark(row pgx.CollectableRow) (domain.ExperimentBenchmark, error) {
	var b domain.ExperimentBenchmark
	err := row.Scan(&b.ID, &b.ExperimentID, &b.Name, &b.Metric, &b.Baseline, &b.Target, &b.Unit, &b.LowerIsBetter)
	return b, err
}

// CreateExperiment implements domain.ExperimentRepository. Benchmarks are added separately.
func (r *Repository) CreateExperiment(ctx context.Context, exp domain.Experiment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO experiments (`+experimentColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		exp.ID, exp.UserID, exp.Name, exp.Hypothesis, exp.Status, exp.CreatedAt, exp.UpdatedAt)
	return err
}

// UpdateExperiment implements domain.ExperimentRepository.
func (r *Repository) UpdateExperiment(ctx context.Context, exp domain.Experiment) error {
	return affected(r.pool.Exec(ctx,
		`UPDATE experiments SET name = $3, hypothesis = $4, status = $5, updated_at = $6 WHERE id = $1 AND user_id = $2`,
		exp.ID, exp.UserID, exp.Name, exp.Hypothesis, exp.Status, exp.UpdatedAt))
}

// GetExperiment implements domain.ExperimentRepository, populating benchmarks.
func (r *Repository) GetExperiment(ctx context.Context, userID, experimentID string) (*domain.Experiment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+experimentColumns+` FROM experiments WHERE id = $1 AND user_id = $2`, experimentID, userID)
	if err != nil {
		return nil, err
	}
	exp, err := pgx.CollectExactlyOneRow(rows, scanExperiment)
	found, err := noRows(&exp, err)
	if found == nil || err != nil {
		return nil, err
	}
	if err := r.attachBenchmarks(ctx, []*domain.Experiment{found}); err != nil {
		return nil, err
	}
	return found, nil
}

// ListExperiments implements domain.ExperimentRepository.
func (r *Repository) ListExperiments(ctx context.Context, userID string) ([]domain.Experiment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+experimentColumns+` FROM experiments WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, scanExperiment)
	if err != nil {
		return nil, err
	}
	ptrs := make([]*domain.Experiment, len(out))
	for i := range out {
		ptrs[i] = &out[i]
	}
	return out, r.attachBenchmarks(ctx, ptrs)
}

func (r *Repository) attachBenchmarks(ctx context.Context, exps []*domain.Experiment) error {
	if len(exps) == 0 {
		return nil
	}
	ids := make([]string, len(exps))
	byID := make(map[string]*domain.Experiment, len(exps))
	for i, e := range exps {
		ids[i] = e.ID
		e.Benchmarks = []domain.ExperimentBenchmark{}
		byID[e.ID] = e
	}

	rows, err := r.pool.Query(ctx, `SELECT `+benchmarkColumns+` FROM experiment_benchmarks WHERE experiment_id::text = ANY($1) ORDER BY name`, ids)
	if err != nil {
		return err
	}
	benchmarks, err := pgx.CollectRows(rows, scanBenchmark)
	if err != nil {
		return err
	}
	for _, b := range benchmarks {
		if e, ok := byID[b.ExperimentID]; ok {
			e.Benchmarks = append(e.Benchmarks, b)
		}
	}
	return nil
}

// DeleteExperiment implements domain.ExperimentRepository; benchmarks and runs cascade.
func (r *Repository) DeleteExperiment(ctx context.Context, userID, experimentID string) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM experiments WHERE id = $1 AND user_id = $2`, experimentID, userID))
}

// AddBenchmark implements domain.ExperimentRepository.
func (r *Repository) AddBenchmark(ctx context.Context, b domain.ExperimentBenchmark) error {
	return affected(r.pool.Exec(ctx,
		`INSERT INTO experiment_benchmarks (`+benchmarkColumns+`)
         SELECT $1,$2,$3,$4,$5,$6,$7,$8 WHERE EXISTS (SELECT 1 FROM experiments WHERE id = $2)`,
		b.ID, b.ExperimentID, b.Name, b.Metric, b.Baseline, b.Target, b.Unit, b.LowerIsBetter))
}

// AddTestRun implements domain.ExperimentRepository. The benchmark must belong to the experiment.
func (r *Repository) AddTestRun(ctx context.Context, run domain.ExperimentTestRun) error {
	return affected(r.pool.Exec(ctx,
		`INSERT INTO experiment_test_runs (id, experiment_id, benchmark_id, value, notes, ran_at)
         SELECT $1,$2,$3,$4,$5,$6 WHERE EXISTS (SELECT 1 FROM experiment_benchmarks WHERE id = $3 AND experiment_id = $2)`,
		run.ID, run.ExperimentID, run.BenchmarkID, run.Value, run.Notes, run.RanAt))
}

// ListTestRuns implements domain.ExperimentRepository.
func (r *Repository) ListTestRuns(ctx context.Context, experimentID string) ([]domain.ExperimentTestRun, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, experiment_id, benchmark_id, value, notes, ran_at FROM experiment_test_runs WHERE experiment_id = $1 ORDER BY ran_at`, experimentID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ExperimentTestRun, error) {
		var tr domain.ExperimentTestRun
		err := row.Scan(&tr.ID, &tr.ExperimentID, &tr.BenchmarkID, &tr.Value, &tr.Notes, &tr.RanAt)
		return tr, err
	})
}
