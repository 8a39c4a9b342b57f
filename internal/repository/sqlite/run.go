package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/raddispatch/distengine/internal/entity"
	"github.com/raddispatch/distengine/internal/repository"
)

// RunRepository implements repository.RunRepository for SQLite.
type RunRepository struct {
	db querier
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(db querier) *RunRepository {
	return &RunRepository{db: db}
}

// Create records a new distribution run at the start of its execution.
func (r *RunRepository) Create(ctx context.Context, run *entity.DistributionRun) error {
	query := `
		INSERT INTO distribution_runs (id, started_at, triggered_by)
		VALUES (?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, run.ID, run.StartedAt, run.TriggeredBy)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by ID.
func (r *RunRepository) GetByID(ctx context.Context, id entity.RunID) (*entity.DistributionRun, error) {
	run := &entity.DistributionRun{}
	query := `
		SELECT id, started_at, finished_at, triggered_by, pending_studies, available_doctors,
		       assigned, unassigned, total_weighted_tardiness, degraded
		FROM distribution_runs WHERE id = ?
	`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.StartedAt, &run.FinishedAt, &run.TriggeredBy, &run.PendingStudies,
		&run.AvailableDoctors, &run.Assigned, &run.Unassigned, &run.TotalWeightedTardiness, &run.Degraded,
	)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "DistributionRun", ResourceID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRecent lists the most recently started runs, up to limit.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]*entity.DistributionRun, error) {
	query := `
		SELECT id, started_at, finished_at, triggered_by, pending_studies, available_doctors,
		       assigned, unassigned, total_weighted_tardiness, degraded
		FROM distribution_runs ORDER BY started_at DESC LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*entity.DistributionRun
	for rows.Next() {
		run := &entity.DistributionRun{}
		if err := rows.Scan(
			&run.ID, &run.StartedAt, &run.FinishedAt, &run.TriggeredBy, &run.PendingStudies,
			&run.AvailableDoctors, &run.Assigned, &run.Unassigned, &run.TotalWeightedTardiness, &run.Degraded,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// Update overwrites a run's terminal state once the run completes.
func (r *RunRepository) Update(ctx context.Context, run *entity.DistributionRun) error {
	query := `
		UPDATE distribution_runs
		SET finished_at = ?, pending_studies = ?, available_doctors = ?, assigned = ?,
		    unassigned = ?, total_weighted_tardiness = ?, degraded = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		run.FinishedAt, run.PendingStudies, run.AvailableDoctors, run.Assigned,
		run.Unassigned, run.TotalWeightedTardiness, run.Degraded, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &repository.NotFoundError{ResourceType: "DistributionRun", ResourceID: run.ID.String()}
	}
	return nil
}

// Count returns the number of recorded runs.
func (r *RunRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM distribution_runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}
