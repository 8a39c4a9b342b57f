package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/raddispatch/distengine/internal/entity"
	"github.com/raddispatch/distengine/internal/repository"
)

// AssignmentRepository implements repository.AssignmentRepository for
// PostgreSQL, grounded on the teacher's assignment repository (batch
// writes via pq.Array to avoid N+1 queries).
type AssignmentRepository struct {
	db querier
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(db querier) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// CreateBatch inserts every committed assignment from one run with a
// single UNNEST statement. Per spec §4.7 that batch failing is not
// itself a PersistenceFailure: it falls back to inserting each
// assignment individually (an idempotent upsert, so a re-run of an
// already-written study is a no-op) and returns only the subset that
// still failed, so the caller reports exactly those as unpersisted.
func (r *AssignmentRepository) CreateBatch(ctx context.Context, runID entity.RunID, assignments []entity.Assignment) ([]entity.Assignment, error) {
	if len(assignments) == 0 {
		return nil, nil
	}

	studyIDs := make([]int64, len(assignments))
	doctorIDs := make([]int64, len(assignments))
	priorities := make([]string, len(assignments))
	weights := make([]float64, len(assignments))
	deadlines := make([]interface{}, len(assignments))
	completions := make([]interface{}, len(assignments))
	tardiness := make([]float64, len(assignments))
	weightedTardiness := make([]float64, len(assignments))
	upValues := make([]float64, len(assignments))
	atcIndices := make([]float64, len(assignments))

	for i, a := range assignments {
		studyIDs[i] = int64(a.StudyID)
		doctorIDs[i] = int64(a.DoctorID)
		priorities[i] = string(a.Priority)
		weights[i] = a.Weight
		deadlines[i] = a.Deadline
		completions[i] = a.CompletionTime
		tardiness[i] = a.TardinessHours
		weightedTardiness[i] = a.WeightedTardiness
		upValues[i] = a.UPValue
		atcIndices[i] = a.ATCIndex
	}

	query := `
		INSERT INTO assignments
			(run_id, study_id, doctor_id, priority, weight, deadline, completion_time,
			 tardiness_hours, weighted_tardiness, up_value, atc_index)
		SELECT $1, * FROM UNNEST(
			$2::bigint[], $3::bigint[], $4::text[], $5::float8[], $6::timestamptz[],
			$7::timestamptz[], $8::float8[], $9::float8[], $10::float8[], $11::float8[]
		)
		ON CONFLICT (study_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		runID,
		pq.Array(studyIDs),
		pq.Array(doctorIDs),
		pq.Array(priorities),
		pq.Array(weights),
		pq.Array(deadlines),
		pq.Array(completions),
		pq.Array(tardiness),
		pq.Array(weightedTardiness),
		pq.Array(upValues),
		pq.Array(atcIndices),
	)
	if err == nil {
		return nil, nil
	}

	return r.retryIndividually(ctx, runID, assignments, err)
}

// retryIndividually re-issues one insert per assignment after the
// batch statement failed, collecting only the assignments that still
// don't make it in. A single assignment with a data problem (a
// constraint violation, say) no longer has to take the whole run's
// persistence down with it.
func (r *AssignmentRepository) retryIndividually(ctx context.Context, runID entity.RunID, assignments []entity.Assignment, batchErr error) ([]entity.Assignment, error) {
	const insertOne = `
		INSERT INTO assignments
			(run_id, study_id, doctor_id, priority, weight, deadline, completion_time,
			 tardiness_hours, weighted_tardiness, up_value, atc_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (study_id) DO NOTHING
	`

	var unpersisted []entity.Assignment
	for _, a := range assignments {
		_, err := r.db.ExecContext(ctx, insertOne,
			runID, a.StudyID, a.DoctorID, string(a.Priority), a.Weight, a.Deadline, a.CompletionTime,
			a.TardinessHours, a.WeightedTardiness, a.UPValue, a.ATCIndex,
		)
		if err != nil {
			unpersisted = append(unpersisted, a)
		}
	}

	if len(unpersisted) == 0 {
		return nil, nil
	}
	return unpersisted, fmt.Errorf("failed to persist %d of %d assignments after batch insert failed (%v)", len(unpersisted), len(assignments), batchErr)
}

// GetByStudy retrieves the assignment committed for a study, if any.
func (r *AssignmentRepository) GetByStudy(ctx context.Context, studyID int) (*entity.Assignment, error) {
	a := &entity.Assignment{}
	query := `
		SELECT study_id, doctor_id, priority, weight, deadline, completion_time,
		       tardiness_hours, weighted_tardiness, up_value, atc_index
		FROM assignments WHERE study_id = $1
	`
	var priority string
	err := r.db.QueryRowContext(ctx, query, studyID).Scan(
		&a.StudyID, &a.DoctorID, &priority, &a.Weight, &a.Deadline, &a.CompletionTime,
		&a.TardinessHours, &a.WeightedTardiness, &a.UPValue, &a.ATCIndex,
	)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "Assignment", ResourceID: fmt.Sprint(studyID)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	a.Priority = entity.Priority(priority)
	return a, nil
}

// GetByDoctor retrieves every assignment committed to a doctor.
func (r *AssignmentRepository) GetByDoctor(ctx context.Context, doctorID int) ([]*entity.Assignment, error) {
	return r.query(ctx, `
		SELECT study_id, doctor_id, priority, weight, deadline, completion_time,
		       tardiness_hours, weighted_tardiness, up_value, atc_index
		FROM assignments WHERE doctor_id = $1
		ORDER BY completion_time ASC
	`, doctorID)
}

// GetByRun retrieves every assignment committed during one run.
func (r *AssignmentRepository) GetByRun(ctx context.Context, runID entity.RunID) ([]*entity.Assignment, error) {
	return r.query(ctx, `
		SELECT study_id, doctor_id, priority, weight, deadline, completion_time,
		       tardiness_hours, weighted_tardiness, up_value, atc_index
		FROM assignments WHERE run_id = $1
		ORDER BY completion_time ASC
	`, runID)
}

func (r *AssignmentRepository) query(ctx context.Context, query string, arg interface{}) ([]*entity.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*entity.Assignment
	for rows.Next() {
		a := &entity.Assignment{}
		var priority string
		if err := rows.Scan(
			&a.StudyID, &a.DoctorID, &priority, &a.Weight, &a.Deadline, &a.CompletionTime,
			&a.TardinessHours, &a.WeightedTardiness, &a.UPValue, &a.ATCIndex,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.Priority = entity.Priority(priority)
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}

// Count returns the number of committed assignments.
func (r *AssignmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assignments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count assignments: %w", err)
	}
	return count, nil
}
