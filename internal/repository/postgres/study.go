package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/raddispatch/distengine/internal/distribution"
	"github.com/raddispatch/distengine/internal/entity"
)

// StudyRepository implements repository.StudyRepository for PostgreSQL.
type StudyRepository struct {
	db querier
}

// NewStudyRepository creates a new StudyRepository.
func NewStudyRepository(db querier) *StudyRepository {
	return &StudyRepository{db: db}
}

// GetPending retrieves every study not yet committed to an assignment,
// ordered by priority then release time per spec §4.3's Snapshot Loader
// component. Optional columns come back nullable exactly as stored;
// defaulting happens in internal/distribution.ResolveStudy, not here.
func (r *StudyRepository) GetPending(ctx context.Context) ([]distribution.RawStudy, error) {
	query := `
		SELECT s.id, s.research_number, s.priority, s.created_at, s.study_type_id, s.modality, s.up_value
		FROM studies s
		LEFT JOIN assignments a ON a.study_id = s.id
		WHERE a.study_id IS NULL
		ORDER BY
			CASE s.priority WHEN 'cito' THEN 0 WHEN 'asap' THEN 1 ELSE 2 END,
			s.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending studies: %w", err)
	}
	defer rows.Close()

	var studies []distribution.RawStudy
	for rows.Next() {
		var (
			s        distribution.RawStudy
			priority sql.NullString
			created  sql.NullTime
			typeID   sql.NullInt64
			modality sql.NullString
			upValue  sql.NullFloat64
		)

		if err := rows.Scan(&s.ID, &s.ResearchNumber, &priority, &created, &typeID, &modality, &upValue); err != nil {
			return nil, fmt.Errorf("failed to scan study: %w", err)
		}

		if priority.Valid {
			p := entity.Priority(priority.String)
			s.Priority = &p
		}
		if created.Valid {
			s.CreatedAt = &created.Time
		}
		if typeID.Valid {
			id := int(typeID.Int64)
			s.StudyTypeID = &id
		}
		if modality.Valid {
			s.Modality = distribution.SingleModality(modality.String)
		} else {
			s.Modality = distribution.NoModality()
		}
		if upValue.Valid {
			v := upValue.Float64
			s.UPValue = &v
		}

		studies = append(studies, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating studies: %w", err)
	}

	return studies, nil
}

// Count returns the number of pending studies.
func (r *StudyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	query := `
		SELECT COUNT(*) FROM studies s
		LEFT JOIN assignments a ON a.study_id = s.id
		WHERE a.study_id IS NULL
	`
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending studies: %w", err)
	}
	return count, nil
}
