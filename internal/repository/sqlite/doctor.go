package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/raddispatch/distengine/internal/distribution"
)

// DoctorRepository implements repository.DoctorRepository for SQLite.
type DoctorRepository struct {
	db querier
}

// NewDoctorRepository creates a new DoctorRepository.
func NewDoctorRepository(db querier) *DoctorRepository {
	return &DoctorRepository{db: db}
}

// GetOnShift retrieves every doctor active on today's shift.
func (r *DoctorRepository) GetOnShift(ctx context.Context) ([]distribution.RawDoctor, error) {
	query := `
		SELECT id, fio_alias, modality, max_up_per_day, time_start, time_end
		FROM doctors
		WHERE on_shift = 1
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query on-shift doctors: %w", err)
	}
	defer rows.Close()

	var doctors []distribution.RawDoctor
	for rows.Next() {
		var (
			d         distribution.RawDoctor
			modality  sql.NullString
			maxUP     sql.NullInt64
			timeStart sql.NullTime
			timeEnd   sql.NullTime
		)

		if err := rows.Scan(&d.ID, &d.FIOAlias, &modality, &maxUP, &timeStart, &timeEnd); err != nil {
			return nil, fmt.Errorf("failed to scan doctor: %w", err)
		}

		if modality.Valid {
			d.Modality = distribution.SingleModality(modality.String)
		} else {
			d.Modality = distribution.NoModality()
		}
		if maxUP.Valid {
			v := int(maxUP.Int64)
			d.MaxUPPerDay = &v
		}
		if timeStart.Valid {
			d.TimeStart = &timeStart.Time
		}
		if timeEnd.Valid {
			d.TimeEnd = &timeEnd.Time
		}

		doctors = append(doctors, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating doctors: %w", err)
	}

	return doctors, nil
}

// Count returns the number of on-shift doctors.
func (r *DoctorRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM doctors WHERE on_shift = 1`
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count on-shift doctors: %w", err)
	}
	return count, nil
}
