package repository

import (
	"context"

	"github.com/raddispatch/distengine/internal/distribution"
	"github.com/raddispatch/distengine/internal/entity"
)

// Database provides access to all repositories backing a distribution
// run: the read-side snapshot (studies, doctors) and the write-side
// ledger (assignments, runs).
type Database interface {
	BeginTx(ctx context.Context) (Transaction, error)

	StudyRepository() StudyRepository
	DoctorRepository() DoctorRepository
	AssignmentRepository() AssignmentRepository
	RunRepository() RunRepository

	Close() error
	Health(ctx context.Context) error
}

// Transaction represents a database transaction spanning the
// assignment-persistence step of a distribution run (spec §4.7).
type Transaction interface {
	Commit() error
	Rollback() error

	StudyRepository() StudyRepository
	DoctorRepository() DoctorRepository
	AssignmentRepository() AssignmentRepository
	RunRepository() RunRepository
}

// StudyRepository defines data access operations for pending studies.
// It hands back the host's raw, nullable-field row shape — the
// Snapshot Loader's defaulting pass (distribution.ResolveStudy) runs
// in internal/service, not here, so every adapter shares one
// implementation of spec §9's Design Notes.
type StudyRepository interface {
	GetPending(ctx context.Context) ([]distribution.RawStudy, error)
	Count(ctx context.Context) (int64, error)
}

// DoctorRepository defines data access operations for on-shift doctors.
type DoctorRepository interface {
	GetOnShift(ctx context.Context) ([]distribution.RawDoctor, error)
	Count(ctx context.Context) (int64, error)
}

// AssignmentRepository defines data access operations for committed
// assignments. CreateBatch persists an entire Result Envelope's
// Assignments, preferring one round trip; per spec §4.7 a failure of
// that batch is retried study-by-study, and CreateBatch returns the
// subset that still could not be written (nil on full success) so the
// caller can report exactly those under entity.PersistenceFailureError
// rather than treating the whole run as unpersisted.
type AssignmentRepository interface {
	CreateBatch(ctx context.Context, runID entity.RunID, assignments []entity.Assignment) (unpersisted []entity.Assignment, err error)
	GetByStudy(ctx context.Context, studyID int) (*entity.Assignment, error)
	GetByDoctor(ctx context.Context, doctorID int) ([]*entity.Assignment, error)
	GetByRun(ctx context.Context, runID entity.RunID) ([]*entity.Assignment, error)
	Count(ctx context.Context) (int64, error)
}

// RunRepository defines data access operations for the distribution-run
// audit trail (SPEC_FULL §12).
type RunRepository interface {
	Create(ctx context.Context, run *entity.DistributionRun) error
	GetByID(ctx context.Context, id entity.RunID) (*entity.DistributionRun, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.DistributionRun, error)
	Update(ctx context.Context, run *entity.DistributionRun) error
	Count(ctx context.Context) (int64, error)
}

// NotFoundError represents a record not found error.
type NotFoundError struct {
	ResourceType string
	ResourceID   string
}

func (e *NotFoundError) Error() string {
	return "not found: " + e.ResourceType + " " + e.ResourceID
}

// IsNotFound checks if an error is a NotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// ValidationError represents a validation error raised by a repository
// before a write reaches the database.
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
