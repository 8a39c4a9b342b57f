package memory

import (
	"context"

	"github.com/raddispatch/distengine/internal/repository"
)

// Database is the in-memory repository.Database.
type Database struct {
	store       *Store
	studies     *StudyRepository
	doctors     *DoctorRepository
	assignments *AssignmentRepository
	runs        *RunRepository
}

// NewDatabase creates a Database backed by a fresh in-memory Store.
func NewDatabase() *Database {
	store := NewStore()
	return &Database{
		store:       store,
		studies:     NewStudyRepository(store),
		doctors:     NewDoctorRepository(store),
		assignments: NewAssignmentRepository(store),
		runs:        NewRunRepository(store),
	}
}

// Store exposes the backing Store so tests can seed fixtures directly.
func (d *Database) Store() *Store { return d.store }

// StudyRepository returns the StudyRepository.
func (d *Database) StudyRepository() repository.StudyRepository { return d.studies }

// DoctorRepository returns the DoctorRepository.
func (d *Database) DoctorRepository() repository.DoctorRepository { return d.doctors }

// AssignmentRepository returns the AssignmentRepository.
func (d *Database) AssignmentRepository() repository.AssignmentRepository { return d.assignments }

// RunRepository returns the RunRepository.
func (d *Database) RunRepository() repository.RunRepository { return d.runs }

// BeginTx returns a no-op transaction: the in-memory store already
// serializes every operation under its mutex, so there is nothing
// separate to commit or roll back.
func (d *Database) BeginTx(ctx context.Context) (repository.Transaction, error) {
	return &noopTx{db: d}, nil
}

// Close is a no-op for the in-memory store.
func (d *Database) Close() error { return nil }

// Health always reports healthy for the in-memory store.
func (d *Database) Health(ctx context.Context) error { return nil }

type noopTx struct {
	db *Database
}

func (t *noopTx) Commit() error   { return nil }
func (t *noopTx) Rollback() error { return nil }

func (t *noopTx) StudyRepository() repository.StudyRepository           { return t.db.studies }
func (t *noopTx) DoctorRepository() repository.DoctorRepository         { return t.db.doctors }
func (t *noopTx) AssignmentRepository() repository.AssignmentRepository { return t.db.assignments }
func (t *noopTx) RunRepository() repository.RunRepository               { return t.db.runs }
