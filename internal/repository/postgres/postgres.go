// Package postgres implements repository.Database against PostgreSQL
// via database/sql and lib/pq, grounded on the teacher's postgres
// package. Declared alongside it, internal/repository/sqlite offers
// the same interfaces over modernc.org/sqlite for single-binary
// deployments that don't want a Postgres dependency.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/raddispatch/distengine/internal/repository"
)

// DB wraps a SQL database connection for all PostgreSQL operations.
type DB struct {
	*sql.DB

	studies     *StudyRepository
	doctors     *DoctorRepository
	assignments *AssignmentRepository
	runs        *RunRepository
}

// New creates a new PostgreSQL database connection.
func New(connString string) (*DB, error) {
	sqldb, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{DB: sqldb}
	db.studies = NewStudyRepository(sqldb)
	db.doctors = NewDoctorRepository(sqldb)
	db.assignments = NewAssignmentRepository(sqldb)
	db.runs = NewRunRepository(sqldb)

	return db, nil
}

// StudyRepository returns the StudyRepository.
func (db *DB) StudyRepository() repository.StudyRepository { return db.studies }

// DoctorRepository returns the DoctorRepository.
func (db *DB) DoctorRepository() repository.DoctorRepository { return db.doctors }

// AssignmentRepository returns the AssignmentRepository.
func (db *DB) AssignmentRepository() repository.AssignmentRepository { return db.assignments }

// RunRepository returns the RunRepository.
func (db *DB) RunRepository() repository.RunRepository { return db.runs }

// BeginTx starts a PostgreSQL transaction and returns it wrapped with
// the same repository accessors as DB.
func (db *DB) BeginTx(ctx context.Context) (repository.Transaction, error) {
	tx, err := db.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{
		tx:          tx,
		studies:     NewStudyRepository(tx),
		doctors:     NewDoctorRepository(tx),
		assignments: NewAssignmentRepository(tx),
		runs:        NewRunRepository(tx),
	}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}

// Health checks database connectivity.
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Tx is the PostgreSQL repository.Transaction.
type Tx struct {
	tx          *sql.Tx
	studies     *StudyRepository
	doctors     *DoctorRepository
	assignments *AssignmentRepository
	runs        *RunRepository
}

// Commit commits the transaction.
func (t *Tx) Commit() error { return t.tx.Commit() }

// Rollback rolls back the transaction.
func (t *Tx) Rollback() error { return t.tx.Rollback() }

// StudyRepository returns the transaction-scoped StudyRepository.
func (t *Tx) StudyRepository() repository.StudyRepository { return t.studies }

// DoctorRepository returns the transaction-scoped DoctorRepository.
func (t *Tx) DoctorRepository() repository.DoctorRepository { return t.doctors }

// AssignmentRepository returns the transaction-scoped AssignmentRepository.
func (t *Tx) AssignmentRepository() repository.AssignmentRepository { return t.assignments }

// RunRepository returns the transaction-scoped RunRepository.
func (t *Tx) RunRepository() repository.RunRepository { return t.runs }

// querier is satisfied by both *sql.DB and *sql.Tx, letting every
// repository below work unchanged whether it runs standalone or
// inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
