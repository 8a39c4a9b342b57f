// Package sqlite implements repository.Database against an embedded
// SQLite file via database/sql and modernc.org/sqlite (a pure-Go
// driver, so this package needs no cgo toolchain). It mirrors
// internal/repository/postgres's shape for operators who want a
// single-binary deployment without a separate Postgres instance.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/raddispatch/distengine/internal/repository"
)

// DB wraps a SQL database connection for all SQLite operations.
type DB struct {
	*sql.DB

	studies     *StudyRepository
	doctors     *DoctorRepository
	assignments *AssignmentRepository
	runs        *RunRepository
}

// New opens (creating if necessary) a SQLite database file at path.
func New(path string) (*DB, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids
	// "database is locked" errors under concurrent access.
	sqldb.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(ctx, sqldb); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	db := &DB{DB: sqldb}
	db.studies = NewStudyRepository(sqldb)
	db.doctors = NewDoctorRepository(sqldb)
	db.assignments = NewAssignmentRepository(sqldb)
	db.runs = NewRunRepository(sqldb)

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS studies (
	id INTEGER PRIMARY KEY,
	research_number TEXT,
	priority TEXT,
	created_at DATETIME,
	study_type_id INTEGER,
	modality TEXT,
	up_value REAL
);
CREATE TABLE IF NOT EXISTS doctors (
	id INTEGER PRIMARY KEY,
	fio_alias TEXT,
	modality TEXT,
	max_up_per_day INTEGER,
	time_start DATETIME,
	time_end DATETIME,
	on_shift INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS assignments (
	run_id TEXT,
	study_id INTEGER PRIMARY KEY,
	doctor_id INTEGER,
	priority TEXT,
	weight REAL,
	deadline DATETIME,
	completion_time DATETIME,
	tardiness_hours REAL,
	weighted_tardiness REAL,
	up_value REAL,
	atc_index REAL
);
CREATE TABLE IF NOT EXISTS distribution_runs (
	id TEXT PRIMARY KEY,
	started_at DATETIME,
	finished_at DATETIME,
	triggered_by TEXT,
	pending_studies INTEGER,
	available_doctors INTEGER,
	assigned INTEGER,
	unassigned INTEGER,
	total_weighted_tardiness REAL,
	degraded INTEGER
);
`

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

// StudyRepository returns the StudyRepository.
func (db *DB) StudyRepository() repository.StudyRepository { return db.studies }

// DoctorRepository returns the DoctorRepository.
func (db *DB) DoctorRepository() repository.DoctorRepository { return db.doctors }

// AssignmentRepository returns the AssignmentRepository.
func (db *DB) AssignmentRepository() repository.AssignmentRepository { return db.assignments }

// RunRepository returns the RunRepository.
func (db *DB) RunRepository() repository.RunRepository { return db.runs }

// BeginTx starts a SQLite transaction and returns it wrapped with the
// same repository accessors as DB.
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

// Tx is the SQLite repository.Transaction.
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

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
