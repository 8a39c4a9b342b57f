// Package postgres provides PostgreSQL repository implementations with integration tests
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/raddispatch/distengine/internal/entity"
)

// PostgresTestHelper provides utilities for PostgreSQL integration tests
type PostgresTestHelper struct {
	db        *sql.DB
	container testcontainers.Container
	ctx       context.Context
}

// NewPostgresTestHelper creates and starts a PostgreSQL container for testing
func NewPostgresTestHelper(ctx context.Context, t *testing.T) *PostgresTestHelper {
	// Create PostgreSQL container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "distengine_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	// Get container host and port
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	// Connect to database
	connStr := fmt.Sprintf("postgres://test:test@%s:%s/distengine_test?sslmode=disable",
		host, port.Port())

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("Failed to open database connection: %v", err)
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	// Create tables
	if err := createTestTables(ctx, db); err != nil {
		t.Fatalf("Failed to create test tables: %v", err)
	}

	return &PostgresTestHelper{
		db:        db,
		container: container,
		ctx:       ctx,
	}
}

// Close stops the PostgreSQL container and closes the database connection
func (h *PostgresTestHelper) Close(t *testing.T) {
	if err := h.db.Close(); err != nil {
		t.Logf("Warning: failed to close database: %v", err)
	}

	if err := h.container.Terminate(h.ctx); err != nil {
		t.Logf("Warning: failed to terminate container: %v", err)
	}
}

// DB returns the database connection
func (h *PostgresTestHelper) DB() *sql.DB {
	return h.db
}

// ClearTables truncates all tables (useful for test isolation)
func (h *PostgresTestHelper) ClearTables(ctx context.Context, t *testing.T) {
	tables := []string{
		"assignments",
		"distribution_runs",
		"doctors",
		"studies",
	}

	for _, table := range tables {
		if _, err := h.db.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			t.Logf("Warning: failed to truncate table %s: %v", table, err)
		}
	}
}

// createTestTables creates the schema the Snapshot Loader and Assignment
// Writer read and write, mirroring internal/repository/sqlite's schema.
func createTestTables(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS studies (
		id              BIGINT PRIMARY KEY,
		research_number TEXT NOT NULL,
		priority        TEXT,
		created_at      TIMESTAMPTZ,
		study_type_id   INTEGER,
		modality        TEXT,
		up_value        DOUBLE PRECISION
	);

	CREATE TABLE IF NOT EXISTS doctors (
		id              BIGINT PRIMARY KEY,
		fio_alias       TEXT NOT NULL,
		modality        TEXT,
		max_up_per_day  INTEGER,
		time_start      TIMESTAMPTZ,
		time_end        TIMESTAMPTZ,
		on_shift        BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS assignments (
		run_id              UUID NOT NULL,
		study_id            BIGINT PRIMARY KEY,
		doctor_id           BIGINT NOT NULL,
		priority            TEXT,
		weight              DOUBLE PRECISION,
		deadline            TIMESTAMPTZ,
		completion_time     TIMESTAMPTZ,
		tardiness_hours     DOUBLE PRECISION,
		weighted_tardiness  DOUBLE PRECISION,
		up_value            DOUBLE PRECISION,
		atc_index           DOUBLE PRECISION
	);
	CREATE INDEX IF NOT EXISTS idx_assignments_doctor_id ON assignments(doctor_id);
	CREATE INDEX IF NOT EXISTS idx_assignments_run_id ON assignments(run_id);

	CREATE TABLE IF NOT EXISTS distribution_runs (
		id                        UUID PRIMARY KEY,
		started_at                TIMESTAMPTZ NOT NULL,
		finished_at                TIMESTAMPTZ,
		triggered_by              TEXT,
		pending_studies            INTEGER,
		available_doctors          INTEGER,
		assigned                  INTEGER,
		unassigned                INTEGER,
		total_weighted_tardiness  DOUBLE PRECISION,
		degraded                  BOOLEAN NOT NULL DEFAULT FALSE
	);
	`

	_, err := db.ExecContext(ctx, schema)
	return err
}

func TestStudyRepository_GetPending_OrdersCitoFirstAndSkipsAssigned(t *testing.T) {
	ctx := context.Background()
	helper := NewPostgresTestHelper(ctx, t)
	defer helper.Close(t)
	defer helper.ClearTables(ctx, t)

	now := time.Now().UTC()
	_, err := helper.DB().ExecContext(ctx, `
		INSERT INTO studies (id, research_number, priority, created_at, modality, up_value)
		VALUES
			(1, 'RN-1', 'normal', $1, 'CT', 1.0),
			(2, 'RN-2', 'cito',   $1, 'MRI', 2.5),
			(3, 'RN-3', 'asap',   $1, 'CT', 1.2)
	`, now)
	require.NoError(t, err)

	_, err = helper.DB().ExecContext(ctx, `
		INSERT INTO assignments (run_id, study_id, doctor_id)
		VALUES ('00000000-0000-0000-0000-000000000001', 3, 9)
	`)
	require.NoError(t, err)

	repo := NewStudyRepository(helper.DB())
	pending, err := repo.GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, 2, pending[0].ID)
	assert.Equal(t, 1, pending[1].ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestDoctorRepository_GetOnShift_ExcludesOffShift(t *testing.T) {
	ctx := context.Background()
	helper := NewPostgresTestHelper(ctx, t)
	defer helper.Close(t)
	defer helper.ClearTables(ctx, t)

	_, err := helper.DB().ExecContext(ctx, `
		INSERT INTO doctors (id, fio_alias, modality, max_up_per_day, on_shift)
		VALUES
			(1, 'Ivanova I.I.', 'CT', 10, TRUE),
			(2, 'Petrov P.P.', 'MRI', 8, FALSE)
	`)
	require.NoError(t, err)

	repo := NewDoctorRepository(helper.DB())
	doctors, err := repo.GetOnShift(ctx)
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, 1, doctors[0].ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAssignmentRepository_CreateBatch_ThenQueryByStudyDoctorAndRun(t *testing.T) {
	ctx := context.Background()
	helper := NewPostgresTestHelper(ctx, t)
	defer helper.Close(t)
	defer helper.ClearTables(ctx, t)

	runID := entity.NewRunID()
	now := time.Now().UTC()
	assignments := []entity.Assignment{
		{StudyID: 1, DoctorID: 10, Priority: entity.PriorityCito, Weight: 100, Deadline: now, CompletionTime: now, UPValue: 1.5},
		{StudyID: 2, DoctorID: 10, Priority: entity.PriorityNormal, Weight: 1, Deadline: now, CompletionTime: now, UPValue: 2.0},
	}

	repo := NewAssignmentRepository(helper.DB())
	unpersisted, err := repo.CreateBatch(ctx, runID, assignments)
	require.NoError(t, err)
	require.Empty(t, unpersisted)

	byStudy, err := repo.GetByStudy(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, byStudy.DoctorID)
	assert.Equal(t, entity.PriorityCito, byStudy.Priority)

	byDoctor, err := repo.GetByDoctor(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, byDoctor, 2)

	byRun, err := repo.GetByRun(ctx, runID)
	require.NoError(t, err)
	assert.Len(t, byRun, 2)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

// TestAssignmentRepository_CreateBatch_RetriesIndividuallyOnConflict exercises
// spec §4.7's partial-failure path: one assignment in the batch collides with
// a study_id already committed by a prior run, forcing the UNNEST statement
// to fail as a whole. CreateBatch must fall back to inserting the remaining
// assignments one at a time and report only the colliding one as unpersisted.
func TestAssignmentRepository_CreateBatch_RetriesIndividuallyOnConflict(t *testing.T) {
	ctx := context.Background()
	helper := NewPostgresTestHelper(ctx, t)
	defer helper.Close(t)
	defer helper.ClearTables(ctx, t)

	repo := NewAssignmentRepository(helper.DB())
	now := time.Now().UTC()

	firstRun := entity.NewRunID()
	_, err := repo.CreateBatch(ctx, firstRun, []entity.Assignment{
		{StudyID: 1, DoctorID: 10, Priority: entity.PriorityCito, Deadline: now, CompletionTime: now},
	})
	require.NoError(t, err)

	secondRun := entity.NewRunID()
	unpersisted, err := repo.CreateBatch(ctx, secondRun, []entity.Assignment{
		{StudyID: 1, DoctorID: 11, Priority: entity.PriorityCito, Deadline: now, CompletionTime: now},
		{StudyID: 2, DoctorID: 11, Priority: entity.PriorityNormal, Deadline: now, CompletionTime: now},
	})
	require.Error(t, err)
	require.Len(t, unpersisted, 1)
	assert.Equal(t, 1, unpersisted[0].StudyID)

	// The non-conflicting assignment still made it in despite the batch error.
	byStudy, err := repo.GetByStudy(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 11, byStudy.DoctorID)

	// The conflicting study keeps its original owner (ON CONFLICT DO NOTHING).
	byStudy, err = repo.GetByStudy(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, byStudy.DoctorID)
}

func TestRunRepository_CreateGetByIDUpdateListRecentCount(t *testing.T) {
	ctx := context.Background()
	helper := NewPostgresTestHelper(ctx, t)
	defer helper.Close(t)
	defer helper.ClearTables(ctx, t)

	repo := NewRunRepository(helper.DB())
	run := &entity.DistributionRun{
		ID:          entity.NewRunID(),
		StartedAt:   time.Now().UTC(),
		TriggeredBy: "http",
	}
	require.NoError(t, repo.Create(ctx, run))

	fetched, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "http", fetched.TriggeredBy)

	run.FinishedAt = run.StartedAt.Add(time.Minute)
	run.Assigned = 4
	run.Unassigned = 1
	run.Degraded = true
	require.NoError(t, repo.Update(ctx, run))

	fetched, err = repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, fetched.Assigned)
	assert.True(t, fetched.Degraded)

	recent, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
