package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raddispatch/distengine/internal/entity"
)

func TestStudyRepository_GetPending_RoundTripsResolvedFields(t *testing.T) {
	db := NewDatabase()
	created := time.Date(2026, 7, 29, 8, 0, 0, 0, time.UTC)
	db.Store().SeedStudies(entity.Study{
		ID:             1,
		ResearchNumber: "RN-1",
		Priority:       entity.PriorityCito,
		CreatedAt:      created,
		ModalitySet:    entity.NewModalitySet("CT"),
		UPValue:        2.0,
	})

	raws, err := db.StudyRepository().GetPending(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, 1, raws[0].ID)
	assert.Equal(t, entity.PriorityCito, *raws[0].Priority)
	assert.Equal(t, 2.0, *raws[0].UPValue)
}

func TestAssignmentRepository_CreateBatch_RemovesStudyFromPending(t *testing.T) {
	db := NewDatabase()
	db.Store().SeedStudies(entity.Study{ID: 1, ResearchNumber: "RN-1"})

	runID := entity.NewRunID()
	unpersisted, err := db.AssignmentRepository().CreateBatch(context.Background(), runID, []entity.Assignment{
		{StudyID: 1, DoctorID: 5},
	})
	require.NoError(t, err)
	require.Empty(t, unpersisted)

	count, err := db.StudyRepository().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	got, err := db.AssignmentRepository().GetByStudy(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, got.DoctorID)

	byRun, err := db.AssignmentRepository().GetByRun(context.Background(), runID)
	require.NoError(t, err)
	assert.Len(t, byRun, 1)
}

func TestRunRepository_CreateThenUpdate(t *testing.T) {
	db := NewDatabase()
	run := &entity.DistributionRun{ID: entity.NewRunID(), TriggeredBy: "cli"}
	require.NoError(t, db.RunRepository().Create(context.Background(), run))

	run.Assigned = 3
	require.NoError(t, db.RunRepository().Update(context.Background(), run))

	got, err := db.RunRepository().GetByID(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Assigned)
}

func TestStudyRepository_QueryCountTracksReads(t *testing.T) {
	db := NewDatabase()
	_, _ = db.StudyRepository().GetPending(context.Background())
	_, _ = db.StudyRepository().GetPending(context.Background())
	assert.Equal(t, 2, db.Store().QueryCount())
}
