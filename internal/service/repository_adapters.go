package service

import (
	"context"

	"github.com/raddispatch/distengine/internal/distribution"
	"github.com/raddispatch/distengine/internal/entity"
	"github.com/raddispatch/distengine/internal/repository"
)

// RepositoryStudyPort adapts a repository.StudyRepository to StudyReadPort.
type RepositoryStudyPort struct {
	Repo repository.StudyRepository
}

// PendingStudies delegates to the wrapped repository.
func (p RepositoryStudyPort) PendingStudies(ctx context.Context) ([]distribution.RawStudy, error) {
	return p.Repo.GetPending(ctx)
}

// RepositoryDoctorPort adapts a repository.DoctorRepository to DoctorReadPort.
type RepositoryDoctorPort struct {
	Repo repository.DoctorRepository
}

// OnShiftDoctors delegates to the wrapped repository.
func (p RepositoryDoctorPort) OnShiftDoctors(ctx context.Context) ([]distribution.RawDoctor, error) {
	return p.Repo.GetOnShift(ctx)
}

// RepositoryAssignmentWriter adapts a repository.AssignmentRepository to
// AssignmentWritePort.
type RepositoryAssignmentWriter struct {
	Repo repository.AssignmentRepository
}

// PersistAssignments delegates to the wrapped repository's batch write.
func (w RepositoryAssignmentWriter) PersistAssignments(ctx context.Context, runID entity.RunID, assignments []entity.Assignment) ([]entity.Assignment, error) {
	return w.Repo.CreateBatch(ctx, runID, assignments)
}

// RepositoryRunWriter adapts a repository.RunRepository to RunWritePort.
type RepositoryRunWriter struct {
	Repo repository.RunRepository
}

// StartRun creates the run record at the start of a distribution run.
func (w RepositoryRunWriter) StartRun(ctx context.Context, run entity.DistributionRun) error {
	return w.Repo.Create(ctx, &run)
}

// FinishRun updates the run record once the run completes.
func (w RepositoryRunWriter) FinishRun(ctx context.Context, run entity.DistributionRun) error {
	return w.Repo.Update(ctx, &run)
}
