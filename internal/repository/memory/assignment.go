package memory

import (
	"context"
	"strconv"

	"github.com/raddispatch/distengine/internal/entity"
	"github.com/raddispatch/distengine/internal/repository"
)

// AssignmentRepository is the in-memory repository.AssignmentRepository.
type AssignmentRepository struct {
	store *Store
	runOf map[int]entity.RunID
}

// NewAssignmentRepository wraps store as a repository.AssignmentRepository.
func NewAssignmentRepository(store *Store) *AssignmentRepository {
	return &AssignmentRepository{store: store, runOf: make(map[int]entity.RunID)}
}

// CreateBatch persists every assignment from one run, removing the
// assigned studies from the pending table so a subsequent run's
// snapshot reflects the commit. The in-memory store has no partial-
// failure mode of its own, so it always returns a nil unpersisted
// subset; it exists to satisfy repository.AssignmentRepository for the
// service layer's tests.
func (r *AssignmentRepository) CreateBatch(ctx context.Context, runID entity.RunID, assignments []entity.Assignment) ([]entity.Assignment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, a := range assignments {
		r.store.assignments[a.StudyID] = a
		r.runOf[a.StudyID] = runID
		delete(r.store.studies, a.StudyID)
	}
	return nil, nil
}

// GetByStudy returns the assignment committed for a study, if any.
func (r *AssignmentRepository) GetByStudy(ctx context.Context, studyID int) (*entity.Assignment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.assignments[studyID]
	if !ok {
		return nil, &repository.NotFoundError{ResourceType: "Assignment", ResourceID: strconv.Itoa(studyID)}
	}
	return &a, nil
}

// GetByDoctor returns every assignment committed to a doctor.
func (r *AssignmentRepository) GetByDoctor(ctx context.Context, doctorID int) ([]*entity.Assignment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*entity.Assignment
	for _, a := range r.store.assignments {
		if a.DoctorID == doctorID {
			a := a
			out = append(out, &a)
		}
	}
	return out, nil
}

// GetByRun returns every assignment committed during one run.
func (r *AssignmentRepository) GetByRun(ctx context.Context, runID entity.RunID) ([]*entity.Assignment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*entity.Assignment
	for studyID, a := range r.store.assignments {
		if r.runOf[studyID] == runID {
			a := a
			out = append(out, &a)
		}
	}
	return out, nil
}

// Count returns the number of committed assignments.
func (r *AssignmentRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.assignments)), nil
}
