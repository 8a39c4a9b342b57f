package memory

import (
	"context"

	"github.com/raddispatch/distengine/internal/distribution"
)

// StudyRepository is the in-memory repository.StudyRepository.
type StudyRepository struct {
	store *Store
}

// NewStudyRepository wraps store as a repository.StudyRepository.
func NewStudyRepository(store *Store) *StudyRepository {
	return &StudyRepository{store: store}
}

// GetPending returns every seeded study as a RawStudy. The in-memory
// store only ever holds fully-resolved entity.Study records, so every
// optional field comes back populated rather than nil.
func (r *StudyRepository) GetPending(ctx context.Context) ([]distribution.RawStudy, error) {
	r.store.mu.Lock()
	r.store.queryCount++
	r.store.mu.Unlock()

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	raws := make([]distribution.RawStudy, 0, len(r.store.studies))
	for _, s := range r.store.studies {
		priority := s.Priority
		createdAt := s.CreatedAt
		upValue := s.UPValue
		raws = append(raws, distribution.RawStudy{
			ID:             s.ID,
			ResearchNumber: s.ResearchNumber,
			Priority:       &priority,
			CreatedAt:      &createdAt,
			StudyTypeID:    s.StudyTypeID,
			Modality:       distribution.ManyModalities(s.ModalitySet.Slice()),
			UPValue:        &upValue,
		})
	}
	return raws, nil
}

// Count returns the number of pending studies.
func (r *StudyRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.studies)), nil
}
