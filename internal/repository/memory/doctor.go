package memory

import (
	"context"

	"github.com/raddispatch/distengine/internal/distribution"
)

// DoctorRepository is the in-memory repository.DoctorRepository.
type DoctorRepository struct {
	store *Store
}

// NewDoctorRepository wraps store as a repository.DoctorRepository.
func NewDoctorRepository(store *Store) *DoctorRepository {
	return &DoctorRepository{store: store}
}

// GetOnShift returns every seeded doctor as a RawDoctor.
func (r *DoctorRepository) GetOnShift(ctx context.Context) ([]distribution.RawDoctor, error) {
	r.store.mu.Lock()
	r.store.queryCount++
	r.store.mu.Unlock()

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	raws := make([]distribution.RawDoctor, 0, len(r.store.doctors))
	for _, d := range r.store.doctors {
		maxUP := int(d.MaxUPPerDay)
		raws = append(raws, distribution.RawDoctor{
			ID:          d.ID,
			FIOAlias:    d.FIOAlias,
			Modality:    distribution.ManyModalities(d.ModalitySet.Slice()),
			MaxUPPerDay: &maxUP,
			TimeStart:   d.TimeStart,
			TimeEnd:     d.TimeEnd,
		})
	}
	return raws, nil
}

// Count returns the number of on-shift doctors.
func (r *DoctorRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.doctors)), nil
}
