package memory

import (
	"context"
	"strconv"

	"github.com/raddispatch/distengine/internal/entity"
	"github.com/raddispatch/distengine/internal/repository"
)

// RunRepository is the in-memory repository.RunRepository backing the
// distribution-run audit trail (SPEC_FULL §12).
type RunRepository struct {
	store *Store
}

// NewRunRepository wraps store as a repository.RunRepository.
func NewRunRepository(store *Store) *RunRepository {
	return &RunRepository{store: store}
}

// Create records a new run.
func (r *RunRepository) Create(ctx context.Context, run *entity.DistributionRun) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.runs[run.ID] = *run
	return nil
}

// GetByID retrieves a run by ID.
func (r *RunRepository) GetByID(ctx context.Context, id entity.RunID) (*entity.DistributionRun, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	run, ok := r.store.runs[id]
	if !ok {
		return nil, &repository.NotFoundError{ResourceType: "DistributionRun", ResourceID: id.String()}
	}
	return &run, nil
}

// ListRecent lists the most recently started runs, up to limit.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]*entity.DistributionRun, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*entity.DistributionRun, 0, len(r.store.runs))
	for _, run := range r.store.runs {
		run := run
		out = append(out, &run)
	}
	sortRunsByStartedAtDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Update overwrites a run record, typically to set FinishedAt and the
// final counters once a distribution run completes.
func (r *RunRepository) Update(ctx context.Context, run *entity.DistributionRun) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.runs[run.ID]; !ok {
		return &repository.NotFoundError{ResourceType: "DistributionRun", ResourceID: run.ID.String()}
	}
	r.store.runs[run.ID] = *run
	return nil
}

// Count returns the number of recorded runs.
func (r *RunRepository) Count(ctx context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.runs)), nil
}

func sortRunsByStartedAtDesc(runs []*entity.DistributionRun) {
	for i := 1; i < len(runs); i++ {
		for j := i; j > 0 && runs[j].StartedAt.After(runs[j-1].StartedAt); j-- {
			runs[j], runs[j-1] = runs[j-1], runs[j]
		}
	}
}
