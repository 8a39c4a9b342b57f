// Package memory implements repository.Database entirely in process
// memory, guarded by a single mutex. It backs unit tests; the
// raddispatch commands open only the postgres or sqlite stores.
package memory

import (
	"sync"

	"github.com/raddispatch/distengine/internal/entity"
)

// Store is a shared in-memory table set for all entity types used by
// a distribution run.
type Store struct {
	mu sync.RWMutex

	studies     map[int]entity.Study
	doctors     map[int]entity.Doctor
	assignments map[int]entity.Assignment // keyed by StudyID
	runs        map[entity.RunID]entity.DistributionRun

	queryCount int
}

// NewStore creates a new empty in-memory store.
func NewStore() *Store {
	return &Store{
		studies:     make(map[int]entity.Study),
		doctors:     make(map[int]entity.Doctor),
		assignments: make(map[int]entity.Assignment),
		runs:        make(map[entity.RunID]entity.DistributionRun),
	}
}

// QueryCount returns the number of read operations served so far;
// tests use it to assert a handler didn't issue N+1 queries.
func (s *Store) QueryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryCount
}

// SeedStudies adds studies to the pending-study table (overwriting any
// with the same ID), for test fixtures.
func (s *Store) SeedStudies(studies ...entity.Study) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range studies {
		s.studies[st.ID] = st
	}
}

// SeedDoctors adds doctors to the on-shift-doctor table (overwriting
// any with the same ID), for test fixtures.
func (s *Store) SeedDoctors(doctors ...entity.Doctor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range doctors {
		s.doctors[d.ID] = d
	}
}
