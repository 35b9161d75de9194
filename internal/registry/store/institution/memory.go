package institution

import (
	"context"
	"sort"
	"sync"

	"botregistry/internal/registry/models"
	id "botregistry/pkg/domain"
	"botregistry/pkg/platform/sentinel"
)

// InMemory is a process-local institution store backed by a mutex-guarded map.
//
// The lock is held across composite operations (uniqueness check + insert,
// existence check + overwrite), so within this store check-then-act sequences
// are linearized. Cross-store sequences (e.g. an institution delete racing a
// participant create) are not; see the service layer.
type InMemory struct {
	mu   sync.RWMutex
	byID map[id.InstitutionID]models.Institution
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[id.InstitutionID]models.Institution)}
}

// CreateIfNameAvailable inserts inst unless another institution already holds
// its name. Name comparison is exact ordinal.
func (s *InMemory) CreateIfNameAvailable(_ context.Context, inst *models.Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Name == inst.Name {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.byID[inst.ID] = *inst
	return nil
}

// Update overwrites the record at inst.ID. Fails with sentinel.ErrNotFound if
// the ID is unknown and sentinel.ErrAlreadyUsed if a different institution
// holds the target name.
func (s *InMemory) Update(_ context.Context, inst *models.Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[inst.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for otherID, existing := range s.byID {
		if otherID != inst.ID && existing.Name == inst.Name {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.byID[inst.ID] = *inst
	return nil
}

func (s *InMemory) FindByID(_ context.Context, instID id.InstitutionID) (*models.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if inst, ok := s.byID[instID]; ok {
		return &inst, nil
	}
	return nil, sentinel.ErrNotFound
}

// List returns all institutions ordered by name.
func (s *InMemory) List(_ context.Context) ([]*models.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Institution, 0, len(s.byID))
	for _, inst := range s.byID {
		inst := inst
		out = append(out, &inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes the record at instID, reporting whether it existed.
func (s *InMemory) Delete(_ context.Context, instID id.InstitutionID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[instID]; !ok {
		return false, nil
	}
	delete(s.byID, instID)
	return true, nil
}
