package participant

import (
	"context"
	"sort"
	"sync"

	"botregistry/internal/registry/models"
	id "botregistry/pkg/domain"
	"botregistry/pkg/platform/sentinel"
)

// InMemory is a process-local participant store backed by a mutex-guarded map.
//
// The lock is held across composite operations, so within this store
// check-then-act sequences are linearized. The API-key index is not unique;
// lookup returns the first match and callers treat duplicates as undefined.
type InMemory struct {
	mu   sync.RWMutex
	byID map[id.ParticipantID]models.Participant
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[id.ParticipantID]models.Participant)}
}

// CreateIfNameAvailable inserts p unless another participant already holds its
// name. Name comparison is exact ordinal.
func (s *InMemory) CreateIfNameAvailable(_ context.Context, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Name == p.Name {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.byID[p.ID] = *p
	return nil
}

// Update overwrites the record at p.ID. Fails with sentinel.ErrNotFound if the
// ID is unknown and sentinel.ErrAlreadyUsed if a different participant holds
// the target name.
func (s *InMemory) Update(_ context.Context, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for otherID, existing := range s.byID {
		if otherID != p.ID && existing.Name == p.Name {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.byID[p.ID] = *p
	return nil
}

func (s *InMemory) FindByID(_ context.Context, partID id.ParticipantID) (*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.byID[partID]; ok {
		return &p, nil
	}
	return nil, sentinel.ErrNotFound
}

// FindByAPIKey returns the first participant whose APIKey equals key. The
// store does not enforce key uniqueness; with duplicates the winner is
// unspecified.
func (s *InMemory) FindByAPIKey(_ context.Context, key string) (*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.byID {
		if p.APIKey == key {
			p := p
			return &p, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// List returns participants passing the filter, ordered by name.
func (s *InMemory) List(_ context.Context, filter models.ParticipantFilter) ([]*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Participant, 0, len(s.byID))
	for _, p := range s.byID {
		if !filter.Matches(&p) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListByInstitution returns all participants referencing instID, ordered by
// name, regardless of status.
func (s *InMemory) ListByInstitution(_ context.Context, instID id.InstitutionID) ([]*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Participant
	for _, p := range s.byID {
		if p.InstitutionID == instID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UpdateStatus mutates only the Status field of the record at partID and
// returns the updated record. Target-status narrowing is the service's job.
func (s *InMemory) UpdateStatus(_ context.Context, partID id.ParticipantID, status models.ParticipantStatus) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[partID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	p.Status = status
	s.byID[partID] = p
	return &p, nil
}

// Delete removes the record at partID, reporting whether it existed.
func (s *InMemory) Delete(_ context.Context, partID id.ParticipantID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[partID]; !ok {
		return false, nil
	}
	delete(s.byID, partID)
	return true, nil
}
