package models

import (
	"strings"
	"time"

	id "botregistry/pkg/domain"
	dErrors "botregistry/pkg/domain-errors"
)

// ParticipantStatus is the operational state of a participant.
type ParticipantStatus string

const (
	ParticipantStatusActive   ParticipantStatus = "active"
	ParticipantStatusDisabled ParticipantStatus = "disabled"
)

func (s ParticipantStatus) IsValid() bool {
	return s == ParticipantStatusActive || s == ParticipantStatusDisabled
}

// ParseParticipantStatus parses a wire value into a ParticipantStatus.
func ParseParticipantStatus(raw string) (ParticipantStatus, error) {
	s := ParticipantStatus(raw)
	if !s.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown participant status %q", raw)
	}
	return s, nil
}

// ParticipantType classifies what kind of bot/service a participant is.
type ParticipantType string

const (
	ParticipantTypeChatbot    ParticipantType = "chatbot"
	ParticipantTypeClassifier ParticipantType = "classifier"
	ParticipantTypeDmr        ParticipantType = "dmr"
	ParticipantTypeUnknown    ParticipantType = "unknown"
)

func (t ParticipantType) IsValid() bool {
	switch t {
	case ParticipantTypeChatbot, ParticipantTypeClassifier, ParticipantTypeDmr, ParticipantTypeUnknown:
		return true
	}
	return false
}

// ParseParticipantType parses a wire value case-insensitively. The second
// return is false for unrecognized values so query-parameter parsing can
// silently drop them.
func ParseParticipantType(raw string) (ParticipantType, bool) {
	t := ParticipantType(strings.ToLower(raw))
	return t, t.IsValid()
}

// ParticipantFilter narrows a participant listing. Filters compose with AND
// semantics; an empty Types slice means "all types".
type ParticipantFilter struct {
	Types           []ParticipantType
	IncludeInactive bool
}

// Matches reports whether p passes the filter.
func (f ParticipantFilter) Matches(p *Participant) bool {
	if !f.IncludeInactive && p.Status != ParticipantStatusActive {
		return false
	}
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if p.Type == t {
			return true
		}
	}
	return false
}

// Participant is the aggregate root for a bot/service affiliated with an
// institution.
//
// Invariants:
//   - Name is non-empty, at most 128 characters, and unique across all
//     participants (exact ordinal comparison, enforced by the store)
//   - InstitutionID references an existing institution at create and update
//     time (enforced by the service layer)
//   - Status is either active or disabled
//
// APIKey is an opaque credential matched by value during authentication. The
// store does not enforce APIKey uniqueness; lookup returns the first match.
type Participant struct {
	ID            id.ParticipantID  `json:"id"`
	InstitutionID id.InstitutionID  `json:"institution_id"`
	Name          string            `json:"name"`
	Host          string            `json:"host"`
	Type          ParticipantType   `json:"type"`
	Status        ParticipantStatus `json:"status"`
	APIKey        string            `json:"-"` // Never serialize - opaque credential
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (p *Participant) IsActive() bool {
	return p.Status == ParticipantStatusActive
}

// NewParticipant constructs a participant, validating its invariants.
func NewParticipant(
	partID id.ParticipantID,
	instID id.InstitutionID,
	name string,
	host string,
	ptype ParticipantType,
	status ParticipantStatus,
	apiKey string,
	now time.Time,
) (*Participant, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "participant name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "participant name must be 128 characters or less")
	}
	if instID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "participant institution_id cannot be empty")
	}
	if !ptype.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid participant type")
	}
	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid participant status")
	}
	return &Participant{
		ID:            partID,
		InstitutionID: instID,
		Name:          name,
		Host:          host,
		Type:          ptype,
		Status:        status,
		APIKey:        apiKey,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
