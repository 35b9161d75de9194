package models

import (
	"time"

	id "botregistry/pkg/domain"
	dErrors "botregistry/pkg/domain-errors"
)

// InstitutionStatus is the operational state of an institution.
type InstitutionStatus string

const (
	InstitutionStatusActive   InstitutionStatus = "active"
	InstitutionStatusDisabled InstitutionStatus = "disabled"
)

func (s InstitutionStatus) IsValid() bool {
	return s == InstitutionStatusActive || s == InstitutionStatusDisabled
}

// ParseInstitutionStatus parses a wire value into an InstitutionStatus.
func ParseInstitutionStatus(raw string) (InstitutionStatus, error) {
	s := InstitutionStatus(raw)
	if !s.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown institution status %q", raw)
	}
	return s, nil
}

// Institution is the aggregate root for an organization that owns participants.
//
// Invariants:
//   - Name is non-empty, at most 128 characters, and unique across all
//     institutions (exact ordinal comparison, enforced by the store)
//   - Status is either active or disabled
//   - CreatedAt is immutable after construction
//
// An institution does not own its participants' lifecycle: deleting an
// institution is refused while any participant still references it, rather
// than cascading.
type Institution struct {
	ID        id.InstitutionID  `json:"id"`
	Name      string            `json:"name"`
	Status    InstitutionStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (i *Institution) IsActive() bool {
	return i.Status == InstitutionStatusActive
}

// NewInstitution constructs an institution, validating its invariants.
func NewInstitution(instID id.InstitutionID, name string, status InstitutionStatus, now time.Time) (*Institution, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "institution name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "institution name must be 128 characters or less")
	}
	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid institution status")
	}
	return &Institution{
		ID:        instID,
		Name:      name,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
