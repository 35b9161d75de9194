// Package domain holds strongly typed identifiers shared across layers.
//
// Each entity gets its own UUID-backed type so institution and participant
// IDs cannot be swapped by accident; the compiler enforces the distinction.
package domain

import (
	"github.com/google/uuid"

	dErrors "botregistry/pkg/domain-errors"
)

// InstitutionID identifies an institution record.
type InstitutionID uuid.UUID

// ParticipantID identifies a participant record.
type ParticipantID uuid.UUID

// NewInstitutionID returns a fresh random InstitutionID.
func NewInstitutionID() InstitutionID { return InstitutionID(uuid.New()) }

// NewParticipantID returns a fresh random ParticipantID.
func NewParticipantID() ParticipantID { return ParticipantID(uuid.New()) }

func (id InstitutionID) String() string { return uuid.UUID(id).String() }
func (id ParticipantID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero UUID.
func (id InstitutionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ParticipantID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseInstitutionID parses a string into an InstitutionID.
// IDs must be valid, non-empty, non-nil UUIDs.
func ParseInstitutionID(s string) (InstitutionID, error) {
	u, err := parseUUID(s, "institution id")
	return InstitutionID(u), err
}

// ParseParticipantID parses a string into a ParticipantID.
// IDs must be valid, non-empty, non-nil UUIDs.
func ParseParticipantID(s string) (ParticipantID, error) {
	u, err := parseUUID(s, "participant id")
	return ParticipantID(u), err
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", what)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil UUID", what)
	}
	return u, nil
}
