// Package auth resolves presented API keys into authenticated identities.
//
// A nil identity is the canonical "unauthenticated" signal: providers never
// return an error for an unknown key, only for malformed input or backend
// failures.
package auth

import id "botregistry/pkg/domain"

// Identity is the set of claims attached to an authenticated caller for the
// duration of one request. It is constructed fresh per authentication attempt
// and never persisted.
//
// Exactly one shape exists per provider: an admin identity (Admin=true, no
// participant ID) or a participant identity (ParticipantID set, Admin=false).
type Identity struct {
	ParticipantID id.ParticipantID `json:"participant_id"`
	Admin         bool             `json:"admin"`
}

// IsAdmin reports whether the identity carries the admin claim.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Admin
}

// IsParticipant reports whether the identity carries a participant id claim.
func (i *Identity) IsParticipant() bool {
	return i != nil && !i.ParticipantID.IsNil()
}
