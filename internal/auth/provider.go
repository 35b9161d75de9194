package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"botregistry/internal/registry/models"
	dErrors "botregistry/pkg/domain-errors"
	"botregistry/pkg/platform/sentinel"
)

// ClaimsProvider resolves an API key to an identity, or nil when the key is
// not recognized. Only an empty key is a hard error.
type ClaimsProvider interface {
	GetIdentity(ctx context.Context, apiKey string) (*Identity, error)
}

// AdminKeyProvider recognizes exactly one configured admin key.
type AdminKeyProvider struct {
	key string
}

func NewAdminKeyProvider(key string) *AdminKeyProvider {
	return &AdminKeyProvider{key: key}
}

// GetIdentity compares the presented key against the configured admin key in
// constant time. A mismatch yields a nil identity, not an error.
func (p *AdminKeyProvider) GetIdentity(_ context.Context, apiKey string) (*Identity, error) {
	if apiKey == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "api key cannot be empty")
	}
	if p.key == "" {
		return nil, nil
	}
	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(p.key)) != 1 {
		return nil, nil
	}
	return &Identity{Admin: true}, nil
}

// ParticipantResolver is the slice of the participant store the participant
// provider needs.
type ParticipantResolver interface {
	FindByAPIKey(ctx context.Context, key string) (*models.Participant, error)
}

// ParticipantProvider resolves keys against the participant store.
type ParticipantProvider struct {
	participants ParticipantResolver
}

func NewParticipantProvider(participants ParticipantResolver) *ParticipantProvider {
	return &ParticipantProvider{participants: participants}
}

// GetIdentity looks the key up in the participant store. No match, or a match
// whose ID is absent, yields a nil identity.
func (p *ParticipantProvider) GetIdentity(ctx context.Context, apiKey string) (*Identity, error) {
	if apiKey == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "api key cannot be empty")
	}
	participant, err := p.participants.FindByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve api key")
	}
	if participant.ID.IsNil() {
		return nil, nil
	}
	return &Identity{ParticipantID: participant.ID}, nil
}

// ChainProvider tries each provider in order and returns the first identity.
// Deployment wires the admin provider ahead of the participant provider so
// both key kinds authenticate through one header.
type ChainProvider struct {
	providers []ClaimsProvider
}

func NewChainProvider(providers ...ClaimsProvider) *ChainProvider {
	return &ChainProvider{providers: providers}
}

func (p *ChainProvider) GetIdentity(ctx context.Context, apiKey string) (*Identity, error) {
	for _, provider := range p.providers {
		identity, err := provider.GetIdentity(ctx, apiKey)
		if err != nil {
			return nil, err
		}
		if identity != nil {
			return identity, nil
		}
	}
	return nil, nil
}
