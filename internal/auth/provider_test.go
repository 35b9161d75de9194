package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"botregistry/internal/registry/models"
	"botregistry/internal/registry/store/participant"
	id "botregistry/pkg/domain"
	dErrors "botregistry/pkg/domain-errors"
)

type ProviderSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *ProviderSuite) SetupTest() {
	s.ctx = context.Background()
}

func TestProviderSuite(t *testing.T) {
	suite.Run(t, new(ProviderSuite))
}

// TestAdminKeyProvider verifies exact-match admin key resolution.
func (s *ProviderSuite) TestAdminKeyProvider() {
	provider := NewAdminKeyProvider("super-secret")

	s.Run("matching key yields admin identity", func() {
		identity, err := provider.GetIdentity(s.ctx, "super-secret")
		s.Require().NoError(err)
		s.Require().NotNil(identity)
		s.True(identity.IsAdmin())
		s.False(identity.IsParticipant())
	})

	s.Run("mismatch yields nil identity without error", func() {
		identity, err := provider.GetIdentity(s.ctx, "wrong-key")
		s.Require().NoError(err)
		s.Nil(identity)
	})

	s.Run("empty key is a hard error", func() {
		_, err := provider.GetIdentity(s.ctx, "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unconfigured admin key never matches", func() {
		unconfigured := NewAdminKeyProvider("")
		identity, err := unconfigured.GetIdentity(s.ctx, "anything")
		s.Require().NoError(err)
		s.Nil(identity)
	})
}

// TestParticipantProvider verifies store-backed key resolution.
func (s *ProviderSuite) TestParticipantProvider() {
	store := participant.NewInMemory()
	now := time.Now()
	bot := &models.Participant{
		ID:            id.ParticipantID(uuid.New()),
		InstitutionID: id.InstitutionID(uuid.New()),
		Name:          "Bot1",
		Type:          models.ParticipantTypeChatbot,
		Status:        models.ParticipantStatusActive,
		APIKey:        "bot1-key",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.Require().NoError(store.CreateIfNameAvailable(s.ctx, bot))

	provider := NewParticipantProvider(store)

	s.Run("matching key yields identity with the participant's id", func() {
		identity, err := provider.GetIdentity(s.ctx, "bot1-key")
		s.Require().NoError(err)
		s.Require().NotNil(identity)
		s.True(identity.IsParticipant())
		s.False(identity.IsAdmin())
		s.Equal(bot.ID, identity.ParticipantID)
	})

	s.Run("unknown key yields nil identity without error", func() {
		identity, err := provider.GetIdentity(s.ctx, "unknown-key")
		s.Require().NoError(err)
		s.Nil(identity)
	})

	s.Run("empty key is a hard error", func() {
		_, err := provider.GetIdentity(s.ctx, "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// TestChainProvider verifies first-match semantics across providers.
func (s *ProviderSuite) TestChainProvider() {
	store := participant.NewInMemory()
	now := time.Now()
	bot := &models.Participant{
		ID:            id.ParticipantID(uuid.New()),
		InstitutionID: id.InstitutionID(uuid.New()),
		Name:          "ChainBot",
		Type:          models.ParticipantTypeClassifier,
		Status:        models.ParticipantStatusActive,
		APIKey:        "chain-bot-key",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.Require().NoError(store.CreateIfNameAvailable(s.ctx, bot))

	chain := NewChainProvider(
		NewAdminKeyProvider("admin-key"),
		NewParticipantProvider(store),
	)

	s.Run("admin key resolves through the chain", func() {
		identity, err := chain.GetIdentity(s.ctx, "admin-key")
		s.Require().NoError(err)
		s.Require().NotNil(identity)
		s.True(identity.IsAdmin())
	})

	s.Run("participant key resolves through the chain", func() {
		identity, err := chain.GetIdentity(s.ctx, "chain-bot-key")
		s.Require().NoError(err)
		s.Require().NotNil(identity)
		s.Equal(bot.ID, identity.ParticipantID)
	})

	s.Run("unknown key exhausts the chain", func() {
		identity, err := chain.GetIdentity(s.ctx, "nope")
		s.Require().NoError(err)
		s.Nil(identity)
	})
}
