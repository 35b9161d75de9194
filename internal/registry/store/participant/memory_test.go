package participant

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"botregistry/internal/registry/models"
	id "botregistry/pkg/domain"
	"botregistry/pkg/platform/sentinel"
)

type ParticipantStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *ParticipantStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestParticipantStoreSuite(t *testing.T) {
	suite.Run(t, new(ParticipantStoreSuite))
}

func (s *ParticipantStoreSuite) newParticipant(name string, mutate ...func(*models.Participant)) *models.Participant {
	now := time.Now()
	p := &models.Participant{
		ID:            id.ParticipantID(uuid.New()),
		InstitutionID: id.InstitutionID(uuid.New()),
		Name:          name,
		Host:          "bot.example.com:443",
		Type:          models.ParticipantTypeChatbot,
		Status:        models.ParticipantStatusActive,
		APIKey:        "key-" + name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, m := range mutate {
		m(p)
	}
	return p
}

// TestCreationAndLookups verifies creation, ID lookup, and API-key lookup.
func (s *ParticipantStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds participant by ID", func() {
		p := s.newParticipant("Bot1")
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, p))

		found, err := s.store.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(p.Name, found.Name)
		s.Equal(p.InstitutionID, found.InstitutionID)
	})

	s.Run("rejects duplicate name", func() {
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, s.newParticipant("Dup")))
		err := s.store.CreateIfNameAvailable(s.ctx, s.newParticipant("Dup"))
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("finds participant by API key", func() {
		p := s.newParticipant("Keyed")
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, p))

		found, err := s.store.FindByAPIKey(s.ctx, p.APIKey)
		s.Require().NoError(err)
		s.Equal(p.ID, found.ID)
	})

	s.Run("returns ErrNotFound for unknown API key", func() {
		_, err := s.store.FindByAPIKey(s.ctx, "no-such-key")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestFilteredListing verifies type and active filters compose with AND
// semantics.
func (s *ParticipantStoreSuite) TestFilteredListing() {
	activeChatbot := s.newParticipant("ActiveChatbot")
	disabledChatbot := s.newParticipant("DisabledChatbot", func(p *models.Participant) {
		p.Status = models.ParticipantStatusDisabled
	})
	activeClassifier := s.newParticipant("ActiveClassifier", func(p *models.Participant) {
		p.Type = models.ParticipantTypeClassifier
	})
	for _, p := range []*models.Participant{activeChatbot, disabledChatbot, activeClassifier} {
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, p))
	}

	s.Run("type filter with active-only returns exactly the active chatbot", func() {
		got, err := s.store.List(s.ctx, models.ParticipantFilter{
			Types: []models.ParticipantType{models.ParticipantTypeChatbot},
		})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(activeChatbot.ID, got[0].ID)
	})

	s.Run("empty type filter means all types", func() {
		got, err := s.store.List(s.ctx, models.ParticipantFilter{IncludeInactive: true})
		s.Require().NoError(err)
		s.Len(got, 3)
	})

	s.Run("includeInactive lifts the status restriction", func() {
		got, err := s.store.List(s.ctx, models.ParticipantFilter{
			Types:           []models.ParticipantType{models.ParticipantTypeChatbot},
			IncludeInactive: true,
		})
		s.Require().NoError(err)
		s.Len(got, 2)
	})

	s.Run("lists by institution regardless of status", func() {
		got, err := s.store.ListByInstitution(s.ctx, disabledChatbot.InstitutionID)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(disabledChatbot.ID, got[0].ID)
	})
}

// TestStatusUpdates verifies the narrow status mutation path.
func (s *ParticipantStoreSuite) TestStatusUpdates() {
	s.Run("mutates only the status field", func() {
		p := s.newParticipant("StatusBot")
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, p))

		updated, err := s.store.UpdateStatus(s.ctx, p.ID, models.ParticipantStatusDisabled)
		s.Require().NoError(err)
		s.Equal(models.ParticipantStatusDisabled, updated.Status)
		s.Equal(p.Name, updated.Name)
		s.Equal(p.APIKey, updated.APIKey)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.UpdateStatus(s.ctx, id.ParticipantID(uuid.New()), models.ParticipantStatusActive)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestUpdatesAndDeletion verifies full-record overwrite and delete reporting.
func (s *ParticipantStoreSuite) TestUpdatesAndDeletion() {
	s.Run("overwrites record including institution move", func() {
		p := s.newParticipant("Mover")
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, p))

		p.InstitutionID = id.InstitutionID(uuid.New())
		p.Host = "new-host:8443"
		s.Require().NoError(s.store.Update(s.ctx, p))

		found, err := s.store.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(p.InstitutionID, found.InstitutionID)
		s.Equal("new-host:8443", found.Host)
	})

	s.Run("rejects taking another participant's name", func() {
		first := s.newParticipant("NameHolder")
		second := s.newParticipant("NameClaimant")
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, first))
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, second))

		second.Name = "NameHolder"
		s.Require().ErrorIs(s.store.Update(s.ctx, second), sentinel.ErrAlreadyUsed)
	})

	s.Run("delete reports whether the record existed", func() {
		p := s.newParticipant("Doomed")
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, p))

		deleted, err := s.store.Delete(s.ctx, p.ID)
		s.Require().NoError(err)
		s.True(deleted)

		deleted, err = s.store.Delete(s.ctx, p.ID)
		s.Require().NoError(err)
		s.False(deleted)
	})
}
