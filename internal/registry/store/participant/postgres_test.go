//go:build integration

package participant_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"botregistry/internal/registry/models"
	"botregistry/internal/registry/store"
	"botregistry/internal/registry/store/institution"
	"botregistry/internal/registry/store/participant"
	id "botregistry/pkg/domain"
	"botregistry/pkg/platform/sentinel"
	"botregistry/pkg/testutil/containers"
)

type PostgresSuite struct {
	suite.Suite
	ctx    context.Context
	pg     *containers.PostgresContainer
	store  *participant.PostgresStore
	instID id.InstitutionID
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(store.Migrate(s.ctx, s.pg.Pool))
	s.store = participant.NewPostgres(s.pg.Pool)
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(s.ctx))

	// Every test needs an institution to hang participants off.
	insts := institution.NewPostgres(s.pg.Pool)
	inst, err := models.NewInstitution(id.NewInstitutionID(), "Acme", models.InstitutionStatusActive, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(insts.CreateIfNameAvailable(s.ctx, inst))
	s.instID = inst.ID
}

func (s *PostgresSuite) newParticipant(name string, ptype models.ParticipantType, status models.ParticipantStatus) *models.Participant {
	p, err := models.NewParticipant(
		id.NewParticipantID(), s.instID, name, name+".example.com",
		ptype, status, name+"-key", time.Now().UTC().Truncate(time.Microsecond),
	)
	s.Require().NoError(err)
	return p
}

func (s *PostgresSuite) TestCreateAndFind() {
	p := s.newParticipant("Bot1", models.ParticipantTypeChatbot, models.ParticipantStatusActive)
	s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, p))

	got, err := s.store.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.Name, got.Name)
	s.Equal(p.Host, got.Host)
	s.Equal(p.Type, got.Type)
	s.Equal(p.APIKey, got.APIKey)
	s.Equal(s.instID, got.InstitutionID)
}

func (s *PostgresSuite) TestFindByAPIKey() {
	p := s.newParticipant("Bot1", models.ParticipantTypeChatbot, models.ParticipantStatusActive)
	s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, p))

	got, err := s.store.FindByAPIKey(s.ctx, p.APIKey)
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)

	_, err = s.store.FindByAPIKey(s.ctx, "no-such-key")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresSuite) TestNameUniqueness() {
	s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx,
		s.newParticipant("Bot1", models.ParticipantTypeChatbot, models.ParticipantStatusActive)))

	err := s.store.CreateIfNameAvailable(s.ctx,
		s.newParticipant("Bot1", models.ParticipantTypeClassifier, models.ParticipantStatusActive))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *PostgresSuite) TestInsertAgainstMissingInstitution() {
	p := s.newParticipant("Bot1", models.ParticipantTypeChatbot, models.ParticipantStatusActive)
	p.InstitutionID = id.NewInstitutionID()

	err := s.store.CreateIfNameAvailable(s.ctx, p)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresSuite) TestListFilters() {
	seed := []*models.Participant{
		s.newParticipant("ActiveBot", models.ParticipantTypeChatbot, models.ParticipantStatusActive),
		s.newParticipant("SleepyBot", models.ParticipantTypeChatbot, models.ParticipantStatusDisabled),
		s.newParticipant("Clf", models.ParticipantTypeClassifier, models.ParticipantStatusActive),
	}
	for _, p := range seed {
		s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, p))
	}

	s.Run("active only by default", func() {
		ps, err := s.store.List(s.ctx, models.ParticipantFilter{})
		s.Require().NoError(err)
		s.Len(ps, 2)
	})

	s.Run("type and status compose", func() {
		ps, err := s.store.List(s.ctx, models.ParticipantFilter{
			Types: []models.ParticipantType{models.ParticipantTypeChatbot},
		})
		s.Require().NoError(err)
		s.Require().Len(ps, 1)
		s.Equal("ActiveBot", ps[0].Name)
	})

	s.Run("include inactive", func() {
		ps, err := s.store.List(s.ctx, models.ParticipantFilter{IncludeInactive: true})
		s.Require().NoError(err)
		s.Len(ps, 3)
	})

	s.Run("by institution regardless of status", func() {
		ps, err := s.store.ListByInstitution(s.ctx, s.instID)
		s.Require().NoError(err)
		s.Len(ps, 3)
	})
}

func (s *PostgresSuite) TestUpdateStatus() {
	p := s.newParticipant("Bot1", models.ParticipantTypeChatbot, models.ParticipantStatusActive)
	s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, p))

	got, err := s.store.UpdateStatus(s.ctx, p.ID, models.ParticipantStatusDisabled)
	s.Require().NoError(err)
	s.Equal(models.ParticipantStatusDisabled, got.Status)
	s.Equal(p.Name, got.Name)

	_, err = s.store.UpdateStatus(s.ctx, id.NewParticipantID(), models.ParticipantStatusActive)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresSuite) TestUpdateMovesInstitution() {
	p := s.newParticipant("Bot1", models.ParticipantTypeChatbot, models.ParticipantStatusActive)
	s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, p))

	insts := institution.NewPostgres(s.pg.Pool)
	other, err := models.NewInstitution(id.NewInstitutionID(), "Globex", models.InstitutionStatusActive, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(insts.CreateIfNameAvailable(s.ctx, other))

	p.InstitutionID = other.ID
	p.UpdatedAt = time.Now().UTC()
	s.Require().NoError(s.store.Update(s.ctx, p))

	got, err := s.store.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(other.ID, got.InstitutionID)

	// Moving onto a nonexistent institution trips the foreign key.
	p.InstitutionID = id.NewInstitutionID()
	s.ErrorIs(s.store.Update(s.ctx, p), sentinel.ErrNotFound)
}

func (s *PostgresSuite) TestDeleteReportsExistence() {
	p := s.newParticipant("Bot1", models.ParticipantTypeChatbot, models.ParticipantStatusActive)
	s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, p))

	deleted, err := s.store.Delete(s.ctx, p.ID)
	s.Require().NoError(err)
	s.True(deleted)

	deleted, err = s.store.Delete(s.ctx, p.ID)
	s.Require().NoError(err)
	s.False(deleted)
}
