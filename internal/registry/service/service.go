// Package service implements the registry's store contract: CRUD over
// institutions and participants with uniqueness and referential-integrity
// enforcement, independent of which backend (in-memory or postgres) sits
// underneath.
//
// Cross-store composites are not linearized: the institution existence check
// before a participant create and the dependent check before an institution
// delete each run against an independently synchronized store, so a racing
// delete/create pair can still produce an orphaned participant. The postgres
// backend's foreign key acts as a backstop there; the in-memory backend
// accepts the race. This mirrors the documented weak-consistency behavior of
// the design rather than hiding it.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"

	"go.opentelemetry.io/otel"

	"botregistry/internal/platform/metrics"
	"botregistry/internal/registry/models"
	id "botregistry/pkg/domain"
	dErrors "botregistry/pkg/domain-errors"
)

var tracer = otel.Tracer("botregistry/registry/service")

// InstitutionStore is the persistence contract for institutions. Backends
// speak sentinel errors; the service translates them into coded domain errors.
type InstitutionStore interface {
	CreateIfNameAvailable(ctx context.Context, inst *models.Institution) error
	Update(ctx context.Context, inst *models.Institution) error
	FindByID(ctx context.Context, instID id.InstitutionID) (*models.Institution, error)
	List(ctx context.Context) ([]*models.Institution, error)
	Delete(ctx context.Context, instID id.InstitutionID) (bool, error)
}

// ParticipantStore is the persistence contract for participants.
type ParticipantStore interface {
	CreateIfNameAvailable(ctx context.Context, p *models.Participant) error
	Update(ctx context.Context, p *models.Participant) error
	FindByID(ctx context.Context, partID id.ParticipantID) (*models.Participant, error)
	FindByAPIKey(ctx context.Context, key string) (*models.Participant, error)
	List(ctx context.Context, filter models.ParticipantFilter) ([]*models.Participant, error)
	ListByInstitution(ctx context.Context, instID id.InstitutionID) ([]*models.Participant, error)
	UpdateStatus(ctx context.Context, partID id.ParticipantID, status models.ParticipantStatus) (*models.Participant, error)
	Delete(ctx context.Context, partID id.ParticipantID) (bool, error)
}

// Service orchestrates institution and participant lifecycle management.
type Service struct {
	institutions InstitutionStore
	participants ParticipantStore
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service over the given backends.
func New(institutions InstitutionStore, participants ParticipantStore, opts ...Option) *Service {
	s := &Service{
		institutions: institutions,
		participants: participants,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func requireInstitutionID(instID id.InstitutionID) error {
	if instID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "institution id cannot be empty")
	}
	return nil
}

func requireParticipantID(partID id.ParticipantID) error {
	if partID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "participant id cannot be empty")
	}
	return nil
}

// invariantToValidation converts model invariant violations into validation
// errors for API responses; other errors pass through.
func invariantToValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
	}
	return err
}

// newAPIKey mints an opaque participant credential.
func newAPIKey() string {
	buf := make([]byte, 24)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
