package service

import (
	"context"
	"errors"
	"strings"

	"botregistry/internal/registry/models"
	id "botregistry/pkg/domain"
	dErrors "botregistry/pkg/domain-errors"
	"botregistry/pkg/platform/sentinel"
	"botregistry/pkg/requestcontext"
)

// ParticipantParams carries the caller-supplied attributes for participant
// create and update. An empty APIKey on create mints a fresh credential.
type ParticipantParams struct {
	InstitutionID id.InstitutionID
	Name          string
	Host          string
	Type          models.ParticipantType
	Status        models.ParticipantStatus
	APIKey        string
}

// CreateParticipant registers a new participant under a fresh server-assigned
// ID. The referenced institution must exist; the check runs against the
// institution store before the insert and is not atomic with it.
func (s *Service) CreateParticipant(ctx context.Context, params ParticipantParams) (*models.Participant, error) {
	ctx, span := tracer.Start(ctx, "registry.Service.CreateParticipant")
	defer span.End()

	if err := s.requireInstitutionExists(ctx, params.InstitutionID); err != nil {
		return nil, err
	}

	apiKey := params.APIKey
	if apiKey == "" {
		apiKey = newAPIKey()
	}
	p, err := models.NewParticipant(
		id.NewParticipantID(),
		params.InstitutionID,
		strings.TrimSpace(params.Name),
		params.Host,
		params.Type,
		params.Status,
		apiKey,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, invariantToValidation(err)
	}

	if err := s.participants.CreateIfNameAvailable(ctx, p); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return nil, dErrors.Newf(dErrors.CodeConflict, "participant name %q is already taken", p.Name)
		case errors.Is(err, sentinel.ErrNotFound):
			// Postgres foreign-key backstop: the institution vanished between
			// the existence check and the insert.
			return nil, dErrors.New(dErrors.CodeNotFound, "institution not found")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create participant")
		}
	}

	s.logger.InfoContext(ctx, "participant created",
		"participant_id", p.ID,
		"institution_id", p.InstitutionID,
	)
	if s.metrics != nil {
		s.metrics.IncrementParticipantsCreated()
	}
	return p, nil
}

// GetParticipant fetches one participant by ID.
func (s *Service) GetParticipant(ctx context.Context, partID id.ParticipantID) (*models.Participant, error) {
	ctx, span := tracer.Start(ctx, "registry.Service.GetParticipant")
	defer span.End()

	if err := requireParticipantID(partID); err != nil {
		return nil, err
	}
	p, err := s.participants.FindByID(ctx, partID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "participant not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load participant")
	}
	return p, nil
}

// ListParticipants returns participants passing the filter.
func (s *Service) ListParticipants(ctx context.Context, filter models.ParticipantFilter) ([]*models.Participant, error) {
	ctx, span := tracer.Start(ctx, "registry.Service.ListParticipants")
	defer span.End()

	ps, err := s.participants.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list participants")
	}
	return ps, nil
}

// ListInstitutionParticipants returns every participant affiliated with the
// given institution, regardless of status.
func (s *Service) ListInstitutionParticipants(ctx context.Context, instID id.InstitutionID) ([]*models.Participant, error) {
	ctx, span := tracer.Start(ctx, "registry.Service.ListInstitutionParticipants")
	defer span.End()

	if err := requireInstitutionID(instID); err != nil {
		return nil, err
	}
	ps, err := s.participants.ListByInstitution(ctx, instID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list institution participants")
	}
	return ps, nil
}

// UpdateParticipant overwrites the record at partID, preserving its creation
// timestamp and, when no new key is supplied, its API key. The referenced
// institution is re-validated on every update since an update may move the
// participant to a different institution.
func (s *Service) UpdateParticipant(ctx context.Context, partID id.ParticipantID, params ParticipantParams) (*models.Participant, error) {
	ctx, span := tracer.Start(ctx, "registry.Service.UpdateParticipant")
	defer span.End()

	if err := requireParticipantID(partID); err != nil {
		return nil, err
	}
	existing, err := s.GetParticipant(ctx, partID)
	if err != nil {
		return nil, err
	}
	if err := s.requireInstitutionExists(ctx, params.InstitutionID); err != nil {
		return nil, err
	}

	apiKey := params.APIKey
	if apiKey == "" {
		apiKey = existing.APIKey
	}
	updated, err := models.NewParticipant(
		partID,
		params.InstitutionID,
		strings.TrimSpace(params.Name),
		params.Host,
		params.Type,
		params.Status,
		apiKey,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, invariantToValidation(err)
	}
	updated.CreatedAt = existing.CreatedAt

	if err := s.participants.Update(ctx, updated); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "participant not found")
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return nil, dErrors.Newf(dErrors.CodeConflict, "participant name %q is already taken", updated.Name)
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update participant")
		}
	}
	return updated, nil
}

// UpdateParticipantStatus mutates only the Status field. Unlike create and
// update, the target is narrowed to the two operational states; the check runs
// before the existence lookup, so an invalid status fails regardless of
// whether the participant exists.
func (s *Service) UpdateParticipantStatus(ctx context.Context, partID id.ParticipantID, status models.ParticipantStatus) (*models.Participant, error) {
	ctx, span := tracer.Start(ctx, "registry.Service.UpdateParticipantStatus")
	defer span.End()

	if err := requireParticipantID(partID); err != nil {
		return nil, err
	}
	if status != models.ParticipantStatusActive && status != models.ParticipantStatusDisabled {
		return nil, dErrors.Newf(dErrors.CodeValidation,
			"participant status must be %q or %q", models.ParticipantStatusActive, models.ParticipantStatusDisabled)
	}

	p, err := s.participants.UpdateStatus(ctx, partID, status)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "participant not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update participant status")
	}

	s.logger.InfoContext(ctx, "participant status updated",
		"participant_id", partID,
		"status", status,
	)
	return p, nil
}

// DeleteParticipant removes the participant at partID, reporting whether it
// existed. Participants have no dependents, so there is no blocking check.
func (s *Service) DeleteParticipant(ctx context.Context, partID id.ParticipantID) (bool, error) {
	ctx, span := tracer.Start(ctx, "registry.Service.DeleteParticipant")
	defer span.End()

	if err := requireParticipantID(partID); err != nil {
		return false, err
	}
	deleted, err := s.participants.Delete(ctx, partID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete participant")
	}
	if deleted {
		s.logger.InfoContext(ctx, "participant deleted", "participant_id", partID)
	}
	return deleted, nil
}

func (s *Service) requireInstitutionExists(ctx context.Context, instID id.InstitutionID) error {
	if instID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "participant institution_id cannot be empty")
	}
	if _, err := s.institutions.FindByID(ctx, instID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "institution not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve institution")
	}
	return nil
}
