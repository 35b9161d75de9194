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

// CreateInstitution registers a new institution under a fresh server-assigned
// ID. Fails with a conflict when the name is already taken.
func (s *Service) CreateInstitution(ctx context.Context, name string, status models.InstitutionStatus) (*models.Institution, error) {
	ctx, span := tracer.Start(ctx, "registry.Service.CreateInstitution")
	defer span.End()

	name = strings.TrimSpace(name)
	inst, err := models.NewInstitution(id.NewInstitutionID(), name, status, requestcontext.Now(ctx))
	if err != nil {
		return nil, invariantToValidation(err)
	}

	if err := s.institutions.CreateIfNameAvailable(ctx, inst); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "institution name %q is already taken", name)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create institution")
	}

	s.logger.InfoContext(ctx, "institution created", "institution_id", inst.ID)
	if s.metrics != nil {
		s.metrics.IncrementInstitutionsCreated()
	}
	return inst, nil
}

// GetInstitution fetches one institution by ID.
func (s *Service) GetInstitution(ctx context.Context, instID id.InstitutionID) (*models.Institution, error) {
	ctx, span := tracer.Start(ctx, "registry.Service.GetInstitution")
	defer span.End()

	if err := requireInstitutionID(instID); err != nil {
		return nil, err
	}
	inst, err := s.institutions.FindByID(ctx, instID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "institution not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load institution")
	}
	return inst, nil
}

// ListInstitutions returns all registered institutions.
func (s *Service) ListInstitutions(ctx context.Context) ([]*models.Institution, error) {
	ctx, span := tracer.Start(ctx, "registry.Service.ListInstitutions")
	defer span.End()

	insts, err := s.institutions.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list institutions")
	}
	return insts, nil
}

// UpdateInstitution overwrites the record at instID, preserving its creation
// timestamp. Fails with a conflict when a different institution already holds
// the target name.
func (s *Service) UpdateInstitution(ctx context.Context, instID id.InstitutionID, name string, status models.InstitutionStatus) (*models.Institution, error) {
	ctx, span := tracer.Start(ctx, "registry.Service.UpdateInstitution")
	defer span.End()

	if err := requireInstitutionID(instID); err != nil {
		return nil, err
	}
	existing, err := s.GetInstitution(ctx, instID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	updated, err := models.NewInstitution(instID, name, status, requestcontext.Now(ctx))
	if err != nil {
		return nil, invariantToValidation(err)
	}
	updated.CreatedAt = existing.CreatedAt

	if err := s.institutions.Update(ctx, updated); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "institution not found")
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return nil, dErrors.Newf(dErrors.CodeConflict, "institution name %q is already taken", name)
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update institution")
		}
	}
	return updated, nil
}

// DeleteInstitution removes the institution at instID, reporting whether it
// existed. The delete is refused while any participant still references the
// institution; dependents are never cascaded.
//
// The dependent check and the delete are two steps against independently
// synchronized stores, so a participant created in between can slip through
// on the in-memory backend.
func (s *Service) DeleteInstitution(ctx context.Context, instID id.InstitutionID) (bool, error) {
	ctx, span := tracer.Start(ctx, "registry.Service.DeleteInstitution")
	defer span.End()

	if err := requireInstitutionID(instID); err != nil {
		return false, err
	}

	dependents, err := s.participants.ListByInstitution(ctx, instID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check institution dependents")
	}
	if len(dependents) > 0 {
		return false, dErrors.Newf(dErrors.CodeConflict,
			"institution still has dependent participant %q", dependents[0].Name)
	}

	deleted, err := s.institutions.Delete(ctx, instID)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return false, dErrors.New(dErrors.CodeConflict, "institution still has dependent participants")
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete institution")
	}
	if deleted {
		s.logger.InfoContext(ctx, "institution deleted", "institution_id", instID)
	}
	return deleted, nil
}
