package handler

import (
	"net/http"
	"strconv"

	"botregistry/internal/registry/models"
	"botregistry/internal/registry/service"
	id "botregistry/pkg/domain"
	dErrors "botregistry/pkg/domain-errors"
)

func invalidTypeError(raw string) error {
	return dErrors.Newf(dErrors.CodeInvalidInput, "unknown participant type %q", raw)
}

// InstitutionRequest is the admin payload for institution create and update.
type InstitutionRequest struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Parse normalizes the payload. An omitted status defaults to active; name
// validation is the service's job.
func (r *InstitutionRequest) Parse() (string, models.InstitutionStatus, error) {
	if r.Status == "" {
		return r.Name, models.InstitutionStatusActive, nil
	}
	status, err := models.ParseInstitutionStatus(r.Status)
	if err != nil {
		return "", "", err
	}
	return r.Name, status, nil
}

// ParticipantRequest is the admin payload for participant create and update.
// APIKey is optional on create (the server mints one) and on update (the
// existing key is kept).
type ParticipantRequest struct {
	InstitutionID string `json:"institution_id"`
	Name          string `json:"name"`
	Host          string `json:"host"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	APIKey        string `json:"api_key"`
}

// Parse normalizes the payload into service params. Omitted type defaults to
// unknown and omitted status to active.
func (r *ParticipantRequest) Parse() (service.ParticipantParams, error) {
	instID, err := id.ParseInstitutionID(r.InstitutionID)
	if err != nil {
		return service.ParticipantParams{}, err
	}

	ptype := models.ParticipantTypeUnknown
	if r.Type != "" {
		parsed, ok := models.ParseParticipantType(r.Type)
		if !ok {
			return service.ParticipantParams{}, invalidTypeError(r.Type)
		}
		ptype = parsed
	}

	status := models.ParticipantStatusActive
	if r.Status != "" {
		status, err = models.ParseParticipantStatus(r.Status)
		if err != nil {
			return service.ParticipantParams{}, err
		}
	}

	return service.ParticipantParams{
		InstitutionID: instID,
		Name:          r.Name,
		Host:          r.Host,
		Type:          ptype,
		Status:        status,
		APIKey:        r.APIKey,
	}, nil
}

// StateRequest is the payload for a participant's self-service status update.
// The raw status passes through to the service so the narrowing check owns
// the failure mode.
type StateRequest struct {
	Status string `json:"status"`
}

// parseParticipantFilter reads the repeated type query parameter and the
// includeInactive flag. Unrecognized type names are silently dropped;
// malformed includeInactive values fall back to the given default.
func parseParticipantFilter(r *http.Request, includeInactiveDefault bool) models.ParticipantFilter {
	query := r.URL.Query()

	var types []models.ParticipantType
	for _, raw := range query["type"] {
		if t, ok := models.ParseParticipantType(raw); ok {
			types = append(types, t)
		}
	}

	includeInactive := includeInactiveDefault
	if raw := query.Get("includeInactive"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			includeInactive = parsed
		}
	}

	return models.ParticipantFilter{Types: types, IncludeInactive: includeInactive}
}
