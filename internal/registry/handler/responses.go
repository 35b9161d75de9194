package handler

import (
	"time"

	"botregistry/internal/registry/models"
)

// InstitutionResponse is the wire shape of an institution.
type InstitutionResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newInstitutionResponse(inst *models.Institution) InstitutionResponse {
	return InstitutionResponse{
		ID:        inst.ID.String(),
		Name:      inst.Name,
		Status:    string(inst.Status),
		CreatedAt: inst.CreatedAt,
		UpdatedAt: inst.UpdatedAt,
	}
}

func newInstitutionListResponse(insts []*models.Institution) []InstitutionResponse {
	out := make([]InstitutionResponse, 0, len(insts))
	for _, inst := range insts {
		out = append(out, newInstitutionResponse(inst))
	}
	return out
}

// InstitutionDetailsResponse is the public by-id read: the institution plus
// its affiliated participants.
type InstitutionDetailsResponse struct {
	InstitutionResponse
	Participants []ParticipantResponse `json:"participants"`
}

// ParticipantResponse is the wire shape of a participant. The API key is
// never included; see ParticipantCreatedResponse.
type ParticipantResponse struct {
	ID            string    `json:"id"`
	InstitutionID string    `json:"institution_id"`
	Name          string    `json:"name"`
	Host          string    `json:"host"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newParticipantResponse(p *models.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:            p.ID.String(),
		InstitutionID: p.InstitutionID.String(),
		Name:          p.Name,
		Host:          p.Host,
		Type:          string(p.Type),
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func newParticipantListResponse(ps []*models.Participant) []ParticipantResponse {
	out := make([]ParticipantResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, newParticipantResponse(p))
	}
	return out
}

// ParticipantCreatedResponse surfaces the credential exactly once, in the
// admin create response.
type ParticipantCreatedResponse struct {
	ParticipantResponse
	APIKey string `json:"api_key"`
}

func newParticipantCreatedResponse(p *models.Participant) ParticipantCreatedResponse {
	return ParticipantCreatedResponse{
		ParticipantResponse: newParticipantResponse(p),
		APIKey:              p.APIKey,
	}
}
