// Package handler wires the registry service to its admin and public HTTP
// surfaces. Handlers stay thin: decode, delegate, map the result.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"botregistry/internal/registry/models"
	"botregistry/internal/registry/service"
	id "botregistry/pkg/domain"
	dErrors "botregistry/pkg/domain-errors"
	"botregistry/pkg/platform/httputil"
	"botregistry/pkg/platform/middleware/apikey"
)

// Handler exposes registry operations over HTTP.
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterAdmin mounts the admin-only CRUD routes. Callers must gate the
// router with the admin policy.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Route("/institutions", func(r chi.Router) {
		r.Get("/", h.listInstitutions)
		r.Post("/", h.createInstitution)
		r.Get("/{id}", h.getInstitution)
		r.Put("/{id}", h.updateInstitution)
		r.Delete("/{id}", h.deleteInstitution)
	})
	r.Route("/participants", func(r chi.Router) {
		r.Get("/", h.listParticipantsAdmin)
		r.Post("/", h.createParticipant)
		r.Get("/{id}", h.getParticipant)
		r.Put("/{id}", h.updateParticipant)
		r.Delete("/{id}", h.deleteParticipant)
	})
}

// RegisterPublicInstitutions mounts the unauthenticated institution reads.
func (h *Handler) RegisterPublicInstitutions(r chi.Router) {
	r.Get("/", h.listInstitutions)
	r.Get("/{id}", h.getInstitutionDetails)
}

// RegisterPublicParticipants mounts the participant-authenticated routes.
// Callers must gate the router with the participant policy.
func (h *Handler) RegisterPublicParticipants(r chi.Router) {
	r.Get("/", h.listParticipantsPublic)
	r.Get("/{id}", h.getParticipant)
	r.Put("/my/state", h.updateOwnState)
}

func (h *Handler) createInstitution(w http.ResponseWriter, r *http.Request) {
	var req InstitutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "malformed request body"))
		return
	}
	name, status, err := req.Parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	inst, err := h.svc.CreateInstitution(r.Context(), name, status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, newInstitutionResponse(inst))
}

func (h *Handler) listInstitutions(w http.ResponseWriter, r *http.Request) {
	insts, err := h.svc.ListInstitutions(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newInstitutionListResponse(insts))
}

func (h *Handler) getInstitution(w http.ResponseWriter, r *http.Request) {
	instID, err := id.ParseInstitutionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	inst, err := h.svc.GetInstitution(r.Context(), instID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newInstitutionResponse(inst))
}

func (h *Handler) getInstitutionDetails(w http.ResponseWriter, r *http.Request) {
	instID, err := id.ParseInstitutionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	inst, err := h.svc.GetInstitution(r.Context(), instID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	participants, err := h.svc.ListInstitutionParticipants(r.Context(), instID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, InstitutionDetailsResponse{
		InstitutionResponse: newInstitutionResponse(inst),
		Participants:        newParticipantListResponse(participants),
	})
}

func (h *Handler) updateInstitution(w http.ResponseWriter, r *http.Request) {
	instID, err := id.ParseInstitutionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req InstitutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "malformed request body"))
		return
	}
	name, status, err := req.Parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	inst, err := h.svc.UpdateInstitution(r.Context(), instID, name, status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newInstitutionResponse(inst))
}

func (h *Handler) deleteInstitution(w http.ResponseWriter, r *http.Request) {
	instID, err := id.ParseInstitutionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	deleted, err := h.svc.DeleteInstitution(r.Context(), instID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !deleted {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "institution not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createParticipant(w http.ResponseWriter, r *http.Request) {
	var req ParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "malformed request body"))
		return
	}
	params, err := req.Parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.svc.CreateParticipant(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, newParticipantCreatedResponse(p))
}

func (h *Handler) listParticipantsAdmin(w http.ResponseWriter, r *http.Request) {
	h.listParticipants(w, r, true)
}

func (h *Handler) listParticipantsPublic(w http.ResponseWriter, r *http.Request) {
	h.listParticipants(w, r, false)
}

func (h *Handler) listParticipants(w http.ResponseWriter, r *http.Request, includeInactiveDefault bool) {
	filter := parseParticipantFilter(r, includeInactiveDefault)
	ps, err := h.svc.ListParticipants(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newParticipantListResponse(ps))
}

func (h *Handler) getParticipant(w http.ResponseWriter, r *http.Request) {
	partID, err := id.ParseParticipantID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.svc.GetParticipant(r.Context(), partID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newParticipantResponse(p))
}

func (h *Handler) updateParticipant(w http.ResponseWriter, r *http.Request) {
	partID, err := id.ParseParticipantID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req ParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "malformed request body"))
		return
	}
	params, err := req.Parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.svc.UpdateParticipant(r.Context(), partID, params)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newParticipantResponse(p))
}

func (h *Handler) deleteParticipant(w http.ResponseWriter, r *http.Request) {
	partID, err := id.ParseParticipantID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	deleted, err := h.svc.DeleteParticipant(r.Context(), partID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !deleted {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "participant not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// updateOwnState lets a participant flip its own status. The target ID comes
// from the authenticated identity, never from the request body.
func (h *Handler) updateOwnState(w http.ResponseWriter, r *http.Request) {
	principal := apikey.GetPrincipal(r.Context())
	if principal == nil || !principal.Identity.IsParticipant() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "no participant identity on request"))
		return
	}
	var req StateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "malformed request body"))
		return
	}
	p, err := h.svc.UpdateParticipantStatus(r.Context(), principal.Identity.ParticipantID, models.ParticipantStatus(req.Status))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newParticipantResponse(p))
}
