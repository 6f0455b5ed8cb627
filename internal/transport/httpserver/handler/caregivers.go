package handler

import (
	"errors"
	"net/http"

	caregiverdomain "github.com/LoreWasTaken/caresync/internal/domain/caregiver"
	userdomain "github.com/LoreWasTaken/caresync/internal/domain/user"
	"github.com/LoreWasTaken/caresync/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type inviteCaregiverRequest struct {
	Email        string   `json:"email"`
	Relationship string   `json:"relationship"`
	Permissions  []string `json:"permissions"`
}

type relationshipResponse struct {
	ID               string   `json:"id"`
	CaregiverID      string   `json:"caregiver_id"`
	PatientID        string   `json:"patient_id"`
	RelationshipType string   `json:"relationship_type"`
	Permissions      []string `json:"permissions"`
	IsVerified       bool     `json:"is_verified"`
	IsActive         bool     `json:"is_active"`
}

func toRelationshipResponse(r caregiverdomain.Relationship) relationshipResponse {
	return relationshipResponse{
		ID:               r.ID,
		CaregiverID:      r.CaregiverID,
		PatientID:        r.PatientID,
		RelationshipType: r.RelationshipType,
		Permissions:      r.PermissionList(),
		IsVerified:       r.IsVerified,
		IsActive:         r.IsActive,
	}
}

func (h *Handlers) InviteCaregiver(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	if requester.Role != userdomain.RolePatient {
		writeError(w, http.StatusForbidden, "only patients can invite caregivers")
		return
	}

	var req inviteCaregiverRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	relationship, err := h.Caregivers.Invite(r.Context(), caregiverdomain.InviteInput{
		PatientID:        requester.ID,
		CaregiverEmail:   req.Email,
		RelationshipType: req.Relationship,
		Permissions:      req.Permissions,
	})
	if err != nil {
		switch {
		case errors.Is(err, caregiverdomain.ErrRelationshipExists):
			writeError(w, http.StatusConflict, "an active relationship already exists")
		case errors.Is(err, caregiverdomain.ErrCaregiverNotFound):
			writeError(w, http.StatusNotFound, "caregiver not found")
		case errors.Is(err, caregiverdomain.ErrNotCaregiverRole):
			writeValidationError(w, map[string]string{"email": "user is not a caregiver"})
		default:
			h.log.InternalError("caregivers.invite failed", err, "patient_id", requester.ID)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeData(w, http.StatusCreated, toRelationshipResponse(*relationship))
}

func (h *Handlers) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, "caregivers.accept", func(relationshipID, requesterID string) (*caregiverdomain.Relationship, error) {
		return h.Caregivers.Accept(r.Context(), relationshipID, requesterID)
	})
}

func (h *Handlers) DeclineInvite(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, "caregivers.decline", func(relationshipID, requesterID string) (*caregiverdomain.Relationship, error) {
		return h.Caregivers.Decline(r.Context(), relationshipID, requesterID)
	})
}

func (h *Handlers) RemoveRelationship(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, "caregivers.remove", func(relationshipID, requesterID string) (*caregiverdomain.Relationship, error) {
		return h.Caregivers.Remove(r.Context(), relationshipID, requesterID)
	})
}

func (h *Handlers) runTransition(w http.ResponseWriter, r *http.Request, operation string, transition func(relationshipID, requesterID string) (*caregiverdomain.Relationship, error)) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	relationship, err := transition(chi.URLParam(r, "id"), requester.ID)
	if err != nil {
		switch {
		case errors.Is(err, caregiverdomain.ErrRelationshipNotFound):
			writeError(w, http.StatusNotFound, "relationship not found")
		case errors.Is(err, caregiverdomain.ErrNotParticipant):
			writeError(w, http.StatusForbidden, "access denied")
		default:
			h.log.InternalError(operation+" failed", err, "user_id", requester.ID)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeData(w, http.StatusOK, toRelationshipResponse(*relationship))
}

func (h *Handlers) ListPatients(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	patients, err := h.Caregivers.ListPatients(r.Context(), requester.ID)
	if err != nil {
		h.log.InternalError("caregivers.list_patients failed", err, "user_id", requester.ID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeData(w, http.StatusOK, patients)
}

func (h *Handlers) ListCaregivers(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	caregivers, err := h.Caregivers.ListCaregivers(r.Context(), requester.ID)
	if err != nil {
		h.log.InternalError("caregivers.list failed", err, "user_id", requester.ID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeData(w, http.StatusOK, caregivers)
}
