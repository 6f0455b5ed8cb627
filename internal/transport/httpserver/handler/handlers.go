package handler

import (
	"errors"
	"net/http"
	"strings"

	adherencedomain "github.com/LoreWasTaken/caresync/internal/domain/adherence"
	caregiverdomain "github.com/LoreWasTaken/caresync/internal/domain/caregiver"
	medicationdomain "github.com/LoreWasTaken/caresync/internal/domain/medication"
	prescriptiondomain "github.com/LoreWasTaken/caresync/internal/domain/prescription"
	statsdomain "github.com/LoreWasTaken/caresync/internal/domain/stats"
	userdomain "github.com/LoreWasTaken/caresync/internal/domain/user"
	"github.com/LoreWasTaken/caresync/internal/transport/httpserver/middleware"
	"github.com/LoreWasTaken/caresync/pkg/logger"
)

type Handlers struct {
	Users         *userdomain.Service
	Gate          *caregiverdomain.Gate
	Caregivers    *caregiverdomain.Service
	Medications   *medicationdomain.Service
	Adherence     *adherencedomain.Service
	Stats         *statsdomain.Service
	Prescriptions *prescriptiondomain.Service
	Reports       *ReportRenderer
	log           logger.Logger
}

func New(
	users *userdomain.Service,
	gate *caregiverdomain.Gate,
	caregivers *caregiverdomain.Service,
	medications *medicationdomain.Service,
	adherence *adherencedomain.Service,
	stats *statsdomain.Service,
	prescriptions *prescriptiondomain.Service,
	reports *ReportRenderer,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Users:         users,
		Gate:          gate,
		Caregivers:    caregivers,
		Medications:   medications,
		Adherence:     adherence,
		Stats:         stats,
		Prescriptions: prescriptions,
		Reports:       reports,
		log:           log,
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	writeData(w, http.StatusOK, requester)
}

type updateMeRequest struct {
	Name string `json:"name"`
}

func (h *Handlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var req updateMeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeValidationError(w, map[string]string{"name": "name is required"})
		return
	}

	updated, err := h.Users.UpdateName(r.Context(), requester.ID, req.Name)
	if err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.InternalError("update profile failed", err, "user_id", requester.ID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeData(w, http.StatusOK, updated)
}

// resolveTarget picks the subject of a read: the requester themselves, or
// the patient named by ?patient_id= once the access gate allows it. Denials
// come back as 403 with no data about the target.
func (h *Handlers) resolveTarget(w http.ResponseWriter, r *http.Request) (*userdomain.User, string, bool) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return nil, "", false
	}

	targetID := requester.ID
	if patientID := r.URL.Query().Get("patient_id"); patientID != "" {
		targetID = patientID
	}

	if err := h.Gate.Require(r.Context(), requester, targetID); err != nil {
		if errors.Is(err, caregiverdomain.ErrAccessDenied) {
			h.log.BusinessError("access denied", err, "requester_id", requester.ID, "target_id", targetID)
			writeError(w, http.StatusForbidden, "access denied")
			return nil, "", false
		}
		h.log.InternalError("access check failed", err, "requester_id", requester.ID, "target_id", targetID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, "", false
	}

	return requester, targetID, true
}
