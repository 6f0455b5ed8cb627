package handler

import (
	"errors"
	"net/http"
	"time"

	medicationdomain "github.com/LoreWasTaken/caresync/internal/domain/medication"
	prescriptiondomain "github.com/LoreWasTaken/caresync/internal/domain/prescription"
	"github.com/LoreWasTaken/caresync/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

// frequencyRequest is the nested dosing sub-object; its fields flatten onto
// "frequency.*" keys in validation errors.
type frequencyRequest struct {
	TimesPerDay int    `json:"times_per_day"`
	Label       string `json:"label"`
}

type createMedicationRequest struct {
	Name          string            `json:"name"`
	Dosage        float64           `json:"dosage"`
	DosageUnit    string            `json:"dosage_unit"`
	Frequency     *frequencyRequest `json:"frequency"`
	TotalQuantity int               `json:"total_quantity"`
	StartDate     string            `json:"start_date"`
	EndDate       *string           `json:"end_date"`
	Instructions  string            `json:"instructions"`
}

type updateFrequencyRequest struct {
	TimesPerDay *int    `json:"times_per_day"`
	Label       *string `json:"label"`
}

type updateMedicationRequest struct {
	Name              *string                 `json:"name"`
	Dosage            *float64                `json:"dosage"`
	DosageUnit        *string                 `json:"dosage_unit"`
	Frequency         *updateFrequencyRequest `json:"frequency"`
	TotalQuantity     *int                    `json:"total_quantity"`
	RemainingQuantity *int                    `json:"remaining_quantity"`
	EndDate           *string                 `json:"end_date"`
	Instructions      *string                 `json:"instructions"`
}

type medicationListResponse struct {
	Items []medicationdomain.Medication `json:"items"`
	Total int64                         `json:"total"`
	Page  int                           `json:"page"`
	Limit int                           `json:"limit"`
}

func (h *Handlers) ListMedications(w http.ResponseWriter, r *http.Request) {
	_, targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	page, err := parseIntParam(query.Get("page"), 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid page")
		return
	}
	limit, err := parseIntParam(query.Get("limit"), 20)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	filter := medicationdomain.ListFilter{
		Status: medicationdomain.StatusFilter(query.Get("status")),
		Search: query.Get("search"),
		Page:   page,
		Limit:  limit,
	}

	items, total, err := h.Medications.List(r.Context(), targetID, filter)
	if err != nil {
		h.log.InternalError("medications.list failed", err, "target_id", targetID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeData(w, http.StatusOK, medicationListResponse{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h *Handlers) CreateMedication(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var req createMedicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	startDate, err := parseDateParam(req.StartDate)
	if err != nil {
		writeValidationError(w, map[string]string{"start_date": "must be an ISO date"})
		return
	}
	var endDate *time.Time
	if req.EndDate != nil {
		endDate, err = parseDateParam(*req.EndDate)
		if err != nil {
			writeValidationError(w, map[string]string{"end_date": "must be an ISO date"})
			return
		}
	}

	input := medicationdomain.CreateInput{
		UserID:        requester.ID,
		Name:          req.Name,
		Dosage:        req.Dosage,
		DosageUnit:    req.DosageUnit,
		TotalQuantity: req.TotalQuantity,
		EndDate:       endDate,
		Instructions:  req.Instructions,
	}
	if req.Frequency != nil {
		input.TimesPerDay = req.Frequency.TimesPerDay
		input.Frequency = req.Frequency.Label
	}
	if startDate != nil {
		input.StartDate = *startDate
	}

	created, err := h.Medications.Create(r.Context(), input)
	if err != nil {
		var verr *medicationdomain.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr.Fields)
			return
		}
		h.log.InternalError("medications.create failed", err, "user_id", requester.ID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeData(w, http.StatusCreated, created)
}

func (h *Handlers) GetMedication(w http.ResponseWriter, r *http.Request) {
	_, targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	m, err := h.Medications.Get(r.Context(), chi.URLParam(r, "id"), targetID)
	if err != nil {
		if errors.Is(err, medicationdomain.ErrMedicationNotFound) {
			writeError(w, http.StatusNotFound, "medication not found")
			return
		}
		h.log.InternalError("medications.get failed", err, "target_id", targetID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeData(w, http.StatusOK, m)
}

func (h *Handlers) UpdateMedication(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var req updateMedicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	input := medicationdomain.UpdateInput{
		Name:              req.Name,
		Dosage:            req.Dosage,
		DosageUnit:        req.DosageUnit,
		TotalQuantity:     req.TotalQuantity,
		RemainingQuantity: req.RemainingQuantity,
		Instructions:      req.Instructions,
	}
	if req.Frequency != nil {
		input.TimesPerDay = req.Frequency.TimesPerDay
		input.Frequency = req.Frequency.Label
	}
	if req.EndDate != nil {
		endDate, err := parseDateParam(*req.EndDate)
		if err != nil {
			writeValidationError(w, map[string]string{"end_date": "must be an ISO date"})
			return
		}
		input.EndDate = endDate
	}

	updated, err := h.Medications.Update(r.Context(), chi.URLParam(r, "id"), requester.ID, input)
	if err != nil {
		var verr *medicationdomain.ValidationError
		switch {
		case errors.As(err, &verr):
			writeValidationError(w, verr.Fields)
		case errors.Is(err, medicationdomain.ErrMedicationNotFound):
			writeError(w, http.StatusNotFound, "medication not found")
		default:
			h.log.InternalError("medications.update failed", err, "user_id", requester.ID)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeData(w, http.StatusOK, updated)
}

func (h *Handlers) DeleteMedication(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	if err := h.Medications.Deactivate(r.Context(), chi.URLParam(r, "id"), requester.ID); err != nil {
		if errors.Is(err, medicationdomain.ErrMedicationNotFound) {
			writeError(w, http.StatusNotFound, "medication not found")
			return
		}
		h.log.InternalError("medications.delete failed", err, "user_id", requester.ID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeData(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *Handlers) RefillNeeded(w http.ResponseWriter, r *http.Request) {
	_, targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	meds, err := h.Medications.ListRefillNeeded(r.Context(), targetID)
	if err != nil {
		h.log.InternalError("medications.refill_needed failed", err, "target_id", targetID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeData(w, http.StatusOK, meds)
}

func (h *Handlers) MedicationSchedule(w http.ResponseWriter, r *http.Request) {
	_, targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	days, err := parseIntParam(query.Get("days"), 7)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid days")
		return
	}
	start := time.Now()
	if parsed, err := parseDateParam(query.Get("start_date")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date")
		return
	} else if parsed != nil {
		start = *parsed
	}

	entries, err := h.Medications.Schedule(r.Context(), targetID, start, days)
	if err != nil {
		h.log.InternalError("medications.schedule failed", err, "target_id", targetID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeData(w, http.StatusOK, entries)
}

func (h *Handlers) NextDoses(w http.ResponseWriter, r *http.Request) {
	_, targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	hours, err := parseIntParam(r.URL.Query().Get("hours"), 24)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hours")
		return
	}

	doses, err := h.Medications.UpcomingDoses(r.Context(), targetID, time.Now(), hours)
	if err != nil {
		h.log.InternalError("medications.next_doses failed", err, "target_id", targetID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeData(w, http.StatusOK, doses)
}

const maxImportSize = 10 << 20 // 10 MiB

func (h *Handlers) ImportPrescription(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeValidationError(w, map[string]string{"file": "a pdf file is required"})
		return
	}
	defer file.Close()

	created, err := h.Prescriptions.Import(r.Context(), requester.ID, header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, prescriptiondomain.ErrParserNotConfigured):
			writeError(w, http.StatusServiceUnavailable, "prescription import is not available")
		case errors.Is(err, prescriptiondomain.ErrParserUnavailable):
			h.log.BusinessError("medications.import: parser unavailable", err, "user_id", requester.ID)
			writeError(w, http.StatusBadGateway, "prescription parser unavailable")
		default:
			h.log.InternalError("medications.import failed", err, "user_id", requester.ID)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeData(w, http.StatusCreated, created)
}
