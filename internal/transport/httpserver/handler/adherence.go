package handler

import (
	"errors"
	"net/http"
	"time"

	adherencedomain "github.com/LoreWasTaken/caresync/internal/domain/adherence"
	statsdomain "github.com/LoreWasTaken/caresync/internal/domain/stats"
	"github.com/LoreWasTaken/caresync/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type recordIntakeRequest struct {
	MedicationID  string     `json:"medication_id"`
	Status        string     `json:"status"`
	ScheduledTime *time.Time `json:"scheduled_time"`
	TakenAt       *time.Time `json:"taken_at"`
	Notes         string     `json:"notes"`
}

type bulkRecordRequest struct {
	Records []recordIntakeRequest `json:"records"`
}

type updateRecordRequest struct {
	Status  *string    `json:"status"`
	TakenAt *time.Time `json:"taken_at"`
	Notes   *string    `json:"notes"`
}

type recordListResponse struct {
	Items []adherencedomain.Record `json:"items"`
	Total int64                    `json:"total"`
	Page  int                      `json:"page"`
	Limit int                      `json:"limit"`
}

func toRecordInput(req recordIntakeRequest) adherencedomain.RecordInput {
	input := adherencedomain.RecordInput{
		MedicationID: req.MedicationID,
		Status:       req.Status,
		Notes:        req.Notes,
	}
	if req.ScheduledTime != nil {
		input.ScheduledTime = *req.ScheduledTime
	}
	if req.TakenAt != nil {
		input.TakenAt = *req.TakenAt
	}
	return input
}

func (h *Handlers) RecordIntake(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var req recordIntakeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	record, err := h.Adherence.RecordIntake(r.Context(), requester.ID, toRecordInput(req))
	if err != nil {
		h.writeAdherenceError(w, err, requester.ID, "adherence.record")
		return
	}

	writeData(w, http.StatusCreated, record)
}

func (h *Handlers) BulkRecord(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var req bulkRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	inputs := make([]adherencedomain.RecordInput, 0, len(req.Records))
	for _, record := range req.Records {
		inputs = append(inputs, toRecordInput(record))
	}

	records, err := h.Adherence.BulkRecord(r.Context(), requester.ID, inputs)
	if err != nil {
		h.writeAdherenceError(w, err, requester.ID, "adherence.bulk")
		return
	}

	writeData(w, http.StatusCreated, records)
}

func (h *Handlers) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var req updateRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	record, err := h.Adherence.UpdateRecord(r.Context(), chi.URLParam(r, "id"), requester.ID, adherencedomain.UpdateInput{
		Status:  req.Status,
		TakenAt: req.TakenAt,
		Notes:   req.Notes,
	})
	if err != nil {
		h.writeAdherenceError(w, err, requester.ID, "adherence.update")
		return
	}

	writeData(w, http.StatusOK, record)
}

func (h *Handlers) ListRecords(w http.ResponseWriter, r *http.Request) {
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
	limit, err := parseIntParam(query.Get("limit"), 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	from, err := parseDateParam(query.Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date")
		return
	}
	to, err := parseDateParam(query.Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date")
		return
	}

	filter := adherencedomain.ListFilter{
		MedicationID: query.Get("medication_id"),
		Page:         page,
		Limit:        limit,
	}
	if from != nil {
		filter.From = *from
	}
	if to != nil {
		filter.To = endOfDay(to)
	}

	items, total, err := h.Adherence.ListRecords(r.Context(), targetID, filter)
	if err != nil {
		h.log.InternalError("adherence.list failed", err, "target_id", targetID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeData(w, http.StatusOK, recordListResponse{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h *Handlers) AdherenceStats(w http.ResponseWriter, r *http.Request) {
	_, targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	filter, ok := h.parseRangeFilter(w, r)
	if !ok {
		return
	}

	if medicationID := r.URL.Query().Get("medication_id"); medicationID != "" {
		summary, err := h.Stats.MedicationSummary(r.Context(), targetID, medicationID, filter)
		if err != nil {
			h.log.InternalError("adherence.stats failed", err, "target_id", targetID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeData(w, http.StatusOK, summary)
		return
	}

	summary, err := h.Stats.Summary(r.Context(), targetID, filter)
	if err != nil {
		h.log.InternalError("adherence.stats failed", err, "target_id", targetID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeData(w, http.StatusOK, summary)
}

func (h *Handlers) AdherenceTrends(w http.ResponseWriter, r *http.Request) {
	_, targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	days, err := parseIntParam(r.URL.Query().Get("days"), 7)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid days")
		return
	}

	buckets, err := h.Stats.Trends(r.Context(), targetID, days)
	if err != nil {
		h.log.InternalError("adherence.trends failed", err, "target_id", targetID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeData(w, http.StatusOK, buckets)
}

func (h *Handlers) parseRangeFilter(w http.ResponseWriter, r *http.Request) (statsdomain.RangeFilter, bool) {
	query := r.URL.Query()
	from, err := parseDateParam(query.Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date")
		return statsdomain.RangeFilter{}, false
	}
	to, err := parseDateParam(query.Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date")
		return statsdomain.RangeFilter{}, false
	}

	filter := statsdomain.RangeFilter{}
	if from != nil {
		filter.From = *from
	}
	if to != nil {
		filter.To = endOfDay(to)
	}
	return filter, true
}

func (h *Handlers) writeAdherenceError(w http.ResponseWriter, err error, userID, operation string) {
	var verr *adherencedomain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr.Fields)
	case errors.Is(err, adherencedomain.ErrMedicationNotFound):
		writeError(w, http.StatusNotFound, "medication not found")
	case errors.Is(err, adherencedomain.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "adherence record not found")
	default:
		h.log.InternalError(operation+" failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func endOfDay(t *time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
