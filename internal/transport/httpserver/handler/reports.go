package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	adherencedomain "github.com/LoreWasTaken/caresync/internal/domain/adherence"
	statsdomain "github.com/LoreWasTaken/caresync/internal/domain/stats"
	"github.com/LoreWasTaken/caresync/internal/transport/httpserver/middleware"
)

var (
	errRendererNotConfigured = errors.New("report renderer not configured")
	errRendererUnavailable   = errors.New("report renderer unavailable")
)

// ReportRenderer ships adherence data to the external PDF rendering service
// and streams the document back. Layout and typesetting are entirely the
// collaborator's concern.
type ReportRenderer struct {
	baseURL string
	client  *http.Client
}

func NewReportRenderer(baseURL string, timeout time.Duration) *ReportRenderer {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ReportRenderer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type reportPayload struct {
	PatientName string                   `json:"patient_name"`
	From        string                   `json:"from"`
	To          string                   `json:"to"`
	Summary     statsdomain.Summary      `json:"summary"`
	History     []adherencedomain.Record `json:"history"`
}

func (c *ReportRenderer) Render(ctx context.Context, payload reportPayload) (io.ReadCloser, error) {
	if c.baseURL == "" {
		return nil, errRendererNotConfigured
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errRendererUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", errRendererUnavailable, resp.StatusCode)
	}
	return resp.Body, nil
}

func (h *Handlers) AdherenceReportPDF(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	query := r.URL.Query()
	from, err := parseDateRequired(query.Get("start_date"))
	if err != nil {
		writeValidationError(w, map[string]string{"start_date": "must be an ISO date"})
		return
	}
	to, err := parseDateRequired(query.Get("end_date"))
	if err != nil {
		writeValidationError(w, map[string]string{"end_date": "must be an ISO date"})
		return
	}
	rangeEnd := endOfDay(&to)

	summary, err := h.Stats.Summary(r.Context(), requester.ID, statsdomain.RangeFilter{From: from, To: rangeEnd})
	if err != nil {
		h.log.InternalError("reports.pdf: stats failed", err, "user_id", requester.ID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	history, _, err := h.Adherence.ListRecords(r.Context(), requester.ID, adherencedomain.ListFilter{
		From:  from,
		To:    rangeEnd,
		Page:  1,
		Limit: 200,
	})
	if err != nil {
		h.log.InternalError("reports.pdf: history failed", err, "user_id", requester.ID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	document, err := h.Reports.Render(r.Context(), reportPayload{
		PatientName: requester.Name,
		From:        from.Format("2006-01-02"),
		To:          to.Format("2006-01-02"),
		Summary:     summary,
		History:     history,
	})
	if err != nil {
		switch {
		case errors.Is(err, errRendererNotConfigured):
			writeError(w, http.StatusServiceUnavailable, "report rendering is not available")
		case errors.Is(err, errRendererUnavailable):
			h.log.BusinessError("reports.pdf: renderer unavailable", err, "user_id", requester.ID)
			writeError(w, http.StatusBadGateway, "report renderer unavailable")
		default:
			h.log.InternalError("reports.pdf failed", err, "user_id", requester.ID)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	defer document.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="adherence-report.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, document)
}
