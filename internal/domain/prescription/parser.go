package prescription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

var (
	ErrParserNotConfigured = errors.New("prescription parser not configured")
	ErrParserUnavailable   = errors.New("prescription parser unavailable")
)

// ParserClient talks to the external PDF text-extraction service. The
// parsing itself is the collaborator's job; this client only ships the
// document and decodes the parsed records.
type ParserClient struct {
	baseURL string
	client  *http.Client
}

func NewParserClient(baseURL string, timeout time.Duration) *ParserClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ParserClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type parseResponse struct {
	Medications []ParsedMedication `json:"medications"`
}

// Parse uploads the PDF and returns zero or more parsed medication records.
func (c *ParserClient) Parse(ctx context.Context, filename string, document io.Reader) ([]ParsedMedication, error) {
	if c.baseURL == "" {
		return nil, ErrParserNotConfigured
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, document); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParserUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrParserUnavailable, resp.StatusCode)
	}

	var payload parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrParserUnavailable, err)
	}
	return payload.Medications, nil
}
