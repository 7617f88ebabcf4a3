package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"quicky/internal/domain"
)

// Client calls the Quicky backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError represents a backend rejection: a non-2xx status or a body
// whose success flag is false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// NewClient constructs a backend client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SummarizeRequest is the payload for the summarize endpoint.
type SummarizeRequest struct {
	ContentType   string        `json:"content_type"`
	ContentSource string        `json:"content_source"`
	Format        domain.Format `json:"format"`
	SessionID     string        `json:"session_id"`
}

// envelope carries the fields shared by every backend response.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// failureMessage returns the server's human-readable rejection reason.
func (e envelope) failureMessage() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// Upload submits one file as a multipart body and returns the extracted
// artifact. The server decides which file types it accepts.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (domain.Artifact, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return domain.Artifact{}, fmt.Errorf("copy file into multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return domain.Artifact{}, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", body)
	if err != nil {
		return domain.Artifact{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp struct {
		envelope
		domain.Artifact
	}
	if err := c.do(req, &resp, &resp.envelope); err != nil {
		return domain.Artifact{}, err
	}
	return resp.Artifact, nil
}

// Summarize requests a summary for already-extracted content.
func (c *Client) Summarize(ctx context.Context, sreq SummarizeRequest) (domain.Summary, error) {
	payload, err := json.Marshal(sreq)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("encode summarize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/summarize", bytes.NewReader(payload))
	if err != nil {
		return domain.Summary{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		envelope
		Summary   string `json:"summary"`
		SummaryID int64  `json:"summary_id"`
		SessionID string `json:"session_id"`
		Cached    bool   `json:"cached"`
	}
	if err := c.do(req, &resp, &resp.envelope); err != nil {
		return domain.Summary{}, err
	}

	return domain.Summary{
		ID:          resp.SummaryID,
		ContentType: sreq.ContentType,
		Source:      sreq.ContentSource,
		Format:      sreq.Format,
		Text:        resp.Summary,
		Cached:      resp.Cached,
	}, nil
}

// Summaries returns the session's history, newest first.
func (c *Client) Summaries(ctx context.Context, sessionID string) ([]domain.Summary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/summaries/"+sessionID, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		envelope
		Summaries []summaryRecord `json:"summaries"`
	}
	if err := c.do(req, &resp, &resp.envelope); err != nil {
		return nil, err
	}

	out := make([]domain.Summary, 0, len(resp.Summaries))
	for _, record := range resp.Summaries {
		out = append(out, record.toDomain())
	}
	return out, nil
}

// ToggleLike flips the liked flag on a summary and returns the new value.
func (c *Client) ToggleLike(ctx context.Context, summaryID int64) (bool, error) {
	url := fmt.Sprintf("%s/api/summary/%d/like", c.baseURL, summaryID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return false, err
	}

	var resp struct {
		envelope
		Liked bool `json:"liked"`
	}
	if err := c.do(req, &resp, &resp.envelope); err != nil {
		return false, err
	}
	return resp.Liked, nil
}

// Health probes the backend health endpoint.
func (c *Client) Health(ctx context.Context) (domain.HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return domain.HealthStatus{}, err
	}

	var status domain.HealthStatus
	if err := c.do(req, &status, nil); err != nil {
		return domain.HealthStatus{}, err
	}
	return status, nil
}

// do executes one request and decodes the JSON body into out. Non-2xx
// statuses and success:false envelopes become *APIError; an unparsable
// body yields an APIError with an empty message so callers can
// substitute their generic fallback.
func (c *Client) do(req *http.Request, out any, env *envelope) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var failure envelope
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return &APIError{StatusCode: resp.StatusCode, Message: failure.failureMessage()}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{StatusCode: resp.StatusCode}
	}

	if env != nil && !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.failureMessage()}
	}
	return nil
}

// summaryRecord matches the history endpoint's wire format.
type summaryRecord struct {
	ID          int64         `json:"id"`
	ContentType string        `json:"content_type"`
	Source      string        `json:"content_source"`
	Format      domain.Format `json:"summary_format"`
	Text        string        `json:"summary_text"`
	Liked       bool          `json:"liked"`
	CreatedAt   string        `json:"created_at"`
}

func (r summaryRecord) toDomain() domain.Summary {
	out := domain.Summary{
		ID:          r.ID,
		ContentType: r.ContentType,
		Source:      r.Source,
		Format:      r.Format,
		Text:        r.Text,
		Liked:       r.Liked,
	}
	if t, err := time.Parse("2006-01-02T15:04:05", r.CreatedAt); err == nil {
		out.CreatedAt = t
	} else if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		out.CreatedAt = t
	}
	return out
}
