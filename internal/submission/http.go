// Package submission delivers compiled test configurations: to the remote
// test submission service, to a local PostgreSQL table, or to memory.
package submission

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/p-n-ai/pai-assess/internal/schedule"
)

// HTTPSubmitter posts requests to the test submission service.
type HTTPSubmitter struct {
	baseURL string
	token   string
	client  *http.Client
}

// HTTPOption configures an HTTPSubmitter.
type HTTPOption func(*HTTPSubmitter)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSubmitter) {
		s.client = client
	}
}

// WithToken sets a bearer token sent with every request.
func WithToken(token string) HTTPOption {
	return func(s *HTTPSubmitter) {
		s.token = token
	}
}

// NewHTTPSubmitter creates a submission service client.
func NewHTTPSubmitter(baseURL string, opts ...HTTPOption) *HTTPSubmitter {
	s := &HTTPSubmitter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type submitResponse struct {
	Success bool `json:"success"`
}

// Submit sends a create batch as POST /v1/tests/batch or a single-test edit as
// PATCH /v1/tests/{id}.
func (s *HTTPSubmitter) Submit(ctx context.Context, req schedule.Request) (bool, error) {
	method, path := http.MethodPost, "/v1/tests/batch"
	if req.Mode == schedule.ModeEditSingle {
		if req.TestID == "" {
			return false, fmt.Errorf("edit request has no test id")
		}
		method, path = http.MethodPatch, "/v1/tests/"+url.PathEscape(req.TestID)
	}

	body, err := json.Marshal(req.Body())
	if err != nil {
		return false, fmt.Errorf("marshal request: %w", err)
	}
	if err := CheckPayload(req.Mode, body); err != nil {
		return false, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", IdempotencyKey(req.WorkflowID, body))
	if s.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return false, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("submission api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var out submitResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return false, fmt.Errorf("unmarshal response: %w", err)
	}
	return out.Success, nil
}

// IdempotencyKey derives a stable key from the submitting workflow and the
// encoded request body, so the service can drop a resend of a request it
// already accepted without merging identical batches from other workflows.
func IdempotencyKey(workflowID string, body []byte) string {
	h, _ := blake2b.New256(nil) // only fails for an oversized key
	h.Write([]byte(workflowID))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
