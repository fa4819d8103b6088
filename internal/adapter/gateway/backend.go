package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"web-gateway/internal/domain"
)

// apiEnvelope is the backend's uniform response wrapper.
type apiEnvelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// backendClient is the shared HTTP plumbing for the backend REST API.
// Mutating calls follow the double-submit CSRF contract: a token is
// fetched from /token/csrf and echoed back in the X-XSRF-TOKEN header.
type backendClient struct {
	baseURL    string
	httpClient *http.Client
}

func newBackendClient(baseURL string, timeout time.Duration) *backendClient {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	return &backendClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// do sends a JSON request and decodes the envelope. accessToken and
// csrfToken are attached when non-empty.
func (b *backendClient) do(ctx context.Context, method, path string, body any, accessToken, csrfToken string) (*apiEnvelope, error) {
	var reqBody *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
		}
		reqBody = bytes.NewBuffer(payload)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Platform", "browser")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if csrfToken != "" {
		req.Header.Set("X-XSRF-TOKEN", csrfToken)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: invalid response body: %w", domain.ErrBackendUnavailable, err)
	}
	if envelope.Status == 0 {
		envelope.Status = resp.StatusCode
	}

	return &envelope, nil
}

// csrfToken fetches a fresh CSRF token for a mutating call.
func (b *backendClient) csrfToken(ctx context.Context, accessToken string) (string, error) {
	envelope, err := b.do(ctx, http.MethodGet, "/token/csrf", nil, accessToken, "")
	if err != nil {
		return "", err
	}
	if !envelope.Success {
		return "", fmt.Errorf("%w: %s", domain.ErrUpstreamRejected, envelope.Message)
	}

	var data struct {
		CSRFToken string `json:"csrf_token"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	return data.CSRFToken, nil
}

// mutate sends a CSRF-protected non-GET request.
func (b *backendClient) mutate(ctx context.Context, method, path string, body any, accessToken string) (*apiEnvelope, error) {
	csrf, err := b.csrfToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return b.do(ctx, method, path, body, accessToken, csrf)
}
