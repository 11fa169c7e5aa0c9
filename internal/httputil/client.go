// Package httputil provides the JSON transport used by every entity accessor
// and the matching server-side response helpers.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
)

const maxResponseBytes = 8 << 20

// =============================================================================
// Token source
// =============================================================================

// TokenSource yields the bearer token attached to outgoing requests.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token() string { return string(t) }

// =============================================================================
// Client
// =============================================================================

// Client issues JSON requests against a REST base URL.
// It never retries, caches or queues.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        *logging.Logger
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Tokens     TokenSource
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// New creates a Client.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Default("transport")
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		tokens:     cfg.Tokens,
		log:        log,
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs one request and returns the raw JSON body.
//
// The result is nil when the response carries no JSON content type or an
// empty body. Any non-2xx status, network failure or malformed JSON is
// returned as *Error whose message is the single human-readable string
// callers should surface.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if traceID := logging.GetTraceID(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithContext(ctx).WithError(err).WithField("path", path).Warn("request failed")
		return nil, &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	data, _, err := ReadAllWithLimit(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("read response body: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode, Message: ErrorMessage(resp.StatusCode, data)}
		c.log.WithContext(ctx).WithFields(map[string]interface{}{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Debug(apiErr.Message)
		return nil, apiErr
	}

	if !isJSON(resp.Header.Get("Content-Type")) || len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, &Error{StatusCode: resp.StatusCode, Message: "invalid JSON in response"}
	}
	return json.RawMessage(data), nil
}

// DoJSON performs a request and decodes the JSON body into out.
// out is left untouched when the response has no JSON content.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out interface{}) error {
	raw, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if raw == nil || out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.DoJSON(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.DoJSON(ctx, http.MethodPost, path, body, out)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.DoJSON(ctx, http.MethodPut, path, body, out)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.DoJSON(ctx, http.MethodDelete, path, nil, nil)
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// ReadAllWithLimit reads up to limit bytes and reports whether the body was truncated.
func ReadAllWithLimit(r io.Reader, limit int64) ([]byte, bool, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > limit {
		return data[:limit], true, nil
	}
	return data, false, nil
}
