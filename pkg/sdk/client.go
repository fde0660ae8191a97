// Package refscan is a typed HTTP client for the refscan API.
package refscan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const defaultTimeout = 150 * time.Second

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("refscan: %s (%s, status %d)", e.Message, e.Code, e.StatusCode)
}

// Client calls the refscan API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the Bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the given base URL, e.g. "https://refscan.example.com".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Scan uploads a referral image and returns the extraction result.
// mimeType must be an image type the service accepts (JPEG, PNG, GIF, WebP).
func (c *Client) Scan(ctx context.Context, image []byte, mimeType string) (ScanResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="referral"`)
	hdr.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return ScanResult{}, fmt.Errorf("refscan: build multipart: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return ScanResult{}, fmt.Errorf("refscan: write image part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return ScanResult{}, fmt.Errorf("refscan: close multipart: %w", err)
	}

	var out ScanResult
	err = c.do(ctx, http.MethodPost, "/api/v1/referral/scan", mw.FormDataContentType(), &body, &out)
	return out, err
}

// MatchTests resolves test names against the catalog without an image.
func (c *Client) MatchTests(ctx context.Context, tests []string) (MatchResult, error) {
	payload, err := json.Marshal(map[string][]string{"tests": tests})
	if err != nil {
		return MatchResult{}, fmt.Errorf("refscan: encode request: %w", err)
	}

	var out MatchResult
	err = c.do(ctx, http.MethodPost, "/api/v1/referral/tests/match", "application/json", bytes.NewReader(payload), &out)
	return out, err
}

// Health reports the service health. Note: an unhealthy service answers 503
// with a body; that still decodes and returns a nil error here.
func (c *Client) Health(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return Health{}, fmt.Errorf("refscan: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Health{}, fmt.Errorf("refscan: health request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out Health
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Health{}, fmt.Errorf("refscan: decode health response: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("refscan: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("refscan: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("refscan: decode response: %w", err)
	}
	return nil
}

func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Code: "internal_error", Message: resp.Status}

	var body struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil && json.Unmarshal(raw, &body) == nil {
		if body.Code != "" {
			apiErr.Code = body.Code
		}
		if body.Error != "" {
			apiErr.Message = body.Error
		}
	}
	return apiErr
}
