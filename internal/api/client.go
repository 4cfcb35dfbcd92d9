package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinehint/internal/shared"
)

// DefaultBaseURL is the backend used when none is configured.
const DefaultBaseURL = "http://localhost:3001/api"

// TokenSource supplies the current session token; "" means signed out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is the single gateway to the recommendation backend.
//
// Every request carries JSON content headers, a request id, the bearer token when one is
// stored, and any cookies the backend has set.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *log.Logger
}

// Options configures a [Client].
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Tokens     TokenSource
	Logger     *log.Logger
}

// NewClient creates a client. A nil HTTPClient gets a fresh client with a cookie jar.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		jar, _ := cookiejar.New(nil)
		httpClient = &http.Client{Jar: jar, Timeout: opts.Timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		tokens:     opts.Tokens,
		logger:     shared.WithLogger(logger, "component", "api"),
	}
}

// BaseURL returns the configured base path.
func (c *Client) BaseURL() string { return c.baseURL }

// RequestOptions describes one call to [Client.Request].
type RequestOptions struct {
	Method  string
	Query   url.Values
	Body    any
	Headers map[string]string
}

// Request issues a call to path and decodes a 2xx JSON body into result, when result is non-nil.
//
// Failures are returned as [*NetworkError], [*RateLimitError] or [*APIError].
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions, result any) error {
	body, status, err := c.do(ctx, path, opts)
	if err != nil {
		return err
	}

	if status < 200 || status > 299 {
		apiErr := decodeError(status, body)
		c.logger.Debug("request rejected", "path", path, "status", status, "error", apiErr)
		return apiErr
	}

	if result == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: failed to decode response from %s: %v", shared.ErrAPIRequest, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, opts RequestOptions) ([]byte, int, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	fullURL := c.baseURL + path
	if len(opts.Query) > 0 {
		fullURL += "?" + opts.Query.Encode()
	}

	var reader io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", shared.GenerateID())
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			c.logger.Warn("failed to read session token", "error", err)
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("request", "method", method, "path", path, "request_id", req.Header.Get("X-Request-ID"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &NetworkError{Method: method, URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &NetworkError{Method: method, URL: fullURL, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	return body, resp.StatusCode, nil
}

// RawResponse is an undecoded response, used by the debugging commands.
type RawResponse struct {
	StatusCode int
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Get performs an authenticated GET and returns the response without classifying its status.
func (c *Client) Get(ctx context.Context, path string) (*RawResponse, error) {
	return c.raw(ctx, http.MethodGet, path, nil)
}

// Post performs an authenticated POST of a pre-encoded JSON body.
func (c *Client) Post(ctx context.Context, path string, data []byte) (*RawResponse, error) {
	var body any
	if len(data) > 0 {
		body = json.RawMessage(data)
	}
	return c.raw(ctx, http.MethodPost, path, body)
}

func (c *Client) raw(ctx context.Context, method, path string, body any) (*RawResponse, error) {
	payload, status, err := c.do(ctx, path, RequestOptions{Method: method, Body: body})
	if err != nil {
		return nil, err
	}

	resp := &RawResponse{StatusCode: status, Body: payload}
	var data any
	if err := json.Unmarshal(payload, &data); err == nil {
		resp.IsJSON = true
		resp.JSONData = data
	}
	return resp, nil
}
