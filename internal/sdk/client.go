// Package sdk is the HTTP client of the QuickNotes backend service. It mirrors
// the account and databases services the client core depends on.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// ProjectHeader identifies the project on every request.
	ProjectHeader  = "X-QuickNotes-Project"
	defaultTimeout = 15 * time.Second
)

var (
	ErrMissingEndpoint = errors.New("sdk: endpoint required")
	ErrMissingProject  = errors.New("sdk: project id required")
)

// Error is a non-2xx response from the backend service.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return http.StatusText(e.Status)
}

type errorPayload struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

// Config describes how to reach the backend service.
type Config struct {
	Endpoint   string
	ProjectID  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client performs authenticated requests. The session cookie set by login is
// kept in a cookie jar and replayed on later calls.
type Client struct {
	endpoint   *url.URL
	projectID  string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config) (*Client, error) {
	rawEndpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if rawEndpoint == "" {
		return nil, ErrMissingEndpoint
	}
	endpoint, err := url.Parse(rawEndpoint)
	if err != nil {
		return nil, fmt.Errorf("sdk: invalid endpoint: %w", err)
	}
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		return nil, ErrMissingProject
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("sdk: cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoint:   endpoint,
		projectID:  projectID,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// call sends a request to path, which must already be escaped.
func (c *Client) call(ctx context.Context, method, path string, params url.Values, body any, out any) error {
	target := *c.endpoint
	target.RawPath = c.endpoint.EscapedPath() + path
	unescaped, err := url.PathUnescape(target.RawPath)
	if err != nil {
		return fmt.Errorf("sdk: invalid path: %w", err)
	}
	target.Path = unescaped
	target.RawQuery = params.Encode()

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("sdk: encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, target.String(), payload)
	if err != nil {
		return fmt.Errorf("sdk: build request: %w", err)
	}
	request.Header.Set(ProjectHeader, c.projectID)
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Debug("backend request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return err
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{Status: response.StatusCode}
		var decoded errorPayload
		if err := json.NewDecoder(response.Body).Decode(&decoded); err == nil {
			apiErr.Code = decoded.Code
			apiErr.Message = decoded.Message
		}
		c.logger.Debug("backend returned error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", apiErr.Status),
			zap.String("code", apiErr.Code),
		)
		return apiErr
	}

	if out == nil || response.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("sdk: decode response: %w", err)
	}
	return nil
}
