// Package apiclient to provide methods to send HTTP requests
// to a running dashboard.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"sanket/monitor/datalake/model"
)

const (
	summaryPath = "/api/summary"
	healthPath  = "/health"
)

var errHTTPUnexpectedStatusCode = errors.New("unexpected http status code")
var errHTTPBasePathFormatting = errors.New("error formatting HTTP base path")
var errHTTPBodyUnmarshall = errors.New("error unmarshalling HTTP response body")

// ErrDataUnavailable is returned when the dashboard has no log to aggregate.
var ErrDataUnavailable = errors.New("dashboard data unavailable")

// APIClient manages the endpoints of the dashboard API.
type APIClient struct {
	// a pointer to the http client to use.
	HTTPClient *http.Client
	// a pointer to the url to be used as a base url for all requests.
	BasePath *url.URL
}

// HTTPUnexpectedStatusCodeError is a error wrapper.
func HTTPUnexpectedStatusCodeError(statusCode int) error {
	return fmt.Errorf("%w, %d", errHTTPUnexpectedStatusCode, statusCode)
}

// HTTPBasePathFormattingError reports an unparsable base path.
func HTTPBasePathFormattingError(basePath string) error {
	return fmt.Errorf("%w, %s", errHTTPBasePathFormatting, basePath)
}

// HTTPBodyUnmarshallError wraps a decoding failure.
func HTTPBodyUnmarshallError(baseErr error) error {
	return fmt.Errorf("%w, %w", errHTTPBodyUnmarshall, baseErr)
}

// DataUnavailableError carries the reason reported by the dashboard.
func DataUnavailableError(msg string) error {
	return fmt.Errorf("%w: %s", ErrDataUnavailable, msg)
}

// NewAPIClient creates a new APIClient.
func NewAPIClient(httpClient *http.Client, basePath string) (*APIClient, error) {
	// Use a default http client if none is provided.
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	basePathURL, err := url.Parse(basePath)
	if err != nil || basePathURL.Scheme == "" || basePathURL.Host == "" {
		return nil, HTTPBasePathFormattingError(basePath)
	}

	return &APIClient{
		HTTPClient: httpClient,
		BasePath:   basePathURL,
	}, nil
}

// HealthResponse represents the response from the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Input  string `json:"input"`
}

// GetSummary sends a GET request to the summary endpoint.
func (c *APIClient) GetSummary(ctx context.Context) (*http.Response, *model.AuditSnapshot, error) {
	var result model.AuditSnapshot
	resp, err := c.get(ctx, summaryPath, &result)
	if err != nil {
		return resp, nil, err
	}
	return resp, &result, nil
}

// GetHealth sends a GET request to the health endpoint.
func (c *APIClient) GetHealth(ctx context.Context) (*http.Response, *HealthResponse, error) {
	var result HealthResponse
	resp, err := c.get(ctx, healthPath, &result)
	if err != nil {
		return resp, nil, err
	}
	return resp, &result, nil
}

// get sends a GET request to path and decodes a 200 response into out.
func (c *APIClient) get(ctx context.Context, path string, out interface{}) (*http.Response, error) {
	// Use ResolveReference to correctly combine the base URL with the endpoint path.
	localVarPath := c.BasePath.ResolveReference(&url.URL{Path: path})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, localVarPath.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Add("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return resp, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, fmt.Errorf("error reading response body: %w", err)
	}

	// Handle error status codes first.
	if resp.StatusCode == http.StatusServiceUnavailable {
		return resp, DataUnavailableError(strings.TrimSpace(string(body)))
	}
	if resp.StatusCode != http.StatusOK {
		return resp, HTTPUnexpectedStatusCodeError(resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return resp, HTTPBodyUnmarshallError(err)
	}
	return resp, nil
}
