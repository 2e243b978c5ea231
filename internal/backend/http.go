package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vinayskanse/blocky/internal/domain"
)

// HTTPClient implements Client against the daemon's HTTP API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// Ensure HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the daemon at baseURL
// (e.g. "http://127.0.0.1:8377").
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// do sends a JSON request and decodes the response into out when non-nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// decodeError turns a non-2xx response into a domain error where possible.
func decodeError(resp *http.Response) error {
	var apiErr domain.APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", apiErr.Message, domain.ErrNotFound)
		case http.StatusBadRequest:
			return fmt.Errorf("%s: %w", apiErr.Message, domain.ErrInvalidInput)
		}
		return &apiErr
	}
	return fmt.Errorf("backend returned %s", resp.Status)
}

func (c *HTTPClient) GetAllGroups(ctx context.Context) ([]domain.Group, error) {
	var groups []domain.Group
	if err := c.do(ctx, http.MethodGet, "/api/v1/groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (c *HTTPClient) CreateGroup(ctx context.Context, req domain.CreateGroupRequest) error {
	return c.do(ctx, http.MethodPost, "/api/v1/groups", req, nil)
}

func (c *HTTPClient) UpdateGroup(ctx context.Context, id, name string, enabled bool) error {
	req := domain.UpdateGroupRequest{Name: name, Enabled: enabled}
	return c.do(ctx, http.MethodPut, "/api/v1/groups/"+url.PathEscape(id), req, nil)
}

func (c *HTTPClient) UpdateDomains(ctx context.Context, id string, domains []string) error {
	req := domain.UpdateDomainsRequest{Domains: domains}
	return c.do(ctx, http.MethodPut, "/api/v1/groups/"+url.PathEscape(id)+"/domains", req, nil)
}

func (c *HTTPClient) UpdateSchedule(ctx context.Context, id string, days []string, startTime, endTime string) error {
	req := domain.UpdateScheduleRequest{Days: days, StartTime: startTime, EndTime: endTime}
	return c.do(ctx, http.MethodPut, "/api/v1/groups/"+url.PathEscape(id)+"/schedule", req, nil)
}

func (c *HTTPClient) DeleteGroup(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/groups/"+url.PathEscape(id), nil, nil)
}

// Blocklist returns the daemon's current active blocklist snapshot.
func (c *HTTPClient) Blocklist(ctx context.Context) (*domain.BlockState, error) {
	var state domain.BlockState
	if err := c.do(ctx, http.MethodGet, "/api/v1/blocklist", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}
