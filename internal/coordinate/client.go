// Package coordinate provides a client for the Google Maps Coordinate API.
// This package centralizes all Coordinate API interactions for the application.
package coordinate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/coordex/internal/interfaces"
	"github.com/ternarybob/coordex/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the Coordinate API.
	DefaultBaseURL = "https://www.googleapis.com/coordinate/v1"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5

	// DefaultPageSize is the number of jobs requested per listing page.
	DefaultPageSize = 100

	// jobListFields restricts the listing projection to the identifier, the
	// state, and the change timestamps. Full change history is unbounded per
	// job and must not be transmitted.
	jobListFields = "items(id,state,jobChange(timestamp)),nextPageToken"
)

// Client is a Coordinate API client. The HTTP client it wraps is expected to
// carry authorization (see internal/auth).
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	pageSize   int
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithPageSize sets the number of jobs requested per listing page.
func WithPageSize(pageSize int) ClientOption {
	return func(c *Client) {
		c.pageSize = pageSize
	}
}

// WithTimeout sets the HTTP request timeout on the wrapped client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Coordinate API client around an authorized HTTP
// client.
func NewClient(httpClient *http.Client, opts ...ClientOption) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		pageSize:   DefaultPageSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a GET request to the API.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.baseURL+path).
			Msg("Coordinate API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetCustomFieldDefs retrieves the team's custom field definitions as a
// mapping from numeric field ID to field name.
func (c *Client) GetCustomFieldDefs(ctx context.Context, teamID string) (map[int64]string, error) {
	var result models.CustomFieldDefList
	path := fmt.Sprintf("/teams/%s/custom_fields", url.PathEscape(teamID))
	if err := c.get(ctx, path, nil, &result); err != nil {
		return nil, err
	}

	defs := make(map[int64]string, len(result.Items))
	for _, item := range result.Items {
		id, err := item.ID.Int64()
		if err != nil {
			return nil, fmt.Errorf("custom field %q has non-numeric id %q", item.Name, item.ID.String())
		}
		defs[id] = item.Name
	}

	return defs, nil
}

// Jobs returns an iterator over every job in the team, fetching listing pages
// on demand. Only the current page is held in memory.
func (c *Client) Jobs(ctx context.Context, teamID string) interfaces.JobIterator {
	return &jobIterator{
		ctx:    ctx,
		client: c,
		teamID: teamID,
	}
}

// Ensure interface compliance
var _ interfaces.CoordinateService = (*Client)(nil)
