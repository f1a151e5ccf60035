// Package catalog provides read access to the RKE release catalog and
// extraction of supported Kubernetes versions from release notes.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultBaseURL points at the upstream release listing API.
	DefaultBaseURL = "https://api.github.com/repos/rancher/rke/releases"

	// PageSize is the fixed number of releases requested per page.
	// A page shorter than this is the last page of the catalog.
	PageSize = 25

	// requestTimeout bounds each page fetch; a hung catalog must not
	// hang the whole resolution.
	requestTimeout = 30 * time.Second
)

var (
	// ErrRateLimited indicates the catalog refused the request due to
	// quota exhaustion. The client never retries; callers decide.
	ErrRateLimited = errors.New("release catalog rate limited")

	// ErrMalformedResponse indicates the catalog payload could not be
	// parsed as a release list.
	ErrMalformedResponse = errors.New("malformed release catalog response")
)

// releaseCandidateTag marks prerelease tags such as v1.4.0-rc2.
var releaseCandidateTag = regexp.MustCompile(`-rc\d*`)

// Release is one published version of the RKE binary together with its
// free-text release notes.
type Release struct {
	TagName    string `json:"tag_name"`
	Body       string `json:"body"`
	Prerelease bool   `json:"prerelease"`
}

// IsPrerelease reports whether the release must be excluded from
// compatibility matching.
func (r Release) IsPrerelease() bool {
	return r.Prerelease || releaseCandidateTag.MatchString(r.TagName)
}

// Client pages through the release catalog. It performs no retries and
// holds no state beyond its connection settings.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the catalog endpoint (used by tests).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithToken sets a bearer token for authenticated catalog access.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient overrides the HTTP client, e.g. to attach timeouts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a catalog client for the upstream release API.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPage returns one page of releases, newest first, in catalog order.
// Page numbering starts at 1. A page shorter than PageSize is the last one.
func (c *Client) FetchPage(ctx context.Context, page int) ([]Release, error) {
	if page < 1 {
		return nil, fmt.Errorf("page number must be >= 1, got %d", page)
	}

	url := fmt.Sprintf("%s?per_page=%d&page=%d", c.baseURL, PageSize, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog page %d fetch failed: %w", page, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog page %d: %w", page, err)
	}

	var releases []Release
	if err := json.Unmarshal(body, &releases); err != nil {
		// The API signals quota exhaustion as an error object inside the
		// response body rather than with a dedicated status. A payload
		// that parses as a release list is never a rate-limit response,
		// so the text inspection only applies once the parse has failed;
		// release notes are free to mention rate limits.
		if strings.Contains(strings.ToLower(string(body)), "rate limit") {
			return nil, fmt.Errorf("catalog page %d: %w", page, ErrRateLimited)
		}
		return nil, fmt.Errorf("catalog page %d: %w: %v", page, ErrMalformedResponse, err)
	}

	return releases, nil
}
