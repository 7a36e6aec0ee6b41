package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v56/github"
	"golang.org/x/oauth2"

	"repoguard/internal/utils"
)

// Client wraps the GitHub REST API. Every request carries the configured
// Accept header, "Authorization: token <token>" and a JSON content type.
type Client struct {
	client *github.Client
	base   string
}

// Options configures NewClient.
type Options struct {
	Token        string
	BaseEndpoint string
	Accept       string
	// Verbose traces every request and response at debug level.
	Verbose bool
}

// NewClient creates a GitHub API client for the given endpoint.
func NewClient(opts Options, logger *utils.Logger) (*Client, error) {
	base := strings.TrimRight(opts.BaseEndpoint, "/")
	baseURL, err := url.Parse(base + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base endpoint %q: %w", opts.BaseEndpoint, err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("invalid base endpoint %q: absolute URL required", opts.BaseEndpoint)
	}

	transport := http.DefaultTransport
	if opts.Verbose {
		transport = &loggingRoundTripper{base: transport, logger: logger}
	}
	if opts.Token != "" {
		// The "token" type makes oauth2 send "Authorization: token <value>".
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "token"})
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}
	transport = &headerRoundTripper{base: transport, accept: opts.Accept}

	client := github.NewClient(&http.Client{Transport: transport})
	client.BaseURL = baseURL

	return &Client{
		client: client,
		base:   base,
	}, nil
}

// APIError is a non-2xx response from GitHub.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// StatusCode extracts the HTTP status from an *APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Get fetches endpoint and decodes the JSON response into v. A 404 is returned
// as (404, nil) because callers treat a missing resource as a normal state.
// Status 0 means the request never produced a response.
func (c *Client) Get(ctx context.Context, endpoint string, v interface{}) (int, error) {
	status, err := c.do(ctx, http.MethodGet, endpoint, nil, v)
	if status == http.StatusNotFound {
		return status, nil
	}
	return status, err
}

// Put sends body as JSON to endpoint.
func (c *Client) Put(ctx context.Context, endpoint string, body interface{}) (int, error) {
	return c.do(ctx, http.MethodPut, endpoint, body, nil)
}

// Post sends body to endpoint and returns the Location of the created resource.
// When GitHub omits the header the html_url of the response is used.
func (c *Client) Post(ctx context.Context, endpoint string, body interface{}) (string, error) {
	var created struct {
		HTMLURL string `json:"html_url"`
		URL     string `json:"url"`
	}
	req, err := c.client.NewRequest(http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	resp, err := c.client.Do(ctx, req, &created)
	if err != nil {
		return "", c.wrap(http.MethodPost, endpoint, resp, err)
	}

	if loc := resp.Header.Get("Location"); loc != "" {
		return loc, nil
	}
	if created.HTMLURL != "" {
		return created.HTMLURL, nil
	}
	return created.URL, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, v interface{}) (int, error) {
	req, err := c.client.NewRequest(method, endpoint, body)
	if err != nil {
		return 0, fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	resp, err := c.client.Do(ctx, req, v)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if err != nil {
		return status, c.wrap(method, endpoint, resp, err)
	}
	return status, nil
}

// wrap converts a go-github failure into an *APIError when GitHub answered,
// and into a transport error otherwise.
func (c *Client) wrap(method, endpoint string, resp *github.Response, err error) error {
	if resp == nil || resp.Response == nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	if resp.StatusCode < http.StatusMultipleChoices {
		return fmt.Errorf("%s %s: decoding response: %w", method, endpoint, err)
	}

	body := err.Error()
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		body = ghErr.Message
		if len(ghErr.Errors) > 0 {
			if detail, mErr := json.Marshal(ghErr.Errors); mErr == nil {
				body = fmt.Sprintf("%s %s", body, detail)
			}
		}
	}
	return &APIError{
		Method:     method,
		URL:        endpoint,
		StatusCode: resp.StatusCode,
		Body:       body,
	}
}
