package github

import (
	"fmt"
	"net/http"
	"time"

	"repoguard/internal/utils"
)

// headerRoundTripper forces the Accept and Content-Type headers on every
// request, replacing the defaults go-github sets.
type headerRoundTripper struct {
	base   http.RoundTripper
	accept string
}

func (t *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.accept != "" {
		req.Header.Set("Accept", t.accept)
	}
	req.Header.Set("Content-Type", "application/json")
	return t.base.RoundTrip(req)
}

// loggingRoundTripper emits one debug line per request and response,
// including latency.
type loggingRoundTripper struct {
	base   http.RoundTripper
	logger *utils.Logger
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	t.logger.Debug(fmt.Sprintf("github api: %s %s", req.Method, req.URL.String()))

	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start).Truncate(time.Millisecond)
	if err != nil {
		t.logger.Debug(fmt.Sprintf("github api: error after %s: %v", dur, err))
	} else {
		t.logger.Debug(fmt.Sprintf("github api: %d %s (%s)", resp.StatusCode, http.StatusText(resp.StatusCode), dur))
	}
	return resp, err
}
