package common

import (
	_ "embed"
	"net/http"
	"strings"
	"time"
)

//go:embed VERSION
var version string

// Version returns the release version baked into the binary.
func Version() string {
	return strings.TrimSpace(version)
}

// UserAgent is the User-Agent sent on every outbound request.
func UserAgent() string {
	return "ChargeAdvisor/" + Version()
}

type headerTransport struct {
	transport http.RoundTripper
	headers   http.Header
}

// RoundTrip implements http.RoundTripper by setting the static headers on a
// clone of the request.
func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original request's headers
	// which might be shared or reused
	req = req.Clone(req.Context())
	for k, vs := range t.headers {
		req.Header[k] = vs
	}
	return t.transport.RoundTrip(req)
}

// HTTPClient returns a default http client with a default user-agent set.
// Any extra headers (API keys for instance) are added to every request.
func HTTPClient(timeout time.Duration, extra map[string]string) *http.Client {
	headers := http.Header{}
	headers.Set("User-Agent", UserAgent())
	for k, v := range extra {
		headers.Set(k, v)
	}

	return &http.Client{
		Transport: &headerTransport{
			transport: http.DefaultTransport,
			headers:   headers,
		},
		Timeout: timeout,
	}
}
