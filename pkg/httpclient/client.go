package httpclient

import (
	"net/http"
	"time"
)

const userAgent = "TitlesLibrary/1.0"

// uaTransport wraps an http.RoundTripper and sets a User-Agent header on
// every outgoing request. Some addon gateways reject Go's default
// "Go-http-client/1.1" user agent.
type uaTransport struct {
	base http.RoundTripper
}

func (t *uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return t.base.RoundTrip(req)
}

// New creates an HTTP client with the given overall request timeout.
// Authentication calls use a tighter deadline than collection calls, so the
// timeout is the caller's choice rather than a package constant.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &uaTransport{
			base: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}
