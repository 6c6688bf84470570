package stremio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// Client talks to the Stremio JSON API. Every method is a POST of a JSON
// body to /api/{method}, answered by a {result, error} envelope.
type Client struct {
	endpoint string
	http     *http.Client
	log      *zerolog.Logger
}

// NewClient creates a client for the API at endpoint. The supplied HTTP
// client sets the request deadline, which differs between authentication and
// collection calls.
func NewClient(endpoint string, hc *http.Client, log *zerolog.Logger) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     hc,
		log:      log,
	}
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// Call posts params to /api/{method} and decodes the envelope's result into
// out when out is non-nil. Transport failures come back as ErrTimeout or
// ErrConnection, non-200 statuses as *ServerError, and envelope violations
// or explicit error payloads as *ProtocolError.
func (c *Client) Call(ctx context.Context, method string, params, out any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("api %s: marshal request: %w", method, err)
	}

	c.log.Debug().Str("method", method).Msg("api call")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("api %s: create request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api %s: %w", method, classifyTransport(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api %s: %w", method, &ServerError{Status: resp.StatusCode})
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api %s: read response: %w", method, classifyTransport(err))
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("api %s: %w", method, &ProtocolError{Message: "response is not valid JSON"})
	}
	if len(env.Error) > 0 && !bytes.Equal(env.Error, []byte("null")) {
		return fmt.Errorf("api %s: %w", method, &ProtocolError{Message: errorMessage(env.Error)})
	}
	if len(env.Result) == 0 || bytes.Equal(env.Result, []byte("null")) {
		return fmt.Errorf("api %s: %w", method, &ProtocolError{Message: "response has no result"})
	}

	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("api %s: %w", method, &ProtocolError{Message: "decode result: " + err.Error()})
		}
	}
	return nil
}

// FetchJSON performs a GET against an addon URL and returns the body bytes.
// Addon endpoints sit outside the API envelope, so only transport and status
// failures are classified here.
func FetchJSON(ctx context.Context, hc *http.Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServerError{Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

// classifyTransport folds transport-level failures into the two sentinel
// errors so callers can branch on errors.Is.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %v", ErrConnection, err)
}

// errorMessage extracts the failure text from an error payload, which the
// API sends as either a bare string or an object with a message field.
func errorMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(raw)
}
