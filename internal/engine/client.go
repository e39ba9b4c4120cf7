// Package engine is the HTTP client for the upstream credential engine,
// the opaque service owning password hashing, session issuance, and the
// actual sign-up/sign-in execution. The gateway forwards the caller's
// payload verbatim and reads the minted session off the response; it never
// interprets credentials itself.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds each forwarded call to the credential engine.
const DefaultTimeout = 10 * time.Second

// Session is the engine's session result for a successful sign-up.
type Session struct {
	UserID string
	Token  string
}

// Response is the credential engine's answer, relayed to the caller
// verbatim by the gateway.
type Response struct {
	Status int
	Body   []byte
}

// OK reports whether the engine answered with a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// signUpBody is the slice of the engine's sign-up response the gateway
// actually reads. Everything else passes through untouched.
type signUpBody struct {
	Token string `json:"token"`
	User  struct {
		ID string `json:"id"`
	} `json:"user"`
}

// Session parses the session the engine minted, or nil when the response
// is not a successful sign-up or carries no user id.
func (r *Response) Session() *Session {
	if !r.OK() {
		return nil
	}
	var parsed signUpBody
	if err := json.Unmarshal(r.Body, &parsed); err != nil {
		return nil
	}
	if parsed.User.ID == "" {
		return nil
	}
	return &Session{UserID: parsed.User.ID, Token: parsed.Token}
}

// Client forwards auth requests to the credential engine.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an engine client for the given base URL. A zero
// timeout falls back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SignUpEmail forwards a sign-up payload to the engine. The error is
// transport-level only; engine-side validation failures come back as a
// non-2xx Response for the gateway to relay.
func (c *Client) SignUpEmail(ctx context.Context, payload []byte) (*Response, error) {
	return c.post(ctx, "/sign-up/email", payload)
}

// SignInEmail forwards a sign-in payload to the engine.
func (c *Client) SignInEmail(ctx context.Context, payload []byte) (*Response, error) {
	return c.post(ctx, "/sign-in/email", payload)
}

func (c *Client) post(ctx context.Context, path string, payload []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("engine request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read engine response: %w", err)
	}

	return &Response{Status: resp.StatusCode, Body: body}, nil
}
