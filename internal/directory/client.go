// Package directory is the HTTP client for the identity directory service,
// the remote owner of canonical user records. The gateway uses it for two
// calls only: a phone uniqueness lookup and a one-shot user creation after
// sign-up.
package directory

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
)

// DefaultTimeout bounds each outbound call so a hung directory service
// cannot hang the whole sign-up request.
const DefaultTimeout = 5 * time.Second

// CanonicalUser is the cross-service provisioning payload. The password is
// passed through as submitted; hashing is owned by the directory service.
type CanonicalUser struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Password     string `json:"password"`
	BetterAuthID string `json:"betterAuthId"`
}

// Client talks to the identity directory service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a directory client for the given base URL. A zero
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

// VerifyPhone asks the directory whether the exact phone value is already
// registered. A true body means the number exists.
func (c *Client) VerifyPhone(ctx context.Context, phone string) (bool, error) {
	endpoint := c.baseURL + "/users/verifyPhone/" + url.PathEscape(phone)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("verify phone request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("directory returned status %d: %s", resp.StatusCode, string(body))
	}

	var exists bool
	if err := json.Unmarshal(body, &exists); err != nil {
		return false, fmt.Errorf("unmarshal verify phone response: %w", err)
	}

	return exists, nil
}

// CreateUser submits one canonical record creation request. The created
// record is discarded beyond confirming success.
func (c *Client) CreateUser(ctx context.Context, user CanonicalUser) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal canonical user: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("create user request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("directory returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
