package clerk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"
)

const defaultTimeout = 10 * time.Second

// ErrNotConfigured is returned when no backend secret key is set.
var ErrNotConfigured = errors.New("clerk: secret key is not configured")

// Client talks to the identity provider's backend API.
type Client struct {
	baseURL string
	secret  string
	http    *http.Client
}

// User is the subset of the provider's user object we read back.
type User struct {
	ID             string                 `json:"id"`
	PublicMetadata map[string]interface{} `json:"public_metadata"`
}

// NewClient creates a new identity provider client.
func NewClient(baseURL, secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// UpdatePublicMetadata merges patch into the user's public metadata and
// returns the user as stored after the merge.
func (c *Client) UpdatePublicMetadata(ctx context.Context, userID string, patch map[string]interface{}) (*User, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("clerk request error: client is nil")
	}
	if strings.TrimSpace(c.secret) == "" {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("clerk request error: user id is empty")
	}

	payload, err := json.Marshal(map[string]interface{}{"public_metadata": patch})
	if err != nil {
		return nil, fmt.Errorf("clerk request error: %w", err)
	}

	endpoint := c.baseURL + "/v1/users/" + url.PathEscape(userID) + "/metadata"
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("clerk request error: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyRequestError(ctx, err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		if readErr != nil {
			return nil, fmt.Errorf("clerk http error: status=%d body=<failed to read body: %v>", resp.StatusCode, readErr)
		}
		return nil, fmt.Errorf("clerk http error: status=%d body=%s", resp.StatusCode, string(body))
	}
	if readErr != nil {
		return nil, fmt.Errorf("clerk request error: %w", readErr)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("clerk decode error: %w", err)
	}
	return &user, nil
}

func classifyRequestError(ctx context.Context, err error) error {
	if isTimeoutError(ctx, err) {
		return fmt.Errorf("clerk timeout: %w", err)
	}
	if isNetworkError(err) {
		return fmt.Errorf("clerk network error: %w", err)
	}
	return fmt.Errorf("clerk request error: %w", err)
}

func isTimeoutError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	return false
}
