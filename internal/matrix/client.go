// Package matrix implements a minimal Matrix client-server API client.
//
// The client covers exactly what the bot needs: reading and writing room
// widget state events, sending plain text messages, and long-polling /sync
// for incoming events. Failures are returned as typed *ClientError values
// decoded from the standard Matrix error body, so callers can branch on
// them instead of string matching.
package matrix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/keepmind9/matrixbot/pkg/constants"
)

// ClientError represents an error response from the homeserver
type ClientError struct {
	StatusCode int
	Code       string `json:"errcode"`
	Message    string `json:"error"`
}

// Error implements the error interface
func (e *ClientError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("homeserver returned HTTP %d", e.StatusCode)
}

// Client is a Matrix client-server API client bound to a single bot account
type Client struct {
	homeserverURL string
	accessToken   string
	userID        string
	httpClient    *http.Client
	// syncClient has no overall timeout. /sync is held open by the
	// homeserver for the full long-poll window, so its deadline is set
	// per request from the hold window instead.
	syncClient *http.Client
	txnCounter atomic.Int64
}

// NewClient creates a new Matrix client for the given homeserver and account
func NewClient(homeserverURL, accessToken, userID string) *Client {
	return &Client{
		homeserverURL: trimTrailingSlash(homeserverURL),
		accessToken:   accessToken,
		userID:        userID,
		httpClient: &http.Client{
			Timeout: constants.DefaultMatrixTimeout,
		},
		syncClient: &http.Client{},
	}
}

// UserID returns the Matrix user ID the client is authenticated as
func (c *Client) UserID() string {
	return c.userID
}

// SetHTTPClient replaces the HTTP client used for non-sync requests
// (used in tests)
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// doRequest performs an authenticated request and decodes the JSON response
// into out (when out is non-nil). Non-2xx responses are decoded into a
// *ClientError.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	return c.do(ctx, c.httpClient, method, path, query, body, out)
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, query url.Values, body interface{}, out interface{}) error {
	reqURL := c.homeserverURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("request to homeserver failed: %w", err)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read homeserver response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		clientErr := &ClientError{StatusCode: resp.StatusCode}
		// Best effort: the standard error body carries errcode/error
		_ = json.Unmarshal(respData, clientErr)
		return clientErr
	}

	if out != nil {
		if err := json.Unmarshal(respData, out); err != nil {
			return fmt.Errorf("failed to decode homeserver response: %w", err)
		}
	}

	return nil
}

// nextTxnID returns a transaction ID unique within this process lifetime
func (c *Client) nextTxnID() string {
	return fmt.Sprintf("matrixbot.%d.%d", time.Now().UnixMilli(), c.txnCounter.Add(1))
}
