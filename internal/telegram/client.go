// Package telegram is a minimal Telegram Bot API client covering the calls
// sellerctl makes: identity checks and webhook management.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// BotInfo is the part of the getMe result sellerctl reports.
type BotInfo struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// WebhookInfo mirrors the Bot API getWebhookInfo result. An empty URL means
// no webhook is set and the bot receives updates by polling.
type WebhookInfo struct {
	URL                  string   `json:"url"`
	HasCustomCertificate bool     `json:"has_custom_certificate"`
	PendingUpdateCount   int      `json:"pending_update_count"`
	IPAddress            string   `json:"ip_address,omitempty"`
	LastErrorDate        int64    `json:"last_error_date,omitempty"`
	LastErrorMessage     string   `json:"last_error_message,omitempty"`
	MaxConnections       int      `json:"max_connections,omitempty"`
	AllowedUpdates       []string `json:"allowed_updates,omitempty"`
}

// WebhookOptions configures SetWebhook.
type WebhookOptions struct {
	URL                string
	SecretToken        string // sent back in X-Telegram-Bot-Api-Secret-Token; omitted when empty
	DropPendingUpdates bool
}

// Client calls the Telegram Bot API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the Bot API at baseURL. A nil httpClient
// gets a 10 second timeout.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// GetMe returns the identity of the bot the token belongs to.
func (c *Client) GetMe(ctx context.Context) (BotInfo, error) {
	var info BotInfo
	if err := c.call(ctx, "getMe", nil, &info); err != nil {
		return BotInfo{}, err
	}
	return info, nil
}

// GetWebhookInfo returns the current webhook configuration.
func (c *Client) GetWebhookInfo(ctx context.Context) (WebhookInfo, error) {
	var info WebhookInfo
	if err := c.call(ctx, "getWebhookInfo", nil, &info); err != nil {
		return WebhookInfo{}, err
	}
	return info, nil
}

// DeleteWebhook removes the webhook so the bot can poll for updates.
func (c *Client) DeleteWebhook(ctx context.Context, dropPendingUpdates bool) error {
	params := url.Values{}
	if dropPendingUpdates {
		params.Set("drop_pending_updates", "true")
	}
	return c.call(ctx, "deleteWebhook", params, nil)
}

// SetWebhook points the bot at an HTTPS endpoint.
func (c *Client) SetWebhook(ctx context.Context, opts WebhookOptions) error {
	if opts.URL == "" {
		return errors.New("setWebhook: url is required")
	}
	params := url.Values{"url": {opts.URL}}
	if opts.SecretToken != "" {
		params.Set("secret_token", opts.SecretToken)
	}
	if opts.DropPendingUpdates {
		params.Set("drop_pending_updates", strconv.FormatBool(true))
	}
	return c.call(ctx, "setWebhook", params, nil)
}

// call performs one Bot API method. Parameters are sent form-encoded; a nil
// result discards the payload. Errors never include the token.
func (c *Client) call(ctx context.Context, method string, params url.Values, result any) error {
	endpoint := c.baseURL + "/bot" + c.token + "/" + method

	var (
		req *http.Request
		err error
	)
	if len(params) == 0 {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, c.redact(err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, c.redact(err))
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var out apiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("%s: HTTP %d: decode response: %w", method, resp.StatusCode, err)
	}
	if !out.OK {
		desc := out.Description
		if desc == "" {
			desc = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%s: HTTP %d: %s", method, resp.StatusCode, desc)
	}
	if result == nil || len(out.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(out.Result, result); err != nil {
		return fmt.Errorf("%s: decode result: %w", method, err)
	}
	return nil
}

// redact replaces the token in the request URL carried by a *url.Error.
// The cause stays reachable through Unwrap.
func (c *Client) redact(err error) error {
	var urlErr *url.Error
	if c.token == "" || !errors.As(err, &urlErr) {
		return err
	}
	return &url.Error{
		Op:  urlErr.Op,
		URL: strings.ReplaceAll(urlErr.URL, "/bot"+c.token+"/", "/bot<token>/"),
		Err: urlErr.Err,
	}
}
