// Package twilio is a thin client for the two Twilio REST calls this
// service makes: sending a WhatsApp message and probing the account (the
// smoke test behind the verify-twilio command).
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.twilio.com"

// Config holds Twilio credentials and sender settings.
type Config struct {
	AccountSID string        `yaml:"account_sid"`
	AuthToken  string        `yaml:"auth_token"`
	FromNumber string        `yaml:"from_number"` // e.g. whatsapp:+14155238886
	Timeout    time.Duration `yaml:"timeout"`
	BaseURL    string        `yaml:"base_url"` // override for tests
}

// Client talks to the Twilio REST API.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Twilio client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		cfg:     cfg,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// SendResult is the subset of the Twilio message response we care about.
type SendResult struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// SendWhatsApp sends a WhatsApp message to the given number.
func (c *Client) SendWhatsApp(ctx context.Context, to, body string) (*SendResult, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.cfg.AccountSID)

	form := url.Values{}
	form.Set("From", c.cfg.FromNumber)
	form.Set("To", to)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp)
	}

	var result SendResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// AccountProbe verifies that the configured credentials can reach the
// Twilio API, returning the account's friendly name.
func (c *Client) AccountProbe(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s.json", c.baseURL, c.cfg.AccountSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}

	var account struct {
		FriendlyName string `json:"friendly_name"`
		Status       string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return account.FriendlyName, nil
}

func apiError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return fmt.Errorf("twilio error %d (status %d): %s", body.Code, resp.StatusCode, body.Message)
	}
	return fmt.Errorf("twilio returned status %d", resp.StatusCode)
}
