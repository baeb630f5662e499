package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"whatsapp-autoreply/internal/activity"
	"whatsapp-autoreply/pkg/models"
)

// APIError is a non-2xx answer from the server. Message is the server's
// "error" field when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// Client calls the automation server's JSON API
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 120 * time.Second},
	}
}

// Generate asks the server for a reply to the automation described by req
func (c *Client) Generate(ctx context.Context, req models.GenerateRequest) (string, error) {
	var out models.GenerateResponse
	if err := c.do(ctx, http.MethodPost, "/api/generate", req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Send dispatches a test message and returns the provider message id
func (c *Client) Send(ctx context.Context, to, message string) (string, error) {
	var out models.SendResponse
	if err := c.do(ctx, http.MethodPost, "/api/send", models.SendRequest{To: to, Message: message}, &out); err != nil {
		return "", err
	}
	return out.SID, nil
}

// WebhookAutomations returns the list the webhook currently matches against
func (c *Client) WebhookAutomations(ctx context.Context) ([]models.AutomationFlow, error) {
	var out struct {
		Automations []models.AutomationFlow `json:"automations"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/webhook", nil, &out); err != nil {
		return nil, err
	}
	return out.Automations, nil
}

// Activity returns the server's activity feed, newest first
func (c *Client) Activity(ctx context.Context) ([]activity.Entry, error) {
	var out []activity.Entry
	if err := c.do(ctx, http.MethodGet, "/api/activity", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload struct {
			Error string `json:"error"`
		}
		// the body may not be JSON at all
		_ = json.Unmarshal(raw, &payload)
		return &APIError{Status: resp.StatusCode, Message: payload.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
