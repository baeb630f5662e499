package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGraphURL = "https://graph.facebook.com/v19.0"

// CloudAPIClient sends text messages through the WhatsApp Cloud API
type CloudAPIClient struct {
	Token         string
	PhoneNumberID string
	BaseURL       string
	HTTP          *http.Client
}

func NewCloudAPIClient(token, phoneNumberID string) *CloudAPIClient {
	return &CloudAPIClient{
		Token:         token,
		PhoneNumberID: phoneNumberID,
		BaseURL:       defaultGraphURL,
		HTTP:          &http.Client{Timeout: 30 * time.Second},
	}
}

// --- Message Structures ---

type GenericMessage struct {
	MessagingProduct string   `json:"messaging_product"`
	RecipientType    string   `json:"recipient_type,omitempty"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             *TextObj `json:"text,omitempty"`
}

type TextObj struct {
	Body       string `json:"body"`
	PreviewUrl bool   `json:"preview_url,omitempty"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// CloudAddress strips the Twilio style whatsapp: scheme and the leading +,
// leaving the bare number the Cloud API expects.
func CloudAddress(addr string) string {
	addr = strings.TrimPrefix(addr, AddressPrefix)
	return strings.TrimPrefix(addr, "+")
}

// --- Helper Functions ---

func (c *CloudAPIClient) sendRequest(ctx context.Context, method, url string, body interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return respBody, fmt.Errorf("API error: %s - %s", resp.Status, string(respBody))
	}

	return respBody, nil
}

// --- Messaging Methods ---

func (c *CloudAPIClient) Send(ctx context.Context, to, body string) (string, error) {
	if to == "" || body == "" {
		return "", ErrMissingFields
	}

	msg := GenericMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               CloudAddress(to),
		Type:             "text",
		Text:             &TextObj{Body: body},
	}

	url := fmt.Sprintf("%s/%s/messages", strings.TrimRight(c.BaseURL, "/"), c.PhoneNumberID)
	raw, err := c.sendRequest(ctx, http.MethodPost, url, msg)
	if err != nil {
		return "", fmt.Errorf("cloud api send: %w", err)
	}

	var out sendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("cloud api send: decode response: %w", err)
	}
	if len(out.Messages) == 0 || out.Messages[0].ID == "" {
		return "", errors.New("cloud api send: response has no message id")
	}
	return out.Messages[0].ID, nil
}
