package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tanvirh/whatsapp-concierge/pkg/logging"
)

const (
	defaultGraphAPIBase = "https://graph.facebook.com/v19.0"
	defaultHTTPTimeout  = 10 * time.Second

	messagingProduct = "whatsapp"
)

// Client sends messages via the WhatsApp Cloud API.
type Client struct {
	accessToken   string
	phoneNumberID string
	graphAPIBase  string
	httpClient    *http.Client
	logger        *logging.Logger
}

// NewClient creates a new Cloud API client for the given sender number.
func NewClient(accessToken, phoneNumberID string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		graphAPIBase:  defaultGraphAPIBase,
		httpClient:    &http.Client{Timeout: defaultHTTPTimeout},
		logger:        logger,
	}
}

// SetGraphAPIBase overrides the Graph API base URL (useful for testing).
func (c *Client) SetGraphAPIBase(base string) {
	if base != "" {
		c.graphAPIBase = base
	}
}

// SendText sends a plain text message to the given recipient. Failures
// are logged and reported through the result; they are never returned
// as an error because no caller aborts on a failed send.
func (c *Client) SendText(ctx context.Context, to, body string) SendResult {
	req := SendRequest{
		MessagingProduct: messagingProduct,
		To:               to,
		Type:             "text",
		Text:             SendText{Body: body},
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return c.failed(to, fmt.Errorf("whatsapp: marshal send request: %w", err))
	}

	url := fmt.Sprintf("%s/%s/messages", c.graphAPIBase, c.phoneNumberID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return c.failed(to, fmt.Errorf("whatsapp: create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return c.failed(to, fmt.Errorf("whatsapp: send message: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.failed(to, fmt.Errorf("whatsapp: read response: %w", err))
	}

	var sendResp SendResponse
	if err := json.Unmarshal(respBody, &sendResp); err != nil {
		return c.failed(to, fmt.Errorf("whatsapp: unmarshal response: %w", err))
	}

	if sendResp.Error != nil {
		return c.failed(to, fmt.Errorf("whatsapp: API error %d: %s", sendResp.Error.Code, sendResp.Error.Message))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.failed(to, fmt.Errorf("whatsapp: unexpected status %d: %s", resp.StatusCode, string(respBody)))
	}

	result := SendResult{Delivered: true}
	if len(sendResp.Messages) > 0 {
		result.MessageID = sendResp.Messages[0].ID
	}
	return result
}

func (c *Client) failed(to string, err error) SendResult {
	c.logger.Error("outbound send failed", "error", err, "to", to)
	return SendResult{Err: err}
}
