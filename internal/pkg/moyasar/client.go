// Package moyasar is a minimal client for the Moyasar payment gateway
// (hosted invoices). The gateway is the system's only path for moving money;
// the booking core never talks to it directly, only through the payment domain.
package moyasar

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Config holds Moyasar API configuration
type Config struct {
	BaseURL       string // e.g. https://api.moyasar.com/v1
	APIKey        string // secret key, used as basic-auth username
	WebhookSecret string // shared secret for webhook signature verification
	Timeout       time.Duration
}

// Client is a Moyasar API client
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new Moyasar client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateInvoiceRequest represents a hosted-invoice creation request.
// Amount is in halalas (minor currency units).
type CreateInvoiceRequest struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	CallbackURL string            `json:"callback_url,omitempty"`
	SuccessURL  string            `json:"success_url,omitempty"`
	BackURL     string            `json:"back_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Invoice represents a Moyasar invoice
type Invoice struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	URL      string `json:"url"`
}

// Invoice statuses reported by the gateway
const (
	InvoiceStatusInitiated = "initiated"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusFailed    = "failed"
	InvoiceStatusExpired   = "expired"
	InvoiceStatusCanceled  = "canceled"
)

// CreateInvoice creates a hosted invoice and returns its payment URL
func (c *Client) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("validation error: amount must be > 0")
	}
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("moyasar config error: api key is empty")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/invoices", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.config.APIKey, "")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("moyasar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
			Errors  any    `json:"errors"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return nil, fmt.Errorf("moyasar error (%d): %s", resp.StatusCode, apiErr.Message)
	}

	var inv Invoice
	if err := json.NewDecoder(resp.Body).Decode(&inv); err != nil {
		return nil, fmt.Errorf("failed to decode moyasar response: %w", err)
	}
	return &inv, nil
}

// GetInvoice fetches an invoice by id
func (c *Client) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/invoices/"+id, nil)
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(c.config.APIKey, "")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("moyasar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("invoice %s not found", id)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("moyasar error (%d)", resp.StatusCode)
	}

	var inv Invoice
	if err := json.NewDecoder(resp.Body).Decode(&inv); err != nil {
		return nil, fmt.Errorf("failed to decode moyasar response: %w", err)
	}
	return &inv, nil
}

// SignPayload computes the hex HMAC-SHA256 of a webhook payload with the shared secret
func (c *Client) SignPayload(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(c.config.WebhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook signature in constant time
func (c *Client) VerifySignature(payload []byte, signature string) bool {
	if c.config.WebhookSecret == "" {
		return false
	}
	expected := c.SignPayload(payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
