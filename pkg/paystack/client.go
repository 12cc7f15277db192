package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kagiso-dev/thriftbales-backend/pkg/config"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
)

// Currency is the only settlement currency the store accepts.
const Currency = "ZAR"

// ErrTransactionNotFound is returned when the reference is unknown upstream.
var ErrTransactionNotFound = errors.New("paystack transaction not found")

// Transaction is the subset of the verify response the store cares about.
type Transaction struct {
	Reference string
	Status    string
	// Amount is in rand, converted from the provider's cent-denominated value.
	Amount   decimal.Decimal
	Currency string
	PaidAt   string
	Channel  string
}

// Succeeded reports whether the provider settled the transaction.
func (t Transaction) Succeeded() bool {
	return strings.EqualFold(t.Status, "success")
}

// Verifier is the surface the checkout flow depends on.
type Verifier interface {
	VerifyTransaction(ctx context.Context, reference string) (Transaction, error)
}

// Client talks to the Paystack REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
	logg       *logger.Logger
}

// NewClient builds a Paystack client from configuration.
func NewClient(cfg config.PaystackConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("paystack secret key is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("paystack base url is required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		secretKey:  cfg.SecretKey,
		logg:       logg,
	}, nil
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		PaidAt    string `json:"paid_at"`
		Channel   string `json:"channel"`
	} `json:"data"`
}

// VerifyTransaction fetches the settlement state for a payment reference.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (Transaction, error) {
	if strings.TrimSpace(reference) == "" {
		return Transaction{}, errors.New("payment reference is required")
	}

	endpoint := c.baseURL + "/transaction/verify/" + url.PathEscape(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Transaction{}, fmt.Errorf("building paystack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Transaction{}, fmt.Errorf("verifying paystack transaction: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && c.logg != nil {
			c.logg.Warn(ctx, "failed to close paystack response body")
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return Transaction{}, ErrTransactionNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Transaction{}, fmt.Errorf("paystack returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var payload verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Transaction{}, fmt.Errorf("decoding paystack response: %w", err)
	}
	if !payload.Status {
		return Transaction{}, fmt.Errorf("paystack rejected verification: %s", payload.Message)
	}

	return Transaction{
		Reference: payload.Data.Reference,
		Status:    payload.Data.Status,
		Amount:    decimal.NewFromInt(payload.Data.Amount).Div(decimal.NewFromInt(100)),
		Currency:  payload.Data.Currency,
		PaidAt:    payload.Data.PaidAt,
		Channel:   payload.Data.Channel,
	}, nil
}
