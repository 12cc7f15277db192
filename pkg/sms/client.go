package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode"

	"github.com/kagiso-dev/thriftbales-backend/pkg/config"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
)

// MaxBodyLength is the provider's single-segment character budget.
const MaxBodyLength = 150

// Recipient identifies one SMS destination.
type Recipient struct {
	MobileNumber string `json:"mobileNumber"`
}

// Message is the provider payload for a bulk SMS send.
type Message struct {
	Message    string      `json:"message"`
	Recipients []Recipient `json:"recipients"`
}

// Sender is the surface the notification dispatcher depends on.
type Sender interface {
	Send(ctx context.Context, body string, numbers []string) error
}

// Client talks to the SMS provider's REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	secret     string
	logg       *logger.Logger
}

// NewClient builds an SMS client from configuration.
func NewClient(cfg config.SMSConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("sms base url is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("sms api key is required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		secret:     cfg.Secret,
		logg:       logg,
	}, nil
}

// Send normalizes the recipient numbers, truncates the body to the provider
// budget, and posts the batch. Numbers that cannot be normalized are skipped.
func (c *Client) Send(ctx context.Context, body string, numbers []string) error {
	recipients := make([]Recipient, 0, len(numbers))
	for _, number := range numbers {
		normalized, err := NormalizeMSISDN(number)
		if err != nil {
			if c.logg != nil {
				c.logg.Warn(ctx, fmt.Sprintf("skipping unnormalizable sms number %q", number))
			}
			continue
		}
		recipients = append(recipients, Recipient{MobileNumber: normalized})
	}
	if len(recipients) == 0 {
		return errors.New("no valid sms recipients")
	}

	payload, err := json.Marshal(Message{
		Message:    Truncate(body),
		Recipients: recipients,
	})
	if err != nil {
		return fmt.Errorf("encoding sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building sms request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending sms: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && c.logg != nil {
			c.logg.Warn(ctx, "failed to close sms response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

// NormalizeMSISDN converts South African numbers to the 27XXXXXXXXX form the
// provider expects. Accepts 0XXXXXXXXX, +27XXXXXXXXX, and 27XXXXXXXXX inputs.
func NormalizeMSISDN(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}

	number := digits.String()
	switch {
	case len(number) == 10 && strings.HasPrefix(number, "0"):
		return "27" + number[1:], nil
	case len(number) == 11 && strings.HasPrefix(number, "27"):
		return number, nil
	default:
		return "", fmt.Errorf("not a south african mobile number: %q", raw)
	}
}

// Truncate clamps the body to MaxBodyLength and replaces non-ASCII runes
// with a plain space so the provider bills a single segment. Replacing
// rather than dropping keeps words apart when the input carries unicode
// whitespace or punctuation.
func Truncate(body string) string {
	var b strings.Builder
	for _, r := range body {
		if r > unicode.MaxASCII {
			r = ' '
		}
		b.WriteRune(r)
		if b.Len() >= MaxBodyLength {
			break
		}
	}
	return b.String()
}
