package paymentcore

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/autorental/config"
	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/google/uuid"
)

type AttemptType string

const (
	AttemptInitial AttemptType = "INITIAL"
	AttemptRetry   AttemptType = "RETRY"
	AttemptWebhook AttemptType = "WEBHOOK"
)

type ChargeRequest struct {
	BookingID   int64       `json:"booking_id"`
	BookingCode string      `json:"booking_code"`
	Amount      float64     `json:"amount"`
	Currency    string      `json:"currency"`
	AttemptType AttemptType `json:"attempt_type"`
}

type Result struct {
	Status            domain.PaymentStatus `json:"status"`
	ProviderReference string               `json:"provider_reference"`
}

// Client is the external payment processor. A transport failure or a
// malformed response is an INTERNAL error of that attempt, never a payment
// outcome.
type Client interface {
	Charge(ctx context.Context, req ChargeRequest) (*Result, error)
}

// New picks the client for the configured mode; anything but "http" gets the
// stub.
func New(cfg config.PaymentCoreConfig) Client {
	if cfg.Mode == "http" {
		return NewHTTPClient(cfg)
	}
	return NewStubClient()
}

type HTTPClient struct {
	baseURL    string
	chargePath string
	apiKey     string
	client     *http.Client
}

func NewHTTPClient(cfg config.PaymentCoreConfig) *HTTPClient {
	return &HTTPClient{
		baseURL:    cfg.BaseURL,
		chargePath: cfg.ChargePath,
		apiKey:     cfg.APIKey,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) Charge(ctx context.Context, req ChargeRequest) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, domain.Wrap(domain.CodeInternal, "payment core request encode failed", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chargeURL(), bytes.NewReader(body))
	if err != nil {
		return nil, domain.Wrap(domain.CodeInternal, "payment core request build failed", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, domain.E(domain.CodeInternal, "payment core is unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, domain.E(domain.CodeInternal, "payment core rejected the charge request")
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, domain.E(domain.CodeInternal, "payment core returned an invalid response")
	}
	if out.Status == "" || out.ProviderReference == "" {
		return nil, domain.E(domain.CodeInternal, "payment core returned an invalid response")
	}

	return &out, nil
}

func (c *HTTPClient) chargeURL() string {
	base := strings.TrimSuffix(c.baseURL, "/")
	path := c.chargePath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// StubClient approves everything; used in development and tests.
type StubClient struct{}

func NewStubClient() *StubClient {
	return &StubClient{}
}

func (c *StubClient) Charge(ctx context.Context, req ChargeRequest) (*Result, error) {
	return &Result{
		Status:            domain.PaymentStatusSuccess,
		ProviderReference: "core-stub-" + uuid.NewString(),
	}, nil
}

var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*StubClient)(nil)
)
