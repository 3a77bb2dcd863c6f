package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tair/orderflow/internal/checkout/domain"
	"github.com/tair/orderflow/pkg/logger"
)

// PaymentClient queries the external payment provider over HTTP
type PaymentClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewPaymentClient creates a new payment provider client
func NewPaymentClient(baseURL, apiKey string) *PaymentClient {
	return &PaymentClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// VerifyPaymentStatus fetches the provider's view of a checkout session.
// Any transport or provider error surfaces as an error; interpretation of
// the statuses is left to the caller.
func (c *PaymentClient) VerifyPaymentStatus(ctx context.Context, sessionID string) (*domain.PaymentVerification, error) {
	url := fmt.Sprintf("%s/v1/checkout/sessions/%s", c.baseURL, sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call payment provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment provider returned status %d for session %s", resp.StatusCode, sessionID)
	}

	var payload struct {
		PaymentStatus string `json:"payment_status"`
		Status        string `json:"status"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	logger.Debug(ctx).
		Str("session_id", sessionID).
		Str("payment_status", payload.PaymentStatus).
		Str("session_status", payload.Status).
		Msg("Payment session verified with provider")

	return &domain.PaymentVerification{
		PaymentStatus: payload.PaymentStatus,
		SessionStatus: payload.Status,
		PaymentMethod: payload.PaymentMethod,
	}, nil
}
