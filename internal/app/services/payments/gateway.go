package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SimulatedGateway approves every well-formed charge locally. It stands in
// for a card processor in development and demo deployments.
type SimulatedGateway struct{}

var _ Gateway = SimulatedGateway{}

// NewSimulatedGateway constructs the local gateway.
func NewSimulatedGateway() SimulatedGateway { return SimulatedGateway{} }

func (SimulatedGateway) Charge(_ context.Context, amount int64, method string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("amount must be positive")
	}
	if method == "" {
		return "", fmt.Errorf("payment method is required")
	}
	return "sim_" + uuid.NewString(), nil
}

func (SimulatedGateway) Refund(_ context.Context, transactionID string, amount int64) error {
	if transactionID == "" {
		return fmt.Errorf("transaction id is required")
	}
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	return nil
}

// HTTPGateway settles charges against a hosted card processor's REST API.
type HTTPGateway struct {
	baseURL   string
	secretKey string
	httpc     *http.Client
}

var _ Gateway = (*HTTPGateway)(nil)

// NewHTTPGateway builds a gateway client for the given processor endpoint.
func NewHTTPGateway(baseURL, secretKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL:   baseURL,
		secretKey: secretKey,
		httpc:     &http.Client{Timeout: 30 * time.Second},
	}
}

type chargeRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Method   string `json:"payment_method"`
}

type chargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type refundRequest struct {
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
}

func (g *HTTPGateway) Charge(ctx context.Context, amount int64, method string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("amount must be positive")
	}
	var resp chargeResponse
	err := g.post(ctx, "/v1/charges", chargeRequest{Amount: amount, Currency: "jpy", Method: method}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Status != "succeeded" {
		if resp.Error != "" {
			return "", fmt.Errorf("payment gateway: charge declined: %s", resp.Error)
		}
		return "", fmt.Errorf("payment gateway: charge status %q", resp.Status)
	}
	return resp.ID, nil
}

func (g *HTTPGateway) Refund(ctx context.Context, transactionID string, amount int64) error {
	if transactionID == "" {
		return fmt.Errorf("transaction id is required")
	}
	var resp chargeResponse
	if err := g.post(ctx, "/v1/refunds", refundRequest{TransactionID: transactionID, Amount: amount}, &resp); err != nil {
		return err
	}
	if resp.Status != "succeeded" {
		return fmt.Errorf("payment gateway: refund status %q", resp.Status)
	}
	return nil
}

func (g *HTTPGateway) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("payment gateway: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("payment gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.secretKey)

	resp, err := g.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("payment gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("payment gateway: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("payment gateway: status %d: %s", resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("payment gateway: decode response: %w", err)
	}
	return nil
}
