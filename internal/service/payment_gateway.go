package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"inr99_academy_backend/internal/config"
)

// PaymentGateway is the status-polling contract with the external payment
// provider. Order creation hands the student off to the gateway's checkout;
// FetchStatus is polled until the order settles.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, orderID string, amountPaise int64, currency string) (gatewayRef string, err error)
	FetchStatus(ctx context.Context, gatewayRef string) (GatewayOrderStatus, error)
}

type GatewayOrderStatus string

const (
	GatewayOrderCreated GatewayOrderStatus = "created"
	GatewayOrderPending GatewayOrderStatus = "pending"
	GatewayOrderPaid    GatewayOrderStatus = "paid"
	GatewayOrderFailed  GatewayOrderStatus = "failed"
)

// HTTPPaymentGateway talks JSON over HTTP with basic-auth API keys.
type HTTPPaymentGateway struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Client    *http.Client
}

func NewHTTPPaymentGateway(cfg *config.PaymentConfig) *HTTPPaymentGateway {
	return &HTTPPaymentGateway{
		BaseURL:   cfg.BaseURL,
		KeyID:     cfg.KeyID,
		KeySecret: cfg.KeySecret,
		Client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type gatewayOrderRequest struct {
	Receipt  string `json:"receipt"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type gatewayOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (g *HTTPPaymentGateway) CreateOrder(ctx context.Context, orderID string, amountPaise int64, currency string) (string, error) {
	body, err := json.Marshal(gatewayOrderRequest{
		Receipt:  orderID,
		Amount:   amountPaise,
		Currency: currency,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.KeyID, g.KeySecret)

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("gateway order create: unexpected status %d", resp.StatusCode)
	}

	var out gatewayOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("gateway order create: empty order id")
	}
	return out.ID, nil
}

func (g *HTTPPaymentGateway) FetchStatus(ctx context.Context, gatewayRef string) (GatewayOrderStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"/v1/orders/"+gatewayRef, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(g.KeyID, g.KeySecret)

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway status fetch: unexpected status %d", resp.StatusCode)
	}

	var out gatewayOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}

	switch out.Status {
	case "paid", "captured":
		return GatewayOrderPaid, nil
	case "failed", "voided":
		return GatewayOrderFailed, nil
	case "attempted", "pending":
		return GatewayOrderPending, nil
	default:
		return GatewayOrderCreated, nil
	}
}
