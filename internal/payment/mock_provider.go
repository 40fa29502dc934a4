package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// MockProvider implements Provider against no real gateway. It is used for
// local development and tests: checkout URLs point at a configurable base and
// webhooks are authenticated with an HMAC over the body.
type MockProvider struct {
	baseURL    string
	webhookKey []byte
}

func NewMockProvider(baseURL, webhookKey string) *MockProvider {
	return &MockProvider{baseURL: baseURL, webhookKey: []byte(webhookKey)}
}

func (p *MockProvider) CreateLink(ctx context.Context, req LinkRequest) (*Link, error) {
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("payment amount must be positive, got %d", req.AmountCents)
	}
	orderCode := uuid.New().String()
	return &Link{
		OrderCode:   orderCode,
		CheckoutURL: fmt.Sprintf("%s/checkout/%s", p.baseURL, orderCode),
		QRCode:      fmt.Sprintf("%s/qr/%s.png", p.baseURL, orderCode),
	}, nil
}

func (p *MockProvider) VerifyWebhook(body []byte, signature string) (*WebhookEvent, error) {
	mac := hmac.New(sha256.New, p.webhookKey)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, fmt.Errorf("webhook signature mismatch")
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("malformed webhook body: %w", err)
	}
	if event.OrderCode == "" {
		return nil, fmt.Errorf("webhook missing order code")
	}
	return &event, nil
}

// Sign computes the signature VerifyWebhook expects; exported for tests and
// the local checkout simulator.
func (p *MockProvider) Sign(body []byte) string {
	mac := hmac.New(sha256.New, p.webhookKey)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
