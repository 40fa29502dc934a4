package payment

import "context"

// LinkRequest describes the payment a renter owes.
type LinkRequest struct {
	BookingID   int32
	AmountCents int64
	Description string
	PayerName   string
}

// Link is the checkout artifact handed back to the client. OrderCode is the
// opaque reference the provider echoes in webhook deliveries.
type Link struct {
	OrderCode   string
	CheckoutURL string
	QRCode      string
}

// WebhookEvent is a decoded payment notification. Deliveries are at-least-once;
// reconciliation must be idempotent.
type WebhookEvent struct {
	OrderCode   string
	AmountCents int64
	Success     bool
}

// Provider abstracts the external payment gateway. The protocol details
// behind CreateLink and webhook signatures are the provider's concern.
type Provider interface {
	CreateLink(ctx context.Context, req LinkRequest) (*Link, error)
	// VerifyWebhook authenticates and decodes a raw webhook body.
	VerifyWebhook(body []byte, signature string) (*WebhookEvent, error)
}
