package http

import (
	"io"
	"net/http"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/logger"
	"drivehub-backend/internal/payment"
	"drivehub-backend/internal/service"
)

// PaymentHandler exposes payment initiation and the provider webhook.
type PaymentHandler struct {
	payments service.PaymentService
	provider payment.Provider
}

func NewPaymentHandler(payments service.PaymentService, provider payment.Provider) *PaymentHandler {
	return &PaymentHandler{payments: payments, provider: provider}
}

type paymentLinkResponse struct {
	OrderCode   string `json:"order_code"`
	CheckoutURL string `json:"checkout_url"`
	QRCode      string `json:"qr_code,omitempty"`
}

func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	link, err := h.payments.InitiatePayment(r.Context(), userIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentLinkResponse{
		OrderCode:   link.OrderCode,
		CheckoutURL: link.CheckoutURL,
		QRCode:      link.QRCode,
	})
}

// Webhook receives provider notifications. The signature is verified before
// anything is decoded; reconciliation itself is idempotent, so a duplicate
// delivery gets 409 and the provider stops retrying.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, domain.Validationf("unreadable webhook body"))
		return
	}

	event, err := h.provider.VerifyWebhook(body, r.Header.Get("X-Signature"))
	if err != nil {
		logger.Warn("Webhook signature verification failed", "error", err)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid webhook signature", Code: "UNAUTHENTICATED"})
		return
	}

	booking, err := h.payments.ReconcileWebhook(r.Context(), event)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}
