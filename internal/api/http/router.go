package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"drivehub-backend/internal/payment"
	"drivehub-backend/internal/security"
	"drivehub-backend/internal/service"
	"drivehub-backend/internal/storage"
)

// RouterDeps collects everything the REST surface needs.
type RouterDeps struct {
	Bookings      service.BookingService
	Extensions    service.ExtensionService
	Payments      service.PaymentService
	Tracking      service.TrackingService
	Ledger        service.LedgerService
	Notifications service.NotificationService
	Provider      payment.Provider
	Photos        storage.PhotoStorage
	Tokens        security.TokenManager
}

// NewRouter builds the API route table. Everything under /api/v1 requires a
// bearer token except the payment webhook, which authenticates by signature.
func NewRouter(deps RouterDeps) *mux.Router {
	root := mux.NewRouter()
	root.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	payments := NewPaymentHandler(deps.Payments, deps.Provider)
	root.HandleFunc("/webhooks/payment", payments.Webhook).Methods("POST")

	api := root.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(deps.Tokens))

	bookings := NewBookingHandler(deps.Bookings, deps.Extensions)
	api.HandleFunc("/bookings", bookings.Create).Methods("POST")
	api.HandleFunc("/bookings", bookings.List).Methods("GET")
	api.HandleFunc("/bookings/{id}", bookings.Get).Methods("GET")
	api.HandleFunc("/bookings/{id}/approve", bookings.Approve).Methods("POST")
	api.HandleFunc("/bookings/{id}/reject", bookings.Reject).Methods("POST")
	api.HandleFunc("/bookings/{id}/ready", bookings.MarkReady).Methods("POST")
	api.HandleFunc("/bookings/{id}/start", bookings.StartTrip).Methods("POST")
	api.HandleFunc("/bookings/{id}/complete", bookings.CompleteTrip).Methods("POST")
	api.HandleFunc("/bookings/{id}/confirm-return", bookings.ConfirmReturn).Methods("POST")
	api.HandleFunc("/bookings/{id}/cancel", bookings.Cancel).Methods("POST")
	api.HandleFunc("/bookings/{id}/dates", bookings.ChangeDates).Methods("PUT")

	api.HandleFunc("/bookings/{id}/pay", payments.Initiate).Methods("POST")

	tracking := NewTrackingHandler(deps.Tracking)
	api.HandleFunc("/bookings/{id}/track", tracking.Track).Methods("POST")
	api.HandleFunc("/bookings/{id}/route", tracking.Route).Methods("GET")

	photos := NewPhotoHandler(deps.Bookings, deps.Photos)
	api.HandleFunc("/bookings/{id}/photos", photos.Upload).Methods("PUT")
	api.HandleFunc("/bookings/{id}/photos", photos.List).Methods("GET")

	ledger := NewLedgerHandler(deps.Ledger)
	api.HandleFunc("/ledger/transactions", ledger.Transactions).Methods("GET")
	api.HandleFunc("/ledger/summary", ledger.Summary).Methods("GET")

	notifications := NewNotificationHandler(deps.Notifications)
	api.HandleFunc("/notifications", notifications.List).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", notifications.MarkAsRead).Methods("POST")

	return root
}
