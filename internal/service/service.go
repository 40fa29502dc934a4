package service

import (
	"context"
	"time"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/payment"
)

type BookingService interface {
	CreateBooking(ctx context.Context, renterID, carID int32, start, end time.Time) (*domain.Booking, error)
	ApproveBooking(ctx context.Context, ownerID, bookingID int32) (*domain.Booking, error)
	RejectBooking(ctx context.Context, ownerID, bookingID int32, reason string) (*domain.Booking, error)
	MarkReadyForPickup(ctx context.Context, ownerID, bookingID int32) (*domain.Booking, error)
	StartTrip(ctx context.Context, renterID, bookingID int32) (*domain.Booking, error)
	CompleteTrip(ctx context.Context, renterID, bookingID int32) (*domain.Booking, error)
	ConfirmCarReturn(ctx context.Context, ownerID, bookingID int32, returnedAt time.Time) (*domain.Booking, error)
	CancelBooking(ctx context.Context, renterID, bookingID int32, reason string) (*domain.Booking, error)
	GetBooking(ctx context.Context, userID, bookingID int32) (*domain.Booking, error)
	ListBookings(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListOwnerBookings(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
}

// ExtensionService moves a booking's dates. The legal shape of the move
// depends on the booking's status: free date changes while PENDING, start
// shifts pre-trip, end-only paid extensions while ONGOING.
type ExtensionService interface {
	ChangeBookingDates(ctx context.Context, renterID, bookingID int32, newStart, newEnd time.Time) (*domain.Booking, error)
}

type PaymentService interface {
	InitiatePayment(ctx context.Context, renterID, bookingID int32) (*payment.Link, error)
	// ReconcileWebhook converts an at-least-once payment notification into
	// ledger rows exactly once. A duplicate delivery returns domain.ErrConflict.
	ReconcileWebhook(ctx context.Context, event *payment.WebhookEvent) (*domain.Booking, error)
}

type TrackingService interface {
	TrackDistance(ctx context.Context, renterID, bookingID int32, samples []domain.GeoSample) (float64, error)
	GetRoute(ctx context.Context, userID, bookingID int32) ([]domain.TripPoint, error)
}

type LedgerService interface {
	GetTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Transaction, int32, error)
	GetLedgerSummary(ctx context.Context, userID int32) (*domain.LedgerSummary, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type EmailService interface {
	SendBookingRequestNotification(ctx context.Context, ownerEmail, renterName, carName string) error
	SendBookingApprovalNotification(ctx context.Context, renterEmail, carName, ownerName string) error
	SendBookingRejectionNotification(ctx context.Context, renterEmail, carName, reason string) error
	SendBookingCancellationNotification(ctx context.Context, ownerEmail, renterName, carName, reason string) error
	SendBookingCompletionNotification(ctx context.Context, email, role, carName string, amountCents int64) error
	SendDateChangeNotification(ctx context.Context, email, carName string, newStart, newEnd time.Time) error
	SendPaymentReceivedNotification(ctx context.Context, email, carName string, amountCents int64) error
	SendRefundNotification(ctx context.Context, renterEmail, carName string, amountCents int64) error
}
