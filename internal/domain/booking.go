package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending        BookingStatus = "PENDING"
	BookingStatusApproved       BookingStatus = "APPROVED"
	BookingStatusReadyForPickup BookingStatus = "READY_FOR_PICKUP"
	BookingStatusOngoing        BookingStatus = "ONGOING"
	BookingStatusCompleted      BookingStatus = "COMPLETED"
	BookingStatusRejected       BookingStatus = "REJECTED"
	BookingStatusCancelled      BookingStatus = "CANCELLED"
	BookingStatusExpired        BookingStatus = "EXPIRED"
)

// IsTerminal reports whether no further transition can leave the status.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusRejected, BookingStatusCancelled, BookingStatusExpired, BookingStatusCompleted:
		return true
	}
	return false
}

type Booking struct {
	ID         int32  `json:"id"`
	RenterID   int32  `json:"renter_id"`
	CarID      int32  `json:"car_id"`
	ContractID int32  `json:"contract_id"`
	// PaymentRef holds the order code of the open payment link, if any.
	// Set by InitiatePayment, cleared when the webhook reconciles.
	PaymentRef *string `json:"payment_ref,omitempty"`

	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	ActualReturnTime time.Time `json:"actual_return_time"`
	// LastAgreedEndTime is the end time before an unpaid extension moved it.
	// Present only while the extension is open; the revert job restores from it.
	LastAgreedEndTime *time.Time `json:"last_agreed_end_time,omitempty"`

	// Price snapshot fields, captured from the car at booking creation time.
	// All settlement arithmetic uses these snapshots, not live car prices.
	DailyRateCents int64 `json:"daily_rate_cents"`

	BasePriceCents       int64      `json:"base_price_cents"`
	PlatformFeeCents     int64      `json:"platform_fee_cents"`
	ExcessDays           int32      `json:"excess_days"`
	ExcessFeeCents       int64      `json:"excess_fee_cents"`
	ExtensionAmountCents *int64     `json:"extension_amount_cents,omitempty"`
	TotalAmountCents     int64      `json:"total_amount_cents"`
	IsPaid               bool       `json:"is_paid"`
	IsExtensionPaid      *bool      `json:"is_extension_paid,omitempty"`
	IsRefund             bool       `json:"is_refund"`
	RefundAmountCents    *int64     `json:"refund_amount_cents,omitempty"`
	RefundDate           *time.Time `json:"refund_date,omitempty"`

	Status              BookingStatus `json:"status"`
	IsCarReturned       bool          `json:"is_car_returned"`
	Note                string        `json:"note"`
	TotalDistanceMeters float64       `json:"total_distance_meters"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Overlaps reports whether the booking's agreed window intersects [start, end].
func (b *Booking) Overlaps(start, end time.Time) bool {
	return !b.EndTime.Before(start) && !b.StartTime.After(end)
}

// HasOpenExtension reports whether an extension is awaiting payment.
func (b *Booking) HasOpenExtension() bool {
	return b.ExtensionAmountCents != nil && b.IsExtensionPaid != nil && !*b.IsExtensionPaid
}
