package domain

import "time"

type TransactionType string

const (
	TransactionTypeBookingPayment   TransactionType = "BOOKING_PAYMENT"
	TransactionTypeExtensionPayment TransactionType = "EXTENSION_PAYMENT"
	TransactionTypePlatformFee      TransactionType = "PLATFORM_FEE"
	TransactionTypeOwnerEarning     TransactionType = "OWNER_EARNING"
	TransactionTypeRefund           TransactionType = "REFUND"
)

// Transaction is an immutable financial ledger row. Settlement rows are only
// ever created by the payment reconciliation handler, always as a triple
// (booking payment / platform fee / owner earning).
type Transaction struct {
	ID          int32           `json:"id"`
	BookingID   int32           `json:"booking_id"`
	UserID      int32           `json:"user_id"`
	AmountCents int64           `json:"amount_cents"` // positive for credit, negative for debit
	Type        TransactionType `json:"type"`
	OrderCode   string          `json:"order_code,omitempty"`
	Description string          `json:"description"`
	CreatedOn   time.Time       `json:"created_on"`
}

// LockedBalance represents owner earnings credited to a non-withdrawable
// balance until the scheduled unlock job releases them.
type LockedBalance struct {
	ID          int32      `json:"id"`
	UserID      int32      `json:"user_id"`
	BookingID   int32      `json:"booking_id"`
	AmountCents int64      `json:"amount_cents"`
	UnlockAt    time.Time  `json:"unlock_at"`
	ReleasedOn  *time.Time `json:"released_on,omitempty"`
	CreatedOn   time.Time  `json:"created_on"`
}

// PaymentSettlement groups everything the webhook reconciliation writes in a
// single transaction.
type PaymentSettlement struct {
	BookingID     int32
	OrderCode     string
	RenterDebit   Transaction
	PlatformFee   Transaction
	OwnerEarning  Transaction
	LockedBalance LockedBalance
}

type LedgerSummary struct {
	BalanceCents       int64            `json:"balance_cents"`
	LockedCents        int64            `json:"locked_cents"`
	ActiveBookingCount int32            `json:"active_booking_count"`
	StatusCount        map[string]int32 `json:"status_count"`
}
