package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/repository"
)

type settlementRepository struct {
	db *sql.DB
}

func NewSettlementRepository(db *sql.DB) repository.SettlementRepository {
	return &settlementRepository{db: db}
}

// SettleBooking converts a payment notification into ledger rows exactly once.
// The duplicate check and the inserts run inside one transaction with the
// booking row locked, so two concurrent deliveries of the same notification
// cannot both pass the check.
func (r *settlementRepository) SettleBooking(ctx context.Context, b *domain.Booking, s *domain.PaymentSettlement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var lockedStatus string
	err = tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = $1 FOR UPDATE`, s.BookingID).Scan(&lockedStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundf("booking %d", s.BookingID)
	}
	if err != nil {
		return err
	}

	// An initial payment also dedupes on its transaction type: a booking is
	// paid at most once, even if the payment reference was recreated. Extension
	// payments can legitimately recur, so they dedupe on the order code alone.
	dupQuery := `SELECT count(*) FROM transactions WHERE booking_id = $1 AND order_code = $2`
	dupArgs := []any{s.BookingID, s.OrderCode}
	if s.RenterDebit.Type == domain.TransactionTypeBookingPayment {
		dupQuery = `SELECT count(*) FROM transactions WHERE booking_id = $1 AND (order_code = $2 OR type = $3)`
		dupArgs = append(dupArgs, s.RenterDebit.Type)
	}
	var existing int32
	if err := tx.QueryRowContext(ctx, dupQuery, dupArgs...).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 {
		return domain.Conflictf("booking %d already settled for order code %s", s.BookingID, s.OrderCode)
	}

	now := time.Now()
	insertTx := `INSERT INTO transactions (booking_id, user_id, amount_cents, type, order_code, description, created_on)
	             VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, row := range []*domain.Transaction{&s.RenterDebit, &s.PlatformFee, &s.OwnerEarning} {
		if _, err := tx.ExecContext(ctx, insertTx, row.BookingID, row.UserID, row.AmountCents, row.Type, row.OrderCode, row.Description, now); err != nil {
			return err
		}
	}

	lb := &s.LockedBalance
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO locked_balances (user_id, booking_id, amount_cents, unlock_at, created_on) VALUES ($1, $2, $3, $4, $5)`,
		lb.UserID, lb.BookingID, lb.AmountCents, lb.UnlockAt, now,
	); err != nil {
		return err
	}

	// The unlock job commits or rolls back with the settlement; an enqueue
	// after the commit could be lost to a crash, leaving the hold permanent.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO deferred_jobs (name, booking_id, run_at, attempts, created_on) VALUES ($1, $2, $3, 0, $4)`,
		domain.JobUnlockBalance, s.BookingID, lb.UnlockAt, now,
	); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET payment_ref = $1, extension_amount_cents = $2, last_agreed_end_time = $3,
		        is_paid = $4, is_extension_paid = $5, updated_on = $6 WHERE id = $7`,
		b.PaymentRef, b.ExtensionAmountCents, b.LastAgreedEndTime,
		b.IsPaid, b.IsExtensionPaid, now, b.ID,
	); err != nil {
		return err
	}

	return tx.Commit()
}
