package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/repository"
)

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `INSERT INTO transactions (booking_id, user_id, amount_cents, type, order_code, description, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query, tx.BookingID, tx.UserID, tx.AmountCents, tx.Type, tx.OrderCode, tx.Description, time.Now()).Scan(&tx.ID)
}

func (r *ledgerRepository) GetTransactionByOrderCode(ctx context.Context, orderCode string) (*domain.Transaction, error) {
	tx := &domain.Transaction{}
	query := `SELECT id, booking_id, user_id, amount_cents, type, order_code, COALESCE(description, ''), created_on
	          FROM transactions WHERE order_code = $1 LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, orderCode).Scan(&tx.ID, &tx.BookingID, &tx.UserID, &tx.AmountCents, &tx.Type, &tx.OrderCode, &tx.Description, &tx.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("transaction for order code %s", orderCode)
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (r *ledgerRepository) HasSettlement(ctx context.Context, bookingID int32) (bool, error) {
	var count int32
	query := `SELECT count(*) FROM transactions WHERE booking_id = $1 AND type = 'BOOKING_PAYMENT'`
	if err := r.db.QueryRowContext(ctx, query, bookingID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ledgerRepository) ListTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Transaction, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	countQuery := `SELECT count(*) FROM transactions WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, booking_id, user_id, amount_cents, type, order_code, COALESCE(description, ''), created_on
	          FROM transactions WHERE user_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		if err := rows.Scan(&tx.ID, &tx.BookingID, &tx.UserID, &tx.AmountCents, &tx.Type, &tx.OrderCode, &tx.Description, &tx.CreatedOn); err != nil {
			return nil, 0, err
		}
		txs = append(txs, tx)
	}
	return txs, count, rows.Err()
}

func (r *ledgerRepository) GetLockedBalance(ctx context.Context, bookingID int32) (*domain.LockedBalance, error) {
	lb := &domain.LockedBalance{}
	query := `SELECT id, user_id, booking_id, amount_cents, unlock_at, released_on, created_on
	          FROM locked_balances WHERE booking_id = $1 ORDER BY created_on DESC LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(&lb.ID, &lb.UserID, &lb.BookingID, &lb.AmountCents, &lb.UnlockAt, &lb.ReleasedOn, &lb.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("locked balance for booking %d", bookingID)
	}
	if err != nil {
		return nil, err
	}
	return lb, nil
}

func (r *ledgerRepository) ReleaseLockedBalance(ctx context.Context, bookingID int32, releasedAt time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var id, userID int32
	var amount int64
	query := `SELECT id, user_id, amount_cents FROM locked_balances
	          WHERE booking_id = $1 AND released_on IS NULL FOR UPDATE`
	err = tx.QueryRowContext(ctx, query, bookingID).Scan(&id, &userID, &amount)
	if errors.Is(err, sql.ErrNoRows) {
		// Already released or never locked; the unlock job treats this as done.
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE locked_balances SET released_on = $1 WHERE id = $2`, releasedAt, id); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET balance_cents = balance_cents + $1 WHERE id = $2`, amount, userID); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *ledgerRepository) GetSummary(ctx context.Context, userID int32) (*domain.LedgerSummary, error) {
	summary := &domain.LedgerSummary{StatusCount: make(map[string]int32)}

	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(balance_cents, 0) FROM users WHERE id = $1`, userID).Scan(&summary.BalanceCents)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(sum(amount_cents), 0) FROM locked_balances WHERE user_id = $1 AND released_on IS NULL`,
		userID).Scan(&summary.LockedCents)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM bookings WHERE renter_id = $1 AND status = 'ONGOING'`,
		userID).Scan(&summary.ActiveBookingCount)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT status, count(*)
		FROM bookings
		WHERE renter_id = $1 OR car_id IN (SELECT id FROM cars WHERE owner_id = $1)
		GROUP BY status`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int32
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		summary.StatusCount[status] = count
	}
	return summary, rows.Err()
}
