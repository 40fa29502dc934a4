package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/repository"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, renter_id, car_id, contract_id, payment_ref, start_time, end_time, actual_return_time, last_agreed_end_time,
	daily_rate_cents, base_price_cents, platform_fee_cents, excess_days, excess_fee_cents, extension_amount_cents, total_amount_cents,
	is_paid, is_extension_paid, is_refund, refund_amount_cents, refund_date, status, is_car_returned, COALESCE(note, ''), total_distance_meters,
	created_on, updated_on`

func scanBooking(row interface{ Scan(...any) error }) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(&b.ID, &b.RenterID, &b.CarID, &b.ContractID, &b.PaymentRef, &b.StartTime, &b.EndTime, &b.ActualReturnTime, &b.LastAgreedEndTime,
		&b.DailyRateCents, &b.BasePriceCents, &b.PlatformFeeCents, &b.ExcessDays, &b.ExcessFeeCents, &b.ExtensionAmountCents, &b.TotalAmountCents,
		&b.IsPaid, &b.IsExtensionPaid, &b.IsRefund, &b.RefundAmountCents, &b.RefundDate, &b.Status, &b.IsCarReturned, &b.Note, &b.TotalDistanceMeters,
		&b.CreatedOn, &b.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (renter_id, car_id, contract_id, start_time, end_time, actual_return_time,
	          daily_rate_cents, base_price_cents, platform_fee_cents, total_amount_cents, status, note, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		b.RenterID, b.CarID, b.ContractID, b.StartTime, b.EndTime, b.ActualReturnTime,
		b.DailyRateCents, b.BasePriceCents, b.PlatformFeeCents, b.TotalAmountCents, b.Status, b.Note, now, now,
	).Scan(&b.ID)
}

func (r *bookingRepository) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("booking %d", id)
	}
	return b, err
}

func (r *bookingRepository) GetByOrderCode(ctx context.Context, orderCode string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_ref = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, orderCode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("booking for order code %s", orderCode)
	}
	return b, err
}

const bookingUpdateSet = `payment_ref=$1, start_time=$2, end_time=$3, actual_return_time=$4, last_agreed_end_time=$5,
	base_price_cents=$6, platform_fee_cents=$7, excess_days=$8, excess_fee_cents=$9, extension_amount_cents=$10, total_amount_cents=$11,
	is_paid=$12, is_extension_paid=$13, is_refund=$14, refund_amount_cents=$15, refund_date=$16, status=$17, is_car_returned=$18,
	note=$19, total_distance_meters=$20, updated_on=$21`

func bookingUpdateArgs(b *domain.Booking) []any {
	return []any{
		b.PaymentRef, b.StartTime, b.EndTime, b.ActualReturnTime, b.LastAgreedEndTime,
		b.BasePriceCents, b.PlatformFeeCents, b.ExcessDays, b.ExcessFeeCents, b.ExtensionAmountCents, b.TotalAmountCents,
		b.IsPaid, b.IsExtensionPaid, b.IsRefund, b.RefundAmountCents, b.RefundDate, b.Status, b.IsCarReturned,
		b.Note, b.TotalDistanceMeters, time.Now(),
	}
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `UPDATE bookings SET ` + bookingUpdateSet + ` WHERE id=$22`
	_, err := r.db.ExecContext(ctx, query, append(bookingUpdateArgs(b), b.ID)...)
	return err
}

func (r *bookingRepository) UpdateWithStatusCheck(ctx context.Context, b *domain.Booking, expectedStatus domain.BookingStatus) error {
	query := `UPDATE bookings SET ` + bookingUpdateSet + ` WHERE id=$22 AND status=$23`
	res, err := r.db.ExecContext(ctx, query, append(bookingUpdateArgs(b), b.ID, expectedStatus)...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.Conflictf("booking %d is no longer %s", b.ID, expectedStatus)
	}
	return nil
}

func (r *bookingRepository) UpdateWithReturnCheck(ctx context.Context, b *domain.Booking) error {
	query := `UPDATE bookings SET ` + bookingUpdateSet + ` WHERE id=$22 AND status=$23 AND is_car_returned = false`
	res, err := r.db.ExecContext(ctx, query, append(bookingUpdateArgs(b), b.ID, domain.BookingStatusCompleted)...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.Conflictf("car return for booking %d already confirmed", b.ID)
	}
	return nil
}

func (r *bookingRepository) list(ctx context.Context, column string, userID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + column + ` = $1`
	args := []any{userID}
	argIdx := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, count, rows.Err()
}

func (r *bookingRepository) ListByRenter(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "renter_id", renterID, status, page, pageSize)
}

func (r *bookingRepository) ListByOwner(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE car_id IN (SELECT id FROM cars WHERE owner_id = $1)`
	args := []any{ownerID}
	argIdx := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, count, rows.Err()
}

func (r *bookingRepository) ListOverlapping(ctx context.Context, carID int32, start, end time.Time, excludeID int32) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE car_id = $1 AND id <> $2
	            AND status NOT IN ('REJECTED', 'CANCELLED', 'EXPIRED')
	            AND start_time <= $3 AND end_time >= $4
	          ORDER BY created_on`
	rows, err := r.db.QueryContext(ctx, query, carID, excludeID, end, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) ListExpirable(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = 'PENDING' AND start_time < $1`
	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
