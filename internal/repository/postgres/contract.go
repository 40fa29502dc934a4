package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/repository"
)

type contractRepository struct {
	db *sql.DB
}

func NewContractRepository(db *sql.DB) repository.ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) Create(ctx context.Context, c *domain.Contract) error {
	query := `INSERT INTO contracts (booking_id, start_date, end_date, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, c.BookingID, c.StartDate, c.EndDate, c.Status, now, now).Scan(&c.ID)
}

func (r *contractRepository) GetByBookingID(ctx context.Context, bookingID int32) (*domain.Contract, error) {
	c := &domain.Contract{}
	query := `SELECT id, booking_id, start_date, end_date, status, owner_signed_on, renter_signed_on, created_on, updated_on
	          FROM contracts WHERE booking_id = $1`
	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(&c.ID, &c.BookingID, &c.StartDate, &c.EndDate, &c.Status, &c.OwnerSignedOn, &c.RenterSignedOn, &c.CreatedOn, &c.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("contract for booking %d", bookingID)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *contractRepository) Update(ctx context.Context, c *domain.Contract) error {
	query := `UPDATE contracts SET start_date=$1, end_date=$2, status=$3, owner_signed_on=$4, renter_signed_on=$5, updated_on=$6 WHERE id=$7`
	_, err := r.db.ExecContext(ctx, query, c.StartDate, c.EndDate, c.Status, c.OwnerSignedOn, c.RenterSignedOn, time.Now(), c.ID)
	return err
}
