package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/repository"
)

type carRepository struct {
	db *sql.DB
}

func NewCarRepository(db *sql.DB) repository.CarRepository {
	return &carRepository{db: db}
}

func (r *carRepository) Create(ctx context.Context, car *domain.Car) error {
	query := `INSERT INTO cars (owner_id, license_plate, brand, model, daily_rate_cents, status, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query, car.OwnerID, car.LicensePlate, car.Brand, car.Model, car.DailyRateCents, car.Status, time.Now()).Scan(&car.ID)
}

func (r *carRepository) GetByID(ctx context.Context, id int32) (*domain.Car, error) {
	car := &domain.Car{}
	query := `SELECT id, owner_id, license_plate, brand, model, daily_rate_cents, status, created_on FROM cars WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&car.ID, &car.OwnerID, &car.LicensePlate, &car.Brand, &car.Model, &car.DailyRateCents, &car.Status, &car.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("car %d", id)
	}
	if err != nil {
		return nil, err
	}
	return car, nil
}

func (r *carRepository) UpdateStatus(ctx context.Context, carID int32, status domain.CarStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE cars SET status = $1 WHERE id = $2`, status, carID)
	return err
}

func (r *carRepository) UpdateStatusIf(ctx context.Context, carID int32, expected, next domain.CarStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE cars SET status = $1 WHERE id = $2 AND status = $3`, next, carID, expected)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *carRepository) ListUnavailableDates(ctx context.Context, carID int32, from, to time.Time) ([]domain.CarUnavailableDate, error) {
	query := `SELECT id, car_id, start_date, end_date FROM car_unavailable_dates
	          WHERE car_id = $1 AND start_date <= $2 AND end_date >= $3`
	rows, err := r.db.QueryContext(ctx, query, carID, to, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []domain.CarUnavailableDate
	for rows.Next() {
		var d domain.CarUnavailableDate
		if err := rows.Scan(&d.ID, &d.CarID, &d.StartDate, &d.EndDate); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (r *carRepository) AddUnavailableDate(ctx context.Context, d *domain.CarUnavailableDate) error {
	query := `INSERT INTO car_unavailable_dates (car_id, start_date, end_date) VALUES ($1, $2, $3) RETURNING id`
	return r.db.QueryRowContext(ctx, query, d.CarID, d.StartDate, d.EndDate).Scan(&d.ID)
}
