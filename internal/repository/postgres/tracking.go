package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/repository"
)

type trackingRepository struct {
	db *sql.DB
}

func NewTrackingRepository(db *sql.DB) repository.TrackingRepository {
	return &trackingRepository{db: db}
}

func (r *trackingRepository) AppendPoints(ctx context.Context, points []domain.TripPoint) error {
	if len(points) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO trip_points (booking_id, latitude, longitude, distance_meters, cumulative_meters, recorded_at, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	now := time.Now()
	for i := range points {
		p := &points[i]
		if _, err := tx.ExecContext(ctx, query, p.BookingID, p.Latitude, p.Longitude, p.DistanceMeters, p.CumulativeMeters, p.RecordedAt, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *trackingRepository) GetLastPoint(ctx context.Context, bookingID int32) (*domain.TripPoint, error) {
	p := &domain.TripPoint{}
	query := `SELECT id, booking_id, latitude, longitude, distance_meters, cumulative_meters, recorded_at, created_on
	          FROM trip_points WHERE booking_id = $1 ORDER BY id DESC LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(&p.ID, &p.BookingID, &p.Latitude, &p.Longitude, &p.DistanceMeters, &p.CumulativeMeters, &p.RecordedAt, &p.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *trackingRepository) GetCumulativeDistance(ctx context.Context, bookingID int32) (float64, error) {
	var meters float64
	query := `SELECT COALESCE(max(cumulative_meters), 0) FROM trip_points WHERE booking_id = $1`
	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(&meters)
	return meters, err
}

func (r *trackingRepository) ListPoints(ctx context.Context, bookingID int32) ([]domain.TripPoint, error) {
	query := `SELECT id, booking_id, latitude, longitude, distance_meters, cumulative_meters, recorded_at, created_on
	          FROM trip_points WHERE booking_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.TripPoint
	for rows.Next() {
		var p domain.TripPoint
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Latitude, &p.Longitude, &p.DistanceMeters, &p.CumulativeMeters, &p.RecordedAt, &p.CreatedOn); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
