package postgres

import (
	"context"
	"database/sql"
	"time"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/repository"
)

type jobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) repository.JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Enqueue(ctx context.Context, job *domain.DeferredJob) error {
	query := `INSERT INTO deferred_jobs (name, booking_id, run_at, attempts, created_on)
	          VALUES ($1, $2, $3, 0, $4) RETURNING id`
	return r.db.QueryRowContext(ctx, query, job.Name, job.BookingID, job.RunAt, time.Now()).Scan(&job.ID)
}

func (r *jobRepository) ListDue(ctx context.Context, now time.Time, limit int32) ([]domain.DeferredJob, error) {
	query := `SELECT id, name, booking_id, run_at, attempts, executed_on, created_on
	          FROM deferred_jobs WHERE executed_on IS NULL AND run_at <= $1
	          ORDER BY run_at LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.DeferredJob
	for rows.Next() {
		var j domain.DeferredJob
		if err := rows.Scan(&j.ID, &j.Name, &j.BookingID, &j.RunAt, &j.Attempts, &j.ExecutedOn, &j.CreatedOn); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *jobRepository) MarkExecuted(ctx context.Context, jobID int32, executedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE deferred_jobs SET executed_on = $1 WHERE id = $2`, executedAt, jobID)
	return err
}

func (r *jobRepository) RecordAttempt(ctx context.Context, jobID int32) error {
	_, err := r.db.ExecContext(ctx, `UPDATE deferred_jobs SET attempts = attempts + 1 WHERE id = $1`, jobID)
	return err
}
