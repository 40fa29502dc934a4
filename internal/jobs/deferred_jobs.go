package jobs

import (
	"context"
	"time"

	"drivehub-backend/internal/domain"
	"drivehub-backend/internal/logger"
)

const dueJobBatchSize = 100

// ProcessDueJobs drains the deferred-job queue. Each job re-reads current
// state at fire time; a job whose precondition no longer holds is marked
// executed as a silent success. A job that fails for a transient reason stays
// unexecuted and is retried on the next tick.
func (jr *JobRunner) ProcessDueJobs() {
	jr.runWithRecovery("ProcessDueJobs", func() {
		ctx := context.Background()
		now := time.Now()

		due, err := jr.store.JobRepository.ListDue(ctx, now, dueJobBatchSize)
		if err != nil {
			logger.Error("Failed to list due jobs", "error", err)
			return
		}

		for i := range due {
			job := &due[i]
			if err := jr.store.JobRepository.RecordAttempt(ctx, job.ID); err != nil {
				logger.Error("Failed to record job attempt", "job_id", job.ID, "error", err)
				continue
			}

			if err := jr.dispatch(ctx, job); err != nil {
				logger.Error("Deferred job failed, will retry",
					"job_id", job.ID, "name", job.Name, "booking_id", job.BookingID, "error", err)
				continue
			}

			if err := jr.store.JobRepository.MarkExecuted(ctx, job.ID, time.Now()); err != nil {
				logger.Error("Failed to mark job executed", "job_id", job.ID, "error", err)
			}
		}
	})
}

func (jr *JobRunner) dispatch(ctx context.Context, job *domain.DeferredJob) error {
	switch job.Name {
	case domain.JobRevertUnpaidExtension:
		return jr.revertUnpaidExtension(ctx, job.BookingID)
	case domain.JobUnlockBalance:
		return jr.unlockBalance(ctx, job.BookingID)
	case domain.JobReleaseMaintenance:
		return jr.releaseMaintenance(ctx, job.BookingID)
	default:
		// Unknown names are retired so they cannot poison the queue.
		logger.Error("Unknown deferred job name", "job_id", job.ID, "name", job.Name)
		return nil
	}
}
