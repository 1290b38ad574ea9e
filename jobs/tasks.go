// Package jobs runs scheduled maintenance for the asset workflow.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPurgeRejected removes rejected staging rows past their retention.
	TaskPurgeRejected = "grn:purge_rejected"
	// TaskIdempotencyCleanup trims expired idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"
)

// PurgeRejectedPayload carries scheduling metadata for a purge run.
type PurgeRejectedPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewPurgeRejectedTask constructs the purge task.
func NewPurgeRejectedTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(PurgeRejectedPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPurgeRejected, body, asynq.Queue(QueueDefault)), nil
}

// IdempotencyCleanupPayload carries scheduling metadata for a cleanup run.
type IdempotencyCleanupPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewIdempotencyCleanupTask constructs the cleanup task.
func NewIdempotencyCleanupTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(IdempotencyCleanupPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, body, asynq.Queue(QueueDefault)), nil
}
