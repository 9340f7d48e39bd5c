// Package jobs wires the asynq worker: notification delivery and the
// retention purge that hard-deletes soft-deleted documents.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeRetentionPurge is the periodic task that removes documents
	// soft-deleted longer than the retention window.
	TaskTypeRetentionPurge = "retention:purge"
)

// RetentionPurgePayload carries the retention window for a purge run.
type RetentionPurgePayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewRetentionPurgeTask constructs an Asynq task.
func NewRetentionPurgeTask(payload RetentionPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRetentionPurge, data), nil
}

// Purger hard-deletes documents soft-deleted before the retention cutoff.
type Purger interface {
	PurgeExpired(ctx context.Context, retention time.Duration) (int64, error)
}

// NewRetentionPurgeHandler processes TaskTypeRetentionPurge tasks against
// every registered purger.
func NewRetentionPurgeHandler(logger *slog.Logger, purgers map[string]Purger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RetentionPurgePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.RetentionHours <= 0 {
			return asynq.SkipRetry
		}
		retention := time.Duration(payload.RetentionHours) * time.Hour

		for name, purger := range purgers {
			purged, err := purger.PurgeExpired(ctx, retention)
			if err != nil {
				logger.Error("retention purge", slog.String("target", name), slog.Any("error", err))
				return err
			}
			if purged > 0 {
				logger.Info("retention purge", slog.String("target", name), slog.Int64("purged", purged))
			}
		}
		return nil
	}
}
