package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-fam/atlas-fam/internal/grn"
	"github.com/atlas-fam/atlas-fam/internal/shared"
)

// Maintenance owns the recurring cleanup tasks. Rejected staging rows are kept
// for audit until the retention window passes, then purged here.
type Maintenance struct {
	pool        *pgxpool.Pool
	idempotency *shared.IdempotencyStore
	logger      *slog.Logger

	rejectedRetention    time.Duration
	idempotencyRetention time.Duration
}

// NewMaintenance constructs the maintenance handlers.
func NewMaintenance(pool *pgxpool.Pool, idempotency *shared.IdempotencyStore, logger *slog.Logger, rejectedRetention, idempotencyRetention time.Duration) *Maintenance {
	return &Maintenance{
		pool:                 pool,
		idempotency:          idempotency,
		logger:               logger,
		rejectedRetention:    rejectedRetention,
		idempotencyRetention: idempotencyRetention,
	}
}

// HandlePurgeRejected deletes rejected staging rows whose decision is older
// than the retention window. Pending and approved rows are never touched
// here: pending rows await a decision and approved rows were already removed
// at migration time.
func (m *Maintenance) HandlePurgeRejected(ctx context.Context, t *asynq.Task) error {
	var payload PurgeRejectedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	cutoff := time.Now().Add(-m.rejectedRetention)
	tag, err := m.pool.Exec(ctx, `DELETE FROM item_grn WHERE status = $1 AND updated_at < $2`, int(grn.DecisionReject), cutoff)
	if err != nil {
		m.logger.Error("purge rejected staging", slog.Any("error", err))
		return err
	}
	m.logger.Info("purged rejected staging rows",
		slog.Int64("rows", tag.RowsAffected()),
		slog.Time("cutoff", cutoff))
	return nil
}

// HandleIdempotencyCleanup trims idempotency keys past their retention.
func (m *Maintenance) HandleIdempotencyCleanup(ctx context.Context, t *asynq.Task) error {
	var payload IdempotencyCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := m.idempotency.Cleanup(ctx, m.idempotencyRetention); err != nil {
		m.logger.Error("idempotency cleanup", slog.Any("error", err))
		return err
	}
	m.logger.Info("idempotency keys cleaned", slog.Duration("retention", m.idempotencyRetention))
	return nil
}
