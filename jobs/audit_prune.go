package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultAuditRetentionDays = 180

// AuditPruneJob removes audit log rows past the retention window.
type AuditPruneJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewAuditPruneJob constructs an AuditPruneJob.
func NewAuditPruneJob(pool *pgxpool.Pool, logger *slog.Logger) *AuditPruneJob {
	return &AuditPruneJob{pool: pool, logger: logger}
}

// Handle processes TaskAuditPrune tasks.
func (j *AuditPruneJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload AuditPrunePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	days := payload.RetentionDays
	if days <= 0 {
		days = defaultAuditRetentionDays
	}
	tag, err := j.pool.Exec(ctx,
		`DELETE FROM audit_logs WHERE occurred_at < NOW() - make_interval(days => $1)`, days)
	if err != nil {
		return fmt.Errorf("jobs: prune audit logs: %w", err)
	}
	j.logger.Info("audit prune finished",
		slog.Int("retention_days", days), slog.Int64("deleted", tag.RowsAffected()))
	return nil
}
