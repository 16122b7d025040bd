package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStorageReconcile re-syncs file metadata with the file store.
	TaskStorageReconcile = "storage:reconcile"
	// TaskAuditPrune trims old audit log rows.
	TaskAuditPrune = "audit:prune"
)

// ReconcilePayload configures a storage reconciliation run.
type ReconcilePayload struct {
	// DryRun reports orphans without deleting anything.
	DryRun bool `json:"dry_run"`
}

// NewReconcileTask constructs a storage reconciliation task.
func NewReconcileTask(payload ReconcilePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStorageReconcile, data), nil
}

// AuditPrunePayload configures an audit log pruning run.
type AuditPrunePayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewAuditPruneTask constructs an audit pruning task.
func NewAuditPruneTask(payload AuditPrunePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPrune, data), nil
}
