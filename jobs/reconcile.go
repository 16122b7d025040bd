package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/campushub/campushub/internal/forms"
	"github.com/campushub/campushub/internal/platform/storage"
)

// ReconcileJob repairs drift between application file metadata and the file
// store. A crash between a file write and its metadata insert, or a failed
// rollback delete, leaves one side orphaned; this job removes both kinds.
type ReconcileJob struct {
	repo   forms.Repository
	store  storage.Store
	logger *slog.Logger
}

// NewReconcileJob constructs a ReconcileJob.
func NewReconcileJob(repo forms.Repository, store storage.Store, logger *slog.Logger) *ReconcileJob {
	return &ReconcileJob{repo: repo, store: store, logger: logger}
}

// Handle processes TaskStorageReconcile tasks.
func (j *ReconcileJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	return j.Run(ctx, payload.DryRun)
}

// Run performs one reconciliation pass.
func (j *ReconcileJob) Run(ctx context.Context, dryRun bool) error {
	records, err := j.repo.ListFileRecords(ctx)
	if err != nil {
		return err
	}

	tracked := make(map[string]struct{}, len(records))
	for _, rec := range records {
		tracked[rec.Path] = struct{}{}
	}

	// Existence checks fan out; deletions stay serial.
	var mu sync.Mutex
	var dangling []forms.FileRecord
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, rec := range records {
		g.Go(func() error {
			ok, err := j.store.Exists(gctx, rec.Path)
			if err != nil {
				return err
			}
			if !ok {
				mu.Lock()
				dangling = append(dangling, rec)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, rec := range dangling {
		j.logger.Warn("reconcile: metadata without file",
			slog.Int64("file_id", rec.ID), slog.Int64("application_id", rec.ApplicationID), slog.String("path", rec.Path))
		if dryRun {
			continue
		}
		if err := j.repo.DeleteFileRecord(ctx, rec.ID); err != nil {
			return err
		}
	}

	stored, err := j.store.List(ctx, "applications")
	if err != nil {
		return err
	}
	orphanFiles := 0
	for _, name := range stored {
		if !strings.HasPrefix(name, "applications/") {
			continue
		}
		if _, ok := tracked[name]; ok {
			continue
		}
		orphanFiles++
		j.logger.Warn("reconcile: file without metadata", slog.String("path", name))
		if dryRun {
			continue
		}
		if err := j.store.Delete(ctx, name); err != nil {
			return err
		}
	}

	j.logger.Info("reconcile finished",
		slog.Int("metadata_rows", len(records)),
		slog.Int("dangling_rows", len(dangling)),
		slog.Int("orphan_files", orphanFiles),
		slog.Bool("dry_run", dryRun))
	return nil
}
