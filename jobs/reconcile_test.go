package jobs

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/campushub/internal/forms"
	"github.com/campushub/campushub/internal/platform/storage"
)

// fakeFormsRepo stubs only the reconciliation surface of forms.Repository.
type fakeFormsRepo struct {
	forms.Repository
	records []forms.FileRecord
	deleted []int64
}

func (f *fakeFormsRepo) ListFileRecords(ctx context.Context) ([]forms.FileRecord, error) {
	return f.records, nil
}

func (f *fakeFormsRepo) DeleteFileRecord(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestReconcileRemovesBothKindsOfOrphans(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	// One healthy pair, one file without metadata, one row without a file.
	healthy := storage.ApplicationFilePath(1, "kept.txt")
	require.NoError(t, store.Write(ctx, healthy, strings.NewReader("kept")))
	orphanFile := storage.ApplicationFilePath(2, "orphan.txt")
	require.NoError(t, store.Write(ctx, orphanFile, strings.NewReader("orphan")))

	repo := &fakeFormsRepo{records: []forms.FileRecord{
		{ID: 10, ApplicationID: 1, Path: healthy},
		{ID: 11, ApplicationID: 3, Path: "applications/3/gone.txt"},
	}}

	job := NewReconcileJob(repo, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, job.Run(ctx, false))

	assert.Equal(t, []int64{11}, repo.deleted, "only the row without a backing file goes")

	ok, err := store.Exists(ctx, healthy)
	require.NoError(t, err)
	assert.True(t, ok, "tracked files stay")

	ok, err = store.Exists(ctx, orphanFile)
	require.NoError(t, err)
	assert.False(t, ok, "untracked files go")
}

func TestReconcileDryRunTouchesNothing(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	orphanFile := storage.ApplicationFilePath(2, "orphan.txt")
	require.NoError(t, store.Write(ctx, orphanFile, strings.NewReader("orphan")))

	repo := &fakeFormsRepo{records: []forms.FileRecord{
		{ID: 11, ApplicationID: 3, Path: "applications/3/gone.txt"},
	}}

	job := NewReconcileJob(repo, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, job.Run(ctx, true))

	assert.Empty(t, repo.deleted)
	ok, err := store.Exists(ctx, orphanFile)
	require.NoError(t, err)
	assert.True(t, ok)
}
