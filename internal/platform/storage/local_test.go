package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	name := ApplicationFilePath(7, "resume.pdf")
	require.NoError(t, store.Write(ctx, name, strings.NewReader("hello")))

	ok, err := store.Exists(ctx, name)
	require.NoError(t, err)
	assert.True(t, ok)

	names, err := store.List(ctx, ApplicationPrefix(7))
	require.NoError(t, err)
	assert.Equal(t, []string{name}, names)

	require.NoError(t, store.Delete(ctx, name))
	ok, err = store.Exists(ctx, name)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStoreDeleteMissingIsNoop(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "applications/1/gone.txt"))
}

func TestLocalStoreListMissingPrefix(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	names, err := store.List(context.Background(), ApplicationPrefix(404))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStoreRejectsEscapingNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	err = store.Write(context.Background(), "../outside.txt", strings.NewReader("x"))
	require.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"resume.pdf":            "resume.pdf",
		"../../etc/passwd":      "passwd",
		"dir\\nested\\file.txt": "file.txt",
		"..":                    "upload",
		"":                      "upload",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), "input %q", in)
	}
}

func TestApplicationFilePathNamespacesByID(t *testing.T) {
	assert.Equal(t, "applications/12/a.txt", ApplicationFilePath(12, "a.txt"))
	assert.Equal(t, "applications/12/passwd", ApplicationFilePath(12, "../passwd"))
}
