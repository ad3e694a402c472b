package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seqtrack/internal/config"
	"seqtrack/internal/errors"
	"seqtrack/ports"
)

func roundTrip(t *testing.T, store ports.BlobStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "uploads/a.xlsx", strings.NewReader("workbook"), 8))

	rc, err := store.Get(ctx, "uploads/a.xlsx")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "workbook", string(data))

	require.NoError(t, store.Delete(ctx, "uploads/a.xlsx"))
	_, err = store.Get(ctx, "uploads/a.xlsx")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	assert.NoError(t, store.Delete(ctx, "uploads/a.xlsx"), "deleting a missing blob is not an error")
}

func TestLocalBlobStore(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalBlobStore(root)
	require.NoError(t, err)
	assert.Equal(t, StorageLocal, store.Provider())

	roundTrip(t, store)
}

func TestLocalBlobStore_WritesUnderRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalBlobStore(root)
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "uploads/b.xlsx", strings.NewReader("x"), 1))

	_, err = os.Stat(filepath.Join(root, "uploads", "b.xlsx"))
	assert.NoError(t, err)
}

func TestLocalBlobStore_RejectsTraversal(t *testing.T) {
	store, err := NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "/etc/passwd", "../escape.xlsx", "uploads/../../x"} {
		err := store.Put(context.Background(), key, strings.NewReader("x"), 1)
		assert.True(t, errors.Is(err, errors.CodeInvalidInput), "key %q", key)
	}
}

func TestMemoryBlobStore(t *testing.T) {
	store := NewMemoryBlobStore()
	roundTrip(t, store)
	assert.Equal(t, 0, store.Len())
}

func TestNew_SelectsDriver(t *testing.T) {
	ctx := context.Background()

	local, err := New(ctx, config.BlobConfig{Driver: config.BlobLocal, Root: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalBlobStore{}, local)

	mem, err := New(ctx, config.BlobConfig{Driver: config.BlobMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryBlobStore{}, mem)

	_, err = New(ctx, config.BlobConfig{Driver: "ftp"})
	assert.True(t, errors.Is(err, errors.CodeConfigInvalid))

	_, err = New(ctx, config.BlobConfig{Driver: config.BlobS3})
	assert.True(t, errors.Is(err, errors.CodeConfigInvalid))
}

func TestArchiveKey(t *testing.T) {
	assert.Equal(t, "uploads/abc.xlsx", ArchiveKey("abc", "Run Sheet.XLSX"))
	assert.Equal(t, "uploads/abc", ArchiveKey("abc", "noext"))
}
