package fs

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/contentitem/pkg/contentitem"
)

func newBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	dir := t.TempDir()
	backend, err := New(Config{BaseDir: dir})
	require.NoError(t, err)
	return backend, backend.root
}

func TestNew_RequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base directory is required")
}

func TestBackend_UploadDownload(t *testing.T) {
	backend, _ := newBackend(t)
	ctx := context.Background()

	pdf := []byte{0x25, 0x50, 0x44, 0x46}
	require.NoError(t, backend.UploadWithParams(ctx, bytes.NewReader(pdf), contentitem.UploadParams{
		ObjectKey: "items/ab/cdef/data",
		MimeType:  "application/pdf",
	}))

	rc, err := backend.Download(ctx, "items/ab/cdef/data")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, pdf, data)

	meta, err := backend.GetObjectMeta(ctx, "items/ab/cdef/data")
	require.NoError(t, err)
	assert.Equal(t, int64(4), meta.Size)
	assert.NotEmpty(t, meta.ContentType)
}

func TestBackend_Overwrite(t *testing.T) {
	backend, base := newBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "k/data", bytes.NewReader([]byte("old payload"))))
	require.NoError(t, backend.Upload(ctx, "k/data", bytes.NewReader([]byte{0x01, 0x02})))

	data, err := os.ReadFile(filepath.Join(base, "k", "data"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, data)

	// no temporary files left behind
	entries, err := os.ReadDir(filepath.Join(base, "k"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestBackend_CancelledUploadLeavesPrevious(t *testing.T) {
	backend, _ := newBackend(t)

	require.NoError(t, backend.Upload(context.Background(), "k/data", bytes.NewReader([]byte("keep"))))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, backend.Upload(ctx, "k/data", bytes.NewReader([]byte("lost"))))

	rc, err := backend.Download(context.Background(), "k/data")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestBackend_NotFound(t *testing.T) {
	backend, _ := newBackend(t)
	ctx := context.Background()

	_, err := backend.Download(ctx, "missing")
	assert.ErrorIs(t, err, contentitem.ErrObjectNotFound)

	_, err = backend.GetObjectMeta(ctx, "missing")
	assert.ErrorIs(t, err, contentitem.ErrObjectNotFound)

	assert.ErrorIs(t, backend.Delete(ctx, "missing"), contentitem.ErrObjectNotFound)
}

func TestBackend_RejectsEscapingKeys(t *testing.T) {
	backend, _ := newBackend(t)
	ctx := context.Background()

	for _, key := range []string{"../outside", "a/../../outside", ".."} {
		err := backend.Upload(ctx, key, bytes.NewReader([]byte("x")))
		assert.Error(t, err, key)
		assert.Contains(t, err.Error(), "invalid object key")
	}
}

func TestBackend_DeleteCleansDirectories(t *testing.T) {
	backend, base := newBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "a/b/c/data", bytes.NewReader([]byte("x"))))
	require.NoError(t, backend.Delete(ctx, "a/b/c/data"))

	_, err := os.Stat(filepath.Join(base, "a"))
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(base)
	assert.NoError(t, err)
}
