package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/contentitem/pkg/contentitem"
)

func TestBackend_UploadDownload(t *testing.T) {
	backend := New()
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "k1", bytes.NewReader([]byte("hello"))))

	rc, err := backend.Download(ctx, "k1")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestBackend_UploadWithParams(t *testing.T) {
	backend := New()
	ctx := context.Background()

	err := backend.UploadWithParams(ctx, bytes.NewReader([]byte{0x25, 0x50}), contentitem.UploadParams{
		ObjectKey: "k1",
		MimeType:  "application/pdf",
	})
	require.NoError(t, err)

	meta, err := backend.GetObjectMeta(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "k1", meta.Key)
	assert.Equal(t, int64(2), meta.Size)
	assert.Equal(t, "application/pdf", meta.ContentType)
	assert.False(t, meta.UpdatedAt.IsZero())
}

func TestBackend_Overwrite(t *testing.T) {
	backend := New()
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "k1", bytes.NewReader([]byte("old"))))

	// a reader opened before the overwrite keeps the old bytes
	before, err := backend.Download(ctx, "k1")
	require.NoError(t, err)

	require.NoError(t, backend.Upload(ctx, "k1", bytes.NewReader([]byte("new"))))

	oldData, err := io.ReadAll(before)
	require.NoError(t, err)
	assert.Equal(t, "old", string(oldData))

	after, err := backend.Download(ctx, "k1")
	require.NoError(t, err)
	newData, err := io.ReadAll(after)
	require.NoError(t, err)
	assert.Equal(t, "new", string(newData))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func TestBackend_FailedUploadKeepsPrevious(t *testing.T) {
	backend := New()
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "k1", bytes.NewReader([]byte("keep"))))
	require.Error(t, backend.Upload(ctx, "k1", failingReader{}))

	rc, err := backend.Download(ctx, "k1")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestBackend_NotFound(t *testing.T) {
	backend := New()
	ctx := context.Background()

	_, err := backend.Download(ctx, "missing")
	assert.ErrorIs(t, err, contentitem.ErrObjectNotFound)

	_, err = backend.GetObjectMeta(ctx, "missing")
	assert.ErrorIs(t, err, contentitem.ErrObjectNotFound)

	assert.ErrorIs(t, backend.Delete(ctx, "missing"), contentitem.ErrObjectNotFound)
}

func TestBackend_Delete(t *testing.T) {
	backend := New()
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "k1", bytes.NewReader([]byte("x"))))
	require.NoError(t, backend.Delete(ctx, "k1"))

	_, err := backend.Download(ctx, "k1")
	assert.ErrorIs(t, err, contentitem.ErrObjectNotFound)
}
