package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/contentitem/pkg/contentitem"
)

const sniffLen = 512

// Config for the filesystem backend.
type Config struct {
	BaseDir string
}

// Backend keeps each blob as a file under a base directory. Writes go to a
// temporary file that is renamed into place, so readers see either the old or
// the new object, never a partial one.
type Backend struct {
	root string
}

// New creates baseDir if needed and returns a backend rooted there.
func New(cfg Config) (*Backend, error) {
	if cfg.BaseDir == "" {
		return nil, errors.New("fs: base directory is required")
	}

	root, err := filepath.Abs(cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("fs: resolve %s: %w", cfg.BaseDir, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("fs: mkdir %s: %w", root, err)
	}
	return &Backend{root: root}, nil
}

// path resolves objectKey below root, refusing keys that escape it.
func (b *Backend) path(objectKey string) (string, error) {
	p := filepath.Join(b.root, filepath.FromSlash(objectKey))
	rel, err := filepath.Rel(b.root, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key: %q", objectKey)
	}
	return p, nil
}

// fileError maps a missing file to ErrObjectNotFound and wraps the rest.
func fileError(op, key string, err error) error {
	if errors.Is(err, iofs.ErrNotExist) {
		return contentitem.ErrObjectNotFound
	}
	return fmt.Errorf("fs: %s %s: %w", op, key, err)
}

// GetObjectMeta stats the file. No MIME type is kept on disk, so the content
// type is sniffed from the first bytes.
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*contentitem.ObjectMeta, error) {
	p, err := b.path(objectKey)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(p)
	if err != nil {
		return nil, fileError("stat", objectKey, err)
	}

	return &contentitem.ObjectMeta{
		Key:         objectKey,
		Size:        info.Size(),
		ContentType: sniff(p),
		UpdatedAt:   info.ModTime(),
	}, nil
}

func sniff(p string) string {
	f, err := os.Open(p)
	if err != nil {
		return contentitem.DefaultMediaType
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if n == 0 && err != nil {
		return contentitem.DefaultMediaType
	}
	return http.DetectContentType(head[:n])
}

func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	p, err := b.path(objectKey)
	if err != nil {
		return err
	}

	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("fs: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("fs: create temp for %s: %w", objectKey, err)
	}

	_, err = io.Copy(tmp, &contextReader{ctx: ctx, r: reader})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), p)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("fs: write %s: %w", objectKey, err)
	}
	return nil
}

// UploadWithParams ignores the MIME type; GetObjectMeta sniffs it instead.
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params contentitem.UploadParams) error {
	return b.Upload(ctx, params.ObjectKey, reader)
}

func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	p, err := b.path(objectKey)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, fileError("open", objectKey, err)
	}
	return f, nil
}

// Delete removes the file and any directories it leaves empty.
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	p, err := b.path(objectKey)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil {
		return fileError("remove", objectKey, err)
	}

	for dir := filepath.Dir(p); dir != b.root && strings.HasPrefix(dir, b.root); dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			break
		}
	}
	return nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

var _ contentitem.BlobStore = (*Backend)(nil)
