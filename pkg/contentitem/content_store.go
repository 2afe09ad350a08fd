package contentitem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/tendant/contentitem/pkg/contentitem/objectkey"
)

// BlobContentStore is a ContentStore that keeps bytes in a BlobStore and
// records availability on the item in a Registry.
type BlobContentStore struct {
	name     string
	blobs    BlobStore
	registry Registry
	keys     objectkey.Generator
	logger   *slog.Logger
	now      func() time.Time
}

// BlobContentStoreOption configures a BlobContentStore.
type BlobContentStoreOption func(*BlobContentStore)

// WithKeyGenerator sets the object key strategy (default: sharded).
func WithKeyGenerator(g objectkey.Generator) BlobContentStoreOption {
	return func(s *BlobContentStore) {
		s.keys = g
	}
}

// WithStoreLogger sets the logger used for best-effort cleanup failures.
func WithStoreLogger(logger *slog.Logger) BlobContentStoreOption {
	return func(s *BlobContentStore) {
		s.logger = logger
	}
}

// NewBlobContentStore creates a content store over the named blob backend.
func NewBlobContentStore(name string, blobs BlobStore, registry Registry, opts ...BlobContentStoreOption) *BlobContentStore {
	s := &BlobContentStore{
		name:     name,
		blobs:    blobs,
		registry: registry,
		keys:     objectkey.NewShardedGenerator(),
		logger:   slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the backend name recorded on items.
func (s *BlobContentStore) Name() string {
	return s.name
}

func (s *BlobContentStore) keyFor(item *Item) string {
	return s.keys.GenerateKey(item.ID, &objectkey.KeyMetadata{TenantID: item.TenantID})
}

// StorageKey is the blob key holding item's bytes: the recorded key, or the
// generated one for items written before keys were recorded.
func (s *BlobContentStore) StorageKey(item *Item) string {
	if item.ContentStoreID != "" {
		return item.ContentStoreID
	}
	return s.keyFor(item)
}

// StatStream returns the metadata of item's blob, or ErrStreamNotFound.
func (s *BlobContentStore) StatStream(ctx context.Context, item *Item) (*ObjectMeta, error) {
	key := s.StorageKey(item)
	meta, err := s.blobs.GetObjectMeta(ctx, key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrStreamNotFound, key)
		}
		return nil, &StorageError{Backend: s.name, Key: key, Op: "stat", Err: err}
	}
	return meta, nil
}

// ReadStream opens the blob recorded for item.
func (s *BlobContentStore) ReadStream(ctx context.Context, item *Item) (io.ReadCloser, error) {
	key := s.StorageKey(item)

	rc, err := s.blobs.Download(ctx, key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrStreamNotFound, key)
		}
		return nil, &StorageError{Backend: s.name, Key: key, Op: "download", Err: err}
	}
	return rc, nil
}

// WriteStream uploads r and marks item as having content. On success item
// reflects the persisted state.
func (s *BlobContentStore) WriteStream(ctx context.Context, item *Item, r io.Reader) error {
	key := s.keyFor(item)
	counter := &countingReader{r: r}

	params := UploadParams{
		ObjectKey: key,
		MimeType:  ResolveMediaType(item.MimeType),
	}
	if err := s.blobs.UploadWithParams(ctx, counter, params); err != nil {
		return &StorageError{Backend: s.name, Key: key, Op: "upload", Err: err}
	}

	previous := *item
	item.ContentAvailable = true
	item.ContentStoreID = key
	item.ContentStoreName = s.name
	item.ContentSize = counter.n
	item.LastModified = s.now()

	if err := s.registry.UpdateItem(ctx, item); err != nil {
		*item = previous
		if errors.Is(err, ErrItemNotFound) {
			return fmt.Errorf("%w: item %s removed during write", ErrStreamNotFound, item.ID)
		}
		return fmt.Errorf("failed to record content for item %s: %w", item.ID, err)
	}

	// A key strategy change leaves the old blob behind.
	if previous.ContentStoreID != "" && previous.ContentStoreID != key && previous.ContentStoreName == s.name {
		if err := s.blobs.Delete(ctx, previous.ContentStoreID); err != nil && !errors.Is(err, ErrObjectNotFound) {
			s.logger.Warn("Failed to remove superseded blob", "content_item_id", item.ID, "key", previous.ContentStoreID, "error", err)
		}
	}

	return nil
}

// DeleteStream removes the blob and clears availability on item.
func (s *BlobContentStore) DeleteStream(ctx context.Context, item *Item) error {
	key := s.StorageKey(item)

	if err := s.blobs.Delete(ctx, key); err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return fmt.Errorf("%w: %s", ErrStreamNotFound, key)
		}
		return &StorageError{Backend: s.name, Key: key, Op: "delete", Err: err}
	}

	item.ContentAvailable = false
	item.ContentStoreID = ""
	item.ContentStoreName = ""
	item.ContentSize = 0
	item.LastModified = s.now()
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
