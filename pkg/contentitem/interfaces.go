package contentitem

import (
	"context"
	"io"
)

// ItemLookup resolves an item id to its record. Implementations return
// ErrItemNotFound for unknown ids.
type ItemLookup interface {
	GetItem(ctx context.Context, id string) (*Item, error)
}

// Registry persists item records.
type Registry interface {
	ItemLookup

	CreateItem(ctx context.Context, item *Item) error
	UpdateItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, id string) error
	ListItems(ctx context.Context, tenantID string) ([]*Item, error)
}

// ContentStore reads and writes the byte stream of an item.
type ContentStore interface {
	// ReadStream opens the item's bytes. It returns ErrStreamNotFound (or a nil
	// stream) when nothing is stored for the item.
	ReadStream(ctx context.Context, item *Item) (io.ReadCloser, error)

	// WriteStream replaces the item's bytes with r and records the new state
	// on item. It does not close r.
	WriteStream(ctx context.Context, item *Item, r io.Reader) error

	// DeleteStream removes the item's bytes.
	DeleteStream(ctx context.Context, item *Item) error
}

// BlobStore defines the interface for storage backends
type BlobStore interface {
	// Upload uploads content directly
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// UploadWithParams uploads content with additional parameters
	UploadWithParams(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download downloads content directly
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete deletes content
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// Formatter turns an item into its response representation.
type Formatter interface {
	Format(item *Item) *ItemRepresentation
}

// EventSink is notified after data operations complete.
type EventSink interface {
	// ContentRead is fired when an item's data stream has been handed out
	ContentRead(ctx context.Context, item *Item) error

	// ContentSaved is fired when an item's data has been replaced
	ContentSaved(ctx context.Context, item *Item) error
}

// Upload is a store request as seen by the gateway: a possibly multipart body
// carrying file parts.
type Upload interface {
	// Multipart reports whether the request body is multipart form data.
	Multipart() bool

	// FirstPart returns the first file part in iteration order, or nil when
	// the request carries none.
	FirstPart() (Part, error)
}

// Part is a single named binary part of an upload.
type Part interface {
	Name() string
	Filename() string
	Open() (io.ReadCloser, error)
}
