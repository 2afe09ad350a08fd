package contentitem

import (
	"io"
	"time"
)

// Item is the registry record of a content item.
type Item struct {
	ID               string
	Name             string
	TenantID         string
	MimeType         string
	ContentAvailable bool
	ContentStoreID   string
	ContentStoreName string
	ContentSize      int64
	Created          time.Time
	CreatedBy        string
	LastModified     time.Time
	LastModifiedBy   string
}

// ItemRepresentation is the serialized view of an item returned to callers.
type ItemRepresentation struct {
	ID               string    `json:"id"`
	Name             string    `json:"name,omitempty"`
	MimeType         string    `json:"mimeType,omitempty"`
	TenantID         string    `json:"tenantId,omitempty"`
	ContentStoreID   string    `json:"contentStoreId,omitempty"`
	ContentStoreName string    `json:"contentStoreName,omitempty"`
	ContentAvailable bool      `json:"contentAvailable"`
	ContentSize      int64     `json:"contentSize"`
	Created          time.Time `json:"created"`
	CreatedBy        string    `json:"createdBy,omitempty"`
	LastModified     time.Time `json:"lastModified"`
	LastModifiedBy   string    `json:"lastModifiedBy,omitempty"`
	URL              string    `json:"url,omitempty"`
}

// Data is the result of a successful read. The caller owns Stream and must
// close it, directly or through Close.
type Data struct {
	Item      *Item
	MediaType string
	Stream    io.ReadCloser
}

// Close releases the underlying stream.
func (d *Data) Close() error {
	if d == nil || d.Stream == nil {
		return nil
	}
	return d.Stream.Close()
}

// CreateItemRequest describes a new item for the registry.
type CreateItemRequest struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	TenantID  string `json:"tenantId,omitempty"`
	MimeType  string `json:"mimeType,omitempty"`
	CreatedBy string `json:"createdBy,omitempty"`
}

// UploadParams contains parameters for writing an object to a blob store.
type UploadParams struct {
	ObjectKey string
	MimeType  string
}

// ObjectMeta contains metadata about an object in a blob store.
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}
