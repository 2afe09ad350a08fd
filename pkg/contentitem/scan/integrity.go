package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tendant/contentitem/pkg/contentitem"
)

// ErrMissingBlob marks an item that claims content its blob store lacks.
var ErrMissingBlob = errors.New("content marked available but blob is missing")

// StreamStatter looks up an item's blob the same way reads do.
// *contentitem.BlobContentStore implements it.
type StreamStatter interface {
	StorageKey(item *contentitem.Item) string
	StatStream(ctx context.Context, item *contentitem.Item) (*contentitem.ObjectMeta, error)
}

// IntegrityChecker verifies that every item with ContentAvailable set has a
// blob behind it. With Repair set, such items are marked as having no content.
type IntegrityChecker struct {
	streams  StreamStatter
	registry contentitem.Registry
	repair   bool
}

// NewIntegrityChecker creates a checker; registry is only written when repair is true.
func NewIntegrityChecker(streams StreamStatter, registry contentitem.Registry, repair bool) *IntegrityChecker {
	return &IntegrityChecker{streams: streams, registry: registry, repair: repair}
}

func (c *IntegrityChecker) Process(ctx context.Context, item *contentitem.Item) error {
	if !item.ContentAvailable {
		return nil
	}

	_, err := c.streams.StatStream(ctx, item)
	if err == nil {
		return nil
	}
	key := c.streams.StorageKey(item)
	if !errors.Is(err, contentitem.ErrStreamNotFound) {
		return fmt.Errorf("failed to stat blob %s: %w", key, err)
	}

	if !c.repair {
		return fmt.Errorf("%w: %s", ErrMissingBlob, key)
	}

	item.ContentAvailable = false
	item.ContentStoreID = ""
	item.ContentStoreName = ""
	item.ContentSize = 0
	item.LastModified = time.Now().UTC()
	if err := c.registry.UpdateItem(ctx, item); err != nil {
		return fmt.Errorf("failed to repair item: %w", err)
	}
	return nil
}

var _ ItemProcessor = (*IntegrityChecker)(nil)
