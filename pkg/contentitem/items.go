package contentitem

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	opCreateItem = "create item"
	opGetItem    = "get item"
	opListItems  = "list items"
	opDeleteItem = "delete item"
)

// ItemService manages item records in the registry.
type ItemService struct {
	registry  Registry
	store     ContentStore
	formatter Formatter
	logger    *slog.Logger
}

// NewItemService creates an item service. store is used to drop an item's
// data when the item is deleted.
func NewItemService(registry Registry, store ContentStore, formatter Formatter, logger *slog.Logger) *ItemService {
	if formatter == nil {
		formatter = &URLFormatter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemService{
		registry:  registry,
		store:     store,
		formatter: formatter,
		logger:    logger,
	}
}

// Formatter returns the formatter used for representations.
func (s *ItemService) Formatter() Formatter {
	return s.formatter
}

// CreateItem registers a new item without content. A missing id is assigned.
func (s *ItemService) CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now().UTC()
	item := &Item{
		ID:             id,
		Name:           req.Name,
		TenantID:       req.TenantID,
		MimeType:       req.MimeType,
		Created:        now,
		CreatedBy:      req.CreatedBy,
		LastModified:   now,
		LastModifiedBy: req.CreatedBy,
	}

	if err := s.registry.CreateItem(ctx, item); err != nil {
		if errors.Is(err, ErrItemExists) {
			return nil, &Error{Kind: KindConflict, Op: opCreateItem, ItemID: id, Message: "content item with id '" + id + "' already exists", Err: err}
		}
		return nil, internalError(opCreateItem, id, "error creating content item", err)
	}

	s.logger.Info("Content item created", "content_item_id", id)
	return item, nil
}

// GetItem returns the item with the given id.
func (s *ItemService) GetItem(ctx context.Context, id string) (*Item, error) {
	item, err := s.registry.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, notFoundError(opGetItem, id, err)
		}
		return nil, internalError(opGetItem, id, "error getting content item", err)
	}
	return item, nil
}

// ListItems returns the items of a tenant; an empty tenant lists all items.
func (s *ItemService) ListItems(ctx context.Context, tenantID string) ([]*Item, error) {
	items, err := s.registry.ListItems(ctx, tenantID)
	if err != nil {
		return nil, internalError(opListItems, tenantID, "error listing content items for tenant", err)
	}
	return items, nil
}

// DeleteItem removes the item and any data stored for it.
func (s *ItemService) DeleteItem(ctx context.Context, id string) error {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}

	if err := s.registry.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return notFoundError(opDeleteItem, id, err)
		}
		return internalError(opDeleteItem, id, "error deleting content item", err)
	}

	// The record is gone; a blob left behind is orphaned, not inconsistent.
	if item.ContentAvailable && s.store != nil {
		if err := s.store.DeleteStream(ctx, item); err != nil && !errors.Is(err, ErrStreamNotFound) {
			s.logger.Warn("Failed to remove content item data", "content_item_id", id, "error", err)
		}
	}

	s.logger.Info("Content item deleted", "content_item_id", id)
	return nil
}
