package contentitem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	opGetData  = "get data"
	opSaveData = "save data"
)

// Gateway serves and stores the data of content items. It keeps no state
// between calls and may be shared by concurrent requests.
type Gateway struct {
	lookup    ItemLookup
	store     ContentStore
	formatter Formatter
	eventSink EventSink
	logger    *slog.Logger
}

// Option represents a functional option for configuring the gateway
type Option func(*Gateway)

// WithItemLookup sets the item lookup used to resolve ids
func WithItemLookup(lookup ItemLookup) Option {
	return func(g *Gateway) {
		g.lookup = lookup
	}
}

// WithContentStore sets the store holding item bytes
func WithContentStore(store ContentStore) Option {
	return func(g *Gateway) {
		g.store = store
	}
}

// WithFormatter sets the formatter for save responses
func WithFormatter(formatter Formatter) Option {
	return func(g *Gateway) {
		g.formatter = formatter
	}
}

// WithEventSink sets the event sink
func WithEventSink(sink EventSink) Option {
	return func(g *Gateway) {
		g.eventSink = sink
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// NewGateway creates a gateway. An item lookup and a content store are required.
func NewGateway(options ...Option) (*Gateway, error) {
	g := &Gateway{}
	for _, option := range options {
		option(g)
	}

	if g.lookup == nil {
		return nil, fmt.Errorf("item lookup is required")
	}
	if g.store == nil {
		return nil, fmt.Errorf("content store is required")
	}
	if g.formatter == nil {
		g.formatter = &URLFormatter{}
	}
	if g.eventSink == nil {
		g.eventSink = NewNoopEventSink()
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}

	return g, nil
}

// GetData returns the bytes of item id together with the media type they
// should be served as.
func (g *Gateway) GetData(ctx context.Context, id string) (*Data, error) {
	item, err := g.resolve(ctx, opGetData, id)
	if err != nil {
		return nil, err
	}

	if !item.ContentAvailable {
		g.logger.Debug("No data available", "content_item_id", id)
		return nil, noContentError(opGetData, id)
	}

	stream, err := g.store.ReadStream(ctx, item)
	if err != nil {
		if errors.Is(err, ErrStreamNotFound) {
			g.logger.Warn("Content item marked available but store has no stream", "content_item_id", id, "error", err)
			return nil, missingStreamError(opGetData, id, err)
		}
		g.logger.Error("Failed to read content item data", "content_item_id", id, "error", err)
		return nil, internalError(opGetData, id, "error getting content item data", err)
	}
	if stream == nil {
		g.logger.Warn("Content item marked available but store returned no stream", "content_item_id", id)
		return nil, missingStreamError(opGetData, id, nil)
	}

	if err := g.eventSink.ContentRead(ctx, item); err != nil {
		g.logger.Warn("Event sink failed", "event", "content_read", "content_item_id", id, "error", err)
	}

	return &Data{
		Item:      item,
		MediaType: ResolveMediaType(item.MimeType),
		Stream:    stream,
	}, nil
}

// SaveData replaces the bytes of item id with the first file part of upload.
// Additional parts are ignored.
func (g *Gateway) SaveData(ctx context.Context, id string, upload Upload) (*ItemRepresentation, error) {
	if upload == nil || !upload.Multipart() {
		return nil, invalidRequestError(opSaveData, id, "multipart request required to save content item data", nil)
	}

	item, err := g.resolve(ctx, opSaveData, id)
	if err != nil {
		return nil, err
	}

	part, err := upload.FirstPart()
	if err != nil || part == nil {
		return nil, invalidRequestError(opSaveData, id, "content item file is required", err)
	}

	stream, err := part.Open()
	if err != nil || stream == nil {
		return nil, invalidRequestError(opSaveData, id, "content item file is required", err)
	}
	defer stream.Close()

	if err := g.store.WriteStream(ctx, item, stream); err != nil {
		if errors.Is(err, ErrStreamNotFound) || errors.Is(err, ErrItemNotFound) {
			return nil, notFoundError(opSaveData, id, err)
		}
		g.logger.Error("Failed to save content item data", "content_item_id", id, "error", err)
		return nil, internalError(opSaveData, id, "error saving content item data", err)
	}

	if err := g.eventSink.ContentSaved(ctx, item); err != nil {
		g.logger.Warn("Event sink failed", "event", "content_saved", "content_item_id", id, "error", err)
	}

	g.logger.Info("Content item data saved", "content_item_id", id, "part", part.Name(), "size", item.ContentSize)
	return g.formatter.Format(item), nil
}

func (g *Gateway) resolve(ctx context.Context, op, id string) (*Item, error) {
	if strings.TrimSpace(id) == "" {
		return nil, notFoundError(op, id, nil)
	}

	item, err := g.lookup.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, notFoundError(op, id, err)
		}
		g.logger.Error("Failed to look up content item", "op", op, "content_item_id", id, "error", err)
		return nil, internalError(op, id, "error looking up content item", err)
	}
	if item == nil {
		return nil, notFoundError(op, id, nil)
	}
	return item, nil
}
