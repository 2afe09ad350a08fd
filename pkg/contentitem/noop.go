package contentitem

import (
	"context"
	"log/slog"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// ContentRead does nothing and returns nil
func (n *NoopEventSink) ContentRead(ctx context.Context, item *Item) error {
	return nil
}

// ContentSaved does nothing and returns nil
func (n *NoopEventSink) ContentSaved(ctx context.Context, item *Item) error {
	return nil
}

// LogEventSink writes one structured log record per event.
type LogEventSink struct {
	logger *slog.Logger
}

// NewLogEventSink creates an event sink logging to logger (slog.Default when nil).
func NewLogEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventSink{logger: logger}
}

func (l *LogEventSink) ContentRead(ctx context.Context, item *Item) error {
	l.logger.InfoContext(ctx, "content_read", "content_item_id", item.ID, "mime_type", item.MimeType)
	return nil
}

func (l *LogEventSink) ContentSaved(ctx context.Context, item *Item) error {
	l.logger.InfoContext(ctx, "content_saved",
		"content_item_id", item.ID,
		"content_store", item.ContentStoreName,
		"content_store_id", item.ContentStoreID,
		"size", item.ContentSize,
	)
	return nil
}
