package scan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tendant/contentitem/pkg/contentitem"
)

// ItemProcessor processes individual content items.
type ItemProcessor interface {
	// Process is called for each item found during a scan. Returning an error
	// marks the item as failed; the scan continues with the next item.
	Process(ctx context.Context, item *contentitem.Item) error
}

// ItemLister is the part of the registry a scan reads.
type ItemLister interface {
	ListItems(ctx context.Context, tenantID string) ([]*contentitem.Item, error)
}

// Scanner lists items and runs a processor over them.
type Scanner struct {
	items  ItemLister
	logger *slog.Logger
}

// New creates a new Scanner instance.
func New(items ItemLister, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{items: items, logger: logger}
}

// Options configures the scan operation.
type Options struct {
	// TenantID restricts the scan to one tenant; empty scans all items
	TenantID string

	// Processor defines the processing logic (required unless DryRun is true)
	Processor ItemProcessor

	// DryRun reports what would be processed without calling Processor
	DryRun bool

	// OnProgress is called after each item (optional)
	OnProgress func(processed, total int64)
}

// Result contains statistics about the scan operation.
type Result struct {
	TotalFound     int64
	TotalProcessed int64
	TotalFailed    int64
	FailedIDs      []string
}

// Scan processes every item matching opts. A cancelled context stops the scan
// between items.
func (s *Scanner) Scan(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{}

	if !opts.DryRun && opts.Processor == nil {
		return result, fmt.Errorf("processor is required when DryRun is false")
	}

	items, err := s.items.ListItems(ctx, opts.TenantID)
	if err != nil {
		return result, fmt.Errorf("failed to list content items: %w", err)
	}
	result.TotalFound = int64(len(items))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if opts.DryRun {
			s.logger.Info("Dry run: would process item", "content_item_id", item.ID, "tenant_id", item.TenantID)
			result.TotalProcessed++
		} else if err := opts.Processor.Process(ctx, item); err != nil {
			result.TotalFailed++
			result.FailedIDs = append(result.FailedIDs, item.ID)
			s.logger.Warn("Failed to process item", "content_item_id", item.ID, "error", err)
		} else {
			result.TotalProcessed++
		}

		if opts.OnProgress != nil {
			opts.OnProgress(result.TotalProcessed+result.TotalFailed, result.TotalFound)
		}
	}

	return result, nil
}

// ForEach runs fn over every item of tenantID.
func (s *Scanner) ForEach(ctx context.Context, tenantID string, fn func(context.Context, *contentitem.Item) error) (*Result, error) {
	return s.Scan(ctx, Options{
		TenantID:  tenantID,
		Processor: ProcessorFunc(fn),
	})
}

// ProcessorFunc adapts a function to the ItemProcessor interface.
type ProcessorFunc func(context.Context, *contentitem.Item) error

func (f ProcessorFunc) Process(ctx context.Context, item *contentitem.Item) error {
	return f(ctx, item)
}
