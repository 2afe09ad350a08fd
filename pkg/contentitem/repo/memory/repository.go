package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tendant/contentitem/pkg/contentitem"
)

// Repository implements contentitem.Registry using in-memory storage
type Repository struct {
	mu    sync.RWMutex
	items map[string]*contentitem.Item
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		items: make(map[string]*contentitem.Item),
	}
}

func (r *Repository) CreateItem(ctx context.Context, item *contentitem.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return contentitem.ErrItemExists
	}

	// Create a copy to avoid external modifications
	itemCopy := *item
	r.items[item.ID] = &itemCopy
	return nil
}

func (r *Repository) GetItem(ctx context.Context, id string) (*contentitem.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		return nil, contentitem.ErrItemNotFound
	}

	// Return a copy to prevent external modifications
	itemCopy := *item
	return &itemCopy, nil
}

func (r *Repository) UpdateItem(ctx context.Context, item *contentitem.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; !exists {
		return contentitem.ErrItemNotFound
	}

	itemCopy := *item
	r.items[item.ID] = &itemCopy
	return nil
}

func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return contentitem.ErrItemNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *Repository) ListItems(ctx context.Context, tenantID string) ([]*contentitem.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*contentitem.Item
	for _, item := range r.items {
		if tenantID == "" || item.TenantID == tenantID {
			itemCopy := *item
			result = append(result, &itemCopy)
		}
	}

	// Sort by created descending, id as tie-breaker
	sort.Slice(result, func(i, j int) bool {
		if result[i].Created.Equal(result[j].Created) {
			return result[i].ID < result[j].ID
		}
		return result[i].Created.After(result[j].Created)
	})

	return result, nil
}

var _ contentitem.Registry = (*Repository)(nil)
