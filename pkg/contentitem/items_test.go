package contentitem_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/contentitem/pkg/contentitem"
	repomemory "github.com/tendant/contentitem/pkg/contentitem/repo/memory"
	storagememory "github.com/tendant/contentitem/pkg/contentitem/storage/memory"
)

func setupItemServiceTest(t *testing.T) (*contentitem.ItemService, *contentitem.BlobContentStore, *storagememory.Backend) {
	t.Helper()
	registry := repomemory.New()
	blobs := storagememory.New()
	store := contentitem.NewBlobContentStore("memory", blobs, registry)
	return contentitem.NewItemService(registry, store, nil, nil), store, blobs
}

func TestItemService_CreateItem(t *testing.T) {
	svc, _, _ := setupItemServiceTest(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, contentitem.CreateItemRequest{
		ID:        "doc-1",
		Name:      "report.pdf",
		TenantID:  "acme",
		MimeType:  "application/pdf",
		CreatedBy: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", item.ID)
	assert.False(t, item.ContentAvailable)
	assert.Equal(t, "alice", item.LastModifiedBy)
	assert.False(t, item.Created.IsZero())

	got, err := svc.GetItem(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", got.Name)
}

func TestItemService_CreateItemAssignsID(t *testing.T) {
	svc, _, _ := setupItemServiceTest(t)

	item, err := svc.CreateItem(context.Background(), contentitem.CreateItemRequest{Name: "untitled"})
	require.NoError(t, err)
	_, err = uuid.Parse(item.ID)
	assert.NoError(t, err)
}

func TestItemService_CreateDuplicate(t *testing.T) {
	svc, _, _ := setupItemServiceTest(t)
	ctx := context.Background()

	_, err := svc.CreateItem(ctx, contentitem.CreateItemRequest{ID: "doc-1"})
	require.NoError(t, err)

	_, err = svc.CreateItem(ctx, contentitem.CreateItemRequest{ID: "doc-1"})
	assert.Equal(t, contentitem.KindConflict, contentitem.KindOf(err))
	assert.ErrorIs(t, err, contentitem.ErrItemExists)
}

func TestItemService_GetMissing(t *testing.T) {
	svc, _, _ := setupItemServiceTest(t)

	_, err := svc.GetItem(context.Background(), "missing")
	assert.Equal(t, contentitem.KindNotFound, contentitem.KindOf(err))
}

func TestItemService_ListItemsByTenant(t *testing.T) {
	svc, _, _ := setupItemServiceTest(t)
	ctx := context.Background()

	for _, req := range []contentitem.CreateItemRequest{
		{ID: "a", TenantID: "acme"},
		{ID: "b", TenantID: "acme"},
		{ID: "c", TenantID: "globex"},
	} {
		_, err := svc.CreateItem(ctx, req)
		require.NoError(t, err)
	}

	acme, err := svc.ListItems(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, acme, 2)

	all, err := svc.ListItems(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestItemService_DeleteItemRemovesData(t *testing.T) {
	svc, store, blobs := setupItemServiceTest(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, contentitem.CreateItemRequest{ID: "doc-1"})
	require.NoError(t, err)
	require.NoError(t, store.WriteStream(ctx, item, bytes.NewReader([]byte("payload"))))
	key := item.ContentStoreID

	require.NoError(t, svc.DeleteItem(ctx, "doc-1"))

	_, err = svc.GetItem(ctx, "doc-1")
	assert.Equal(t, contentitem.KindNotFound, contentitem.KindOf(err))

	_, err = blobs.GetObjectMeta(ctx, key)
	assert.ErrorIs(t, err, contentitem.ErrObjectNotFound)

	err = svc.DeleteItem(ctx, "doc-1")
	assert.Equal(t, contentitem.KindNotFound, contentitem.KindOf(err))
}

type undeletableRegistry struct {
	*repomemory.Repository
}

func (undeletableRegistry) DeleteItem(ctx context.Context, id string) error {
	return errors.New("connection reset")
}

type undeletableBlobs struct {
	*storagememory.Backend
}

func (undeletableBlobs) Delete(ctx context.Context, objectKey string) error {
	return errors.New("access denied")
}

func TestItemService_DeleteItemKeepsDataWhenRecordSurvives(t *testing.T) {
	registry := undeletableRegistry{repomemory.New()}
	blobs := storagememory.New()
	store := contentitem.NewBlobContentStore("memory", blobs, registry)
	svc := contentitem.NewItemService(registry, store, nil, nil)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, contentitem.CreateItemRequest{ID: "doc-1"})
	require.NoError(t, err)
	require.NoError(t, store.WriteStream(ctx, item, bytes.NewReader([]byte("payload"))))

	err = svc.DeleteItem(ctx, "doc-1")
	assert.Equal(t, contentitem.KindInternal, contentitem.KindOf(err))

	stored, err := registry.GetItem(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, stored.ContentAvailable)
	_, err = blobs.GetObjectMeta(ctx, stored.ContentStoreID)
	assert.NoError(t, err, "data of a surviving record must stay readable")
}

func TestItemService_DeleteItemIgnoresBlobCleanupFailure(t *testing.T) {
	registry := repomemory.New()
	store := contentitem.NewBlobContentStore("memory", undeletableBlobs{storagememory.New()}, registry)
	svc := contentitem.NewItemService(registry, store, nil, nil)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, contentitem.CreateItemRequest{ID: "doc-1"})
	require.NoError(t, err)
	require.NoError(t, store.WriteStream(ctx, item, bytes.NewReader([]byte("payload"))))

	require.NoError(t, svc.DeleteItem(ctx, "doc-1"))

	_, err = svc.GetItem(ctx, "doc-1")
	assert.Equal(t, contentitem.KindNotFound, contentitem.KindOf(err))
}
