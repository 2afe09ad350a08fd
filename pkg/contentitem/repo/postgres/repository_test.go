package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/contentitem/pkg/contentitem"
)

func TestHandlePostgresError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    error
		wantMsg string
	}{
		{"no rows", pgx.ErrNoRows, contentitem.ErrItemNotFound, ""},
		{"unique violation", &pgconn.PgError{Code: "23505"}, contentitem.ErrItemExists, ""},
		{"not null", &pgconn.PgError{Code: "23502", ColumnName: "id"}, nil, "required field id is missing"},
		{"undefined table", &pgconn.PgError{Code: "42P01"}, nil, "database migration required"},
		{"other pg error", &pgconn.PgError{Code: "XX000", Message: "boom"}, nil, "boom (code: XX000)"},
		{"plain error", errors.New("conn reset"), nil, "database error in op: conn reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handlePostgresError("op", tt.err)
			if tt.want != nil {
				assert.ErrorIs(t, got, tt.want)
				return
			}
			assert.Contains(t, got.Error(), tt.wantMsg)
		})
	}
}

// newTestRepository connects to CONTENT_TEST_DATABASE_URL, creating a
// throwaway schema for the test. Tests are skipped without it.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	connString := os.Getenv("CONTENT_TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("CONTENT_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	schema := fmt.Sprintf("content_item_test_%d", time.Now().UnixNano())

	cfg, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
		return err
	}

	admin, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)
	_, err = admin.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema))
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_, _ = admin.Exec(context.Background(), fmt.Sprintf("DROP SCHEMA %s CASCADE", schema))
		admin.Close()
	})

	repo := NewWithPool(pool)
	require.NoError(t, repo.Migrate(ctx))
	return repo
}

func TestRepository_CRUD(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	id := "doc-" + uuid.NewString()
	item := &contentitem.Item{
		ID:           id,
		Name:         "report",
		TenantID:     "acme",
		MimeType:     "application/pdf",
		Created:      now,
		LastModified: now,
	}
	require.NoError(t, repo.CreateItem(ctx, item))
	assert.ErrorIs(t, repo.CreateItem(ctx, item), contentitem.ErrItemExists)

	got, err := repo.GetItem(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "report", got.Name)
	assert.False(t, got.ContentAvailable)

	got.ContentAvailable = true
	got.ContentStoreID = "items/ab/cd/data"
	got.ContentStoreName = "fs"
	got.ContentSize = 4
	require.NoError(t, repo.UpdateItem(ctx, got))

	got, err = repo.GetItem(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.ContentAvailable)
	assert.Equal(t, int64(4), got.ContentSize)

	items, err := repo.ListItems(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, repo.DeleteItem(ctx, id))
	_, err = repo.GetItem(ctx, id)
	assert.ErrorIs(t, err, contentitem.ErrItemNotFound)
	assert.ErrorIs(t, repo.DeleteItem(ctx, id), contentitem.ErrItemNotFound)
	assert.ErrorIs(t, repo.UpdateItem(ctx, got), contentitem.ErrItemNotFound)
}
