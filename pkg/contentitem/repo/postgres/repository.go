package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/contentitem/pkg/contentitem"
)

// Schema creates the content_item table in the current search_path.
const Schema = `
CREATE TABLE IF NOT EXISTS content_item (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL DEFAULT '',
	tenant_id          TEXT NOT NULL DEFAULT '',
	mime_type          TEXT NOT NULL DEFAULT '',
	content_available  BOOLEAN NOT NULL DEFAULT FALSE,
	content_store_id   TEXT NOT NULL DEFAULT '',
	content_store_name TEXT NOT NULL DEFAULT '',
	content_size       BIGINT NOT NULL DEFAULT 0,
	created            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	created_by         TEXT NOT NULL DEFAULT '',
	last_modified      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_modified_by   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS content_item_tenant_idx ON content_item (tenant_id, created DESC);
`

const itemColumns = `id, name, tenant_id, mime_type, content_available, content_store_id,
	content_store_name, content_size, created, created_by, last_modified, last_modified_by`

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements contentitem.Registry using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Migrate creates the schema objects the repository needs.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return handlePostgresError("migrate", err)
	}
	return nil
}

// handlePostgresError maps driver errors onto registry errors.
func handlePostgresError(operation string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return contentitem.ErrItemNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return contentitem.ErrItemExists
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) CreateItem(ctx context.Context, item *contentitem.Item) error {
	query := `
		INSERT INTO content_item (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		item.ID, item.Name, item.TenantID, item.MimeType, item.ContentAvailable,
		item.ContentStoreID, item.ContentStoreName, item.ContentSize,
		item.Created, item.CreatedBy, item.LastModified, item.LastModifiedBy)
	if err != nil {
		return handlePostgresError("create item", err)
	}
	return nil
}

func (r *Repository) GetItem(ctx context.Context, id string) (*contentitem.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM content_item WHERE id = $1`

	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, handlePostgresError("get item", err)
	}
	return item, nil
}

func (r *Repository) UpdateItem(ctx context.Context, item *contentitem.Item) error {
	query := `
		UPDATE content_item SET
			name = $2, tenant_id = $3, mime_type = $4, content_available = $5,
			content_store_id = $6, content_store_name = $7, content_size = $8,
			last_modified = $9, last_modified_by = $10
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		item.ID, item.Name, item.TenantID, item.MimeType, item.ContentAvailable,
		item.ContentStoreID, item.ContentStoreName, item.ContentSize,
		item.LastModified, item.LastModifiedBy)
	if err != nil {
		return handlePostgresError("update item", err)
	}
	if tag.RowsAffected() == 0 {
		return contentitem.ErrItemNotFound
	}
	return nil
}

func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM content_item WHERE id = $1`, id)
	if err != nil {
		return handlePostgresError("delete item", err)
	}
	if tag.RowsAffected() == 0 {
		return contentitem.ErrItemNotFound
	}
	return nil
}

func (r *Repository) ListItems(ctx context.Context, tenantID string) ([]*contentitem.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM content_item
		WHERE ($1 = '' OR tenant_id = $1)
		ORDER BY created DESC, id`

	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, handlePostgresError("list items", err)
	}
	defer rows.Close()

	var items []*contentitem.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, handlePostgresError("list items", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list items", err)
	}

	return items, nil
}

func scanItem(row pgx.Row) (*contentitem.Item, error) {
	var item contentitem.Item
	err := row.Scan(
		&item.ID, &item.Name, &item.TenantID, &item.MimeType, &item.ContentAvailable,
		&item.ContentStoreID, &item.ContentStoreName, &item.ContentSize,
		&item.Created, &item.CreatedBy, &item.LastModified, &item.LastModifiedBy)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

var _ contentitem.Registry = (*Repository)(nil)
