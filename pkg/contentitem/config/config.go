package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/contentitem/pkg/contentitem"
	"github.com/tendant/contentitem/pkg/contentitem/objectkey"
	repomemory "github.com/tendant/contentitem/pkg/contentitem/repo/memory"
	repopg "github.com/tendant/contentitem/pkg/contentitem/repo/postgres"
	fsstorage "github.com/tendant/contentitem/pkg/contentitem/storage/fs"
	memorystorage "github.com/tendant/contentitem/pkg/contentitem/storage/memory"
	s3storage "github.com/tendant/contentitem/pkg/contentitem/storage/s3"
)

// Option applies configuration to a Config instance.
type Option func(*Config) error

// Load constructs a Config by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*Config, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() Config {
	return Config{
		Port:               "8080",
		Environment:        "development",
		DatabaseType:       "memory",
		DBSchema:           "content",
		Storage:            StorageConfig{Type: "memory"},
		ObjectKeyStrategy:  "sharded",
		EnableEventLogging: true,
	}
}

// Config represents configuration for the content item server and CLI
type Config struct {
	Port        string
	Environment string // development, production, testing
	BaseURL     string // prefix for item URLs in responses

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Postgres schema to use (default: content)

	Storage           StorageConfig
	ObjectKeyStrategy string

	// HTTP options
	APIKeySHA256   string
	JWTSecret      string
	MaxUploadBytes int64

	EnableEventLogging bool
}

// StorageConfig selects and configures the blob backend
type StorageConfig struct {
	Type    string // "memory", "fs", "s3"
	BaseDir string // fs only
	S3      s3storage.Config
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.Storage.Type {
	case "memory":
	case "fs":
		if c.Storage.BaseDir == "" {
			return errors.New("storage base directory is required for fs storage")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("storage bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	if _, err := objectkey.New(c.ObjectKeyStrategy); err != nil {
		return err
	}

	if c.MaxUploadBytes < 0 {
		return errors.New("max_upload_bytes cannot be negative")
	}

	return nil
}

// Stack holds the components built from a Config.
type Stack struct {
	Registry     contentitem.Registry
	BlobStore    contentitem.BlobStore
	ContentStore *contentitem.BlobContentStore
	Gateway      *contentitem.Gateway
	Items        *contentitem.ItemService

	pool *pgxpool.Pool
}

// Close releases the database pool, if any.
func (s *Stack) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the item table when the registry is Postgres.
func (s *Stack) Migrate(ctx context.Context) error {
	if repo, ok := s.Registry.(*repopg.Repository); ok {
		return repo.Migrate(ctx)
	}
	return nil
}

// Build creates the registry, blob store, gateway and item service.
func (c *Config) Build(ctx context.Context, logger *slog.Logger) (*Stack, error) {
	if logger == nil {
		logger = slog.Default()
	}

	stack := &Stack{}

	registry, pool, err := c.buildRegistry(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}
	stack.Registry = registry
	stack.pool = pool

	blobs, err := c.buildBlobStore()
	if err != nil {
		stack.Close()
		return nil, fmt.Errorf("failed to build storage backend %s: %w", c.Storage.Type, err)
	}
	stack.BlobStore = blobs

	keys, err := objectkey.New(c.ObjectKeyStrategy)
	if err != nil {
		stack.Close()
		return nil, err
	}

	stack.ContentStore = contentitem.NewBlobContentStore(c.Storage.Type, blobs, registry,
		contentitem.WithKeyGenerator(keys),
		contentitem.WithStoreLogger(logger),
	)

	formatter := contentitem.NewURLFormatter(c.BaseURL)
	sink := contentitem.NewNoopEventSink()
	if c.EnableEventLogging {
		sink = contentitem.NewLogEventSink(logger)
	}

	stack.Gateway, err = contentitem.NewGateway(
		contentitem.WithItemLookup(registry),
		contentitem.WithContentStore(stack.ContentStore),
		contentitem.WithFormatter(formatter),
		contentitem.WithEventSink(sink),
		contentitem.WithLogger(logger),
	)
	if err != nil {
		stack.Close()
		return nil, err
	}

	stack.Items = contentitem.NewItemService(registry, stack.ContentStore, formatter, logger)
	return stack, nil
}

// buildRegistry creates a Registry based on the configuration
func (c *Config) buildRegistry(ctx context.Context) (contentitem.Registry, *pgxpool.Pool, error) {
	switch c.DatabaseType {
	case "memory":
		return repomemory.New(), nil, nil
	case "postgres":
		pool, err := NewPool(ctx, c.DatabaseURL, c.DBSchema)
		if err != nil {
			return nil, nil, err
		}
		return repopg.NewWithPool(pool), pool, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// NewPool opens a pgx pool whose sessions use schema as search_path, and
// verifies connectivity.
func NewPool(ctx context.Context, databaseURL, schema string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// buildBlobStore creates a BlobStore based on the storage configuration
func (c *Config) buildBlobStore() (contentitem.BlobStore, error) {
	switch c.Storage.Type {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: c.Storage.BaseDir})
	case "s3":
		return s3storage.New(c.Storage.S3)
	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.Storage.Type)
	}
}
