package config

import "errors"

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *Config) error {
		c.Port = port
		return nil
	}
}

// WithBaseURL sets the prefix for item URLs
func WithBaseURL(baseURL string) Option {
	return func(c *Config) error {
		c.BaseURL = baseURL
		return nil
	}
}

// WithDatabase sets the database type and URL
func WithDatabase(dbType, url string) Option {
	return func(c *Config) error {
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithMemoryStorage selects the in-memory blob store
func WithMemoryStorage() Option {
	return func(c *Config) error {
		c.Storage = StorageConfig{Type: "memory"}
		return nil
	}
}

// WithFilesystemStorage selects the filesystem blob store rooted at baseDir
func WithFilesystemStorage(baseDir string) Option {
	return func(c *Config) error {
		if baseDir == "" {
			return errors.New("filesystem base directory cannot be empty")
		}
		c.Storage = StorageConfig{Type: "fs", BaseDir: baseDir}
		return nil
	}
}

// WithObjectKeyStrategy sets the object key layout
func WithObjectKeyStrategy(strategy string) Option {
	return func(c *Config) error {
		c.ObjectKeyStrategy = strategy
		return nil
	}
}

// WithMaxUploadBytes caps upload bodies
func WithMaxUploadBytes(n int64) Option {
	return func(c *Config) error {
		c.MaxUploadBytes = n
		return nil
	}
}
