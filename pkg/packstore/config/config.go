package config

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/edupack/packstore/pkg/packstore"
)

// Option applies configuration to a StorageConfig instance.
type Option func(*StorageConfig) error

// Load constructs a StorageConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*StorageConfig, error) {
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

func defaults() StorageConfig {
	return StorageConfig{
		Port:           "8080",
		Environment:    "development",
		FilesystemType: "os",
	}
}

// StorageConfig represents configuration for the packstore storage service.
type StorageConfig struct {
	Port        string
	Environment string // development, production, testing

	// Root is the base path holding the libraries/, content/, exports/,
	// cachedassets/ and temp/ subtrees.
	Root string

	// FilesystemType selects the backing filesystem: "os" or "memory".
	// Memory is intended for tests and ephemeral environments.
	FilesystemType string

	// Logging
	LogFile       string // empty means stderr
	LogMaxSizeMB  int
	LogMaxBackups int
}

// WithRoot sets the storage root path.
func WithRoot(root string) Option {
	return func(c *StorageConfig) error {
		c.Root = root
		return nil
	}
}

// WithFilesystemType selects the backing filesystem type.
func WithFilesystemType(fsType string) Option {
	return func(c *StorageConfig) error {
		c.FilesystemType = fsType
		return nil
	}
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.Root == "" {
		return errors.New("storage root is required")
	}
	if c.FilesystemType != "os" && c.FilesystemType != "memory" {
		return fmt.Errorf("filesystem type must be 'os' or 'memory', got %q", c.FilesystemType)
	}
	return nil
}

// BuildStorage creates a Storage instance from the configuration.
func (c *StorageConfig) BuildStorage(opts ...packstore.Option) (packstore.Storage, error) {
	if c.FilesystemType == "memory" {
		opts = append([]packstore.Option{packstore.WithFilesystem(afero.NewMemMapFs())}, opts...)
	}
	return packstore.New(c.Root, opts...)
}
