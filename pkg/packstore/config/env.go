package config

import (
	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig mirrors StorageConfig with env bindings.
//
// Environment variables:
//
//	PORT             - HTTP port for cmd/server (default "8080")
//	ENVIRONMENT      - Runtime environment (default "development")
//	STORAGE_ROOT     - Base path for all stored trees (required)
//	STORAGE_FS       - "os" or "memory" (default "os")
//	LOG_FILE         - Log destination; empty logs to stderr
//	LOG_MAX_SIZE_MB  - Rotate the log file after this many megabytes
//	LOG_MAX_BACKUPS  - Rotated files to retain
type envConfig struct {
	Port           string `env:"PORT" env-default:""`
	Environment    string `env:"ENVIRONMENT" env-default:""`
	Root           string `env:"STORAGE_ROOT" env-default:""`
	FilesystemType string `env:"STORAGE_FS" env-default:""`
	LogFile        string `env:"LOG_FILE" env-default:""`
	LogMaxSizeMB   int    `env:"LOG_MAX_SIZE_MB" env-default:"100"`
	LogMaxBackups  int    `env:"LOG_MAX_BACKUPS" env-default:"3"`
}

// WithEnv applies environment variable overrides on top of whatever the
// config already holds. Unset variables leave the existing values alone.
func WithEnv() Option {
	return func(c *StorageConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return err
		}

		if env.Port != "" {
			c.Port = env.Port
		}
		if env.Environment != "" {
			c.Environment = env.Environment
		}
		if env.Root != "" {
			c.Root = env.Root
		}
		if env.FilesystemType != "" {
			c.FilesystemType = env.FilesystemType
		}
		if env.LogFile != "" {
			c.LogFile = env.LogFile
			c.LogMaxSizeMB = env.LogMaxSizeMB
			c.LogMaxBackups = env.LogMaxBackups
		}
		return nil
	}
}
