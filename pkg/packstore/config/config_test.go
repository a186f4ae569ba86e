package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupack/packstore/pkg/packstore/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(config.WithRoot("/var/lib/packstore"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "os", cfg.FilesystemType)
	assert.Equal(t, "/var/lib/packstore", cfg.Root)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		options []config.Option
	}{
		{
			name:    "missing root",
			options: nil,
		},
		{
			name: "bad filesystem type",
			options: []config.Option{
				config.WithRoot("/data"),
				config.WithFilesystemType("nfs"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(tt.options...)
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestWithEnv(t *testing.T) {
	t.Setenv("STORAGE_ROOT", "/env/root")
	t.Setenv("STORAGE_FS", "memory")
	t.Setenv("PORT", "9090")

	cfg, err := config.Load(config.WithEnv())
	require.NoError(t, err)

	assert.Equal(t, "/env/root", cfg.Root)
	assert.Equal(t, "memory", cfg.FilesystemType)
	assert.Equal(t, "9090", cfg.Port)
}

func TestBuildStorage_Memory(t *testing.T) {
	cfg, err := config.Load(
		config.WithRoot("/data"),
		config.WithFilesystemType("memory"),
	)
	require.NoError(t, err)

	storage, err := cfg.BuildStorage()
	require.NoError(t, err)
	assert.NotNil(t, storage)
}
