package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, "text", cfg.Format)
	assert.False(t, cfg.Quiet)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "json", cfg.Store.Format)
	assert.Empty(t, cfg.Store.Path)
	assert.Equal(t, DefaultTimeLayout, cfg.Events.TimeLayout)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("returns defaults when no config file exists", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Setenv("HOME", tmpDir)
		t.Setenv("XDG_CONFIG_HOME", tmpDir)
		origDir, _ := os.Getwd()
		os.Chdir(tmpDir)
		defer os.Chdir(origDir)

		cfg, err := Load()
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "text", cfg.Format)
		assert.Equal(t, "file", cfg.Store.Backend)
	})

	t.Run("reads environment overrides", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Setenv("HOME", tmpDir)
		t.Setenv("XDG_CONFIG_HOME", tmpDir)
		t.Setenv("TRK_FORMAT", "ndjson")
		t.Setenv("TRK_STORE_BACKEND", "sqlite")
		t.Setenv("TRK_STORE_PATH", "/tmp/trk/prefs.db")
		origDir, _ := os.Getwd()
		os.Chdir(tmpDir)
		defer os.Chdir(origDir)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "ndjson", cfg.Format)
		assert.Equal(t, "sqlite", cfg.Store.Backend)
		assert.Equal(t, "/tmp/trk/prefs.db", cfg.Store.Path)
	})

	t.Run("loads trk.yaml from current directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Setenv("HOME", tmpDir)
		t.Setenv("XDG_CONFIG_HOME", tmpDir)
		origDir, _ := os.Getwd()
		os.Chdir(tmpDir)
		defer os.Chdir(origDir)

		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "trk.yaml"), []byte("format: ndjson\nstore:\n  backend: memory\n"), 0644))

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "ndjson", cfg.Format)
		assert.Equal(t, "memory", cfg.Store.Backend)
	})
}

func TestLoadFromFile(t *testing.T) {
	t.Run("returns error for non-existent file", func(t *testing.T) {
		cfg, err := LoadFromFile("/nonexistent/path/config.yaml")
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "bad.yaml")
		err := os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644)
		require.NoError(t, err)

		cfg, err := LoadFromFile(configPath)
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("parses all config fields", func(t *testing.T) {
		tmpDir := t.TempDir()
		configContent := `
format: ndjson
quiet: true
verbose: true
store:
  backend: file
  path: /tmp/trk/prefs.plist
  format: plist
events:
  time_layout: "2006-01-02T15.04.05Z07"
`
		configPath := filepath.Join(tmpDir, "trk.yaml")
		err := os.WriteFile(configPath, []byte(configContent), 0644)
		require.NoError(t, err)

		cfg, err := LoadFromFile(configPath)
		require.NoError(t, err)

		assert.Equal(t, "ndjson", cfg.Format)
		assert.True(t, cfg.Quiet)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, "file", cfg.Store.Backend)
		assert.Equal(t, "/tmp/trk/prefs.plist", cfg.Store.Path)
		assert.Equal(t, "plist", cfg.Store.Format)
		assert.Equal(t, "2006-01-02T15.04.05Z07", cfg.Events.TimeLayout)
	})

	t.Run("partial config uses defaults for missing fields", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "trk.yaml")
		err := os.WriteFile(configPath, []byte("store:\n  backend: sqlite\n"), 0644)
		require.NoError(t, err)

		cfg, err := LoadFromFile(configPath)
		require.NoError(t, err)

		assert.Equal(t, "sqlite", cfg.Store.Backend)
		assert.Equal(t, "text", cfg.Format)
		assert.Equal(t, DefaultTimeLayout, cfg.Events.TimeLayout)
	})

	t.Run("rejects layout with separators", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "trk.yaml")
		err := os.WriteFile(configPath, []byte("events:\n  time_layout: \"15:04:05\"\n"), 0644)
		require.NoError(t, err)

		cfg, err := LoadFromFile(configPath)
		assert.ErrorContains(t, err, "blob separator")
		assert.Nil(t, cfg)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"ndjson", func(c *Config) { c.Format = "ndjson" }, false},
		{"bad format", func(c *Config) { c.Format = "xml" }, true},
		{"bad backend", func(c *Config) { c.Store.Backend = "redis" }, true},
		{"plist", func(c *Config) { c.Store.Format = "plist" }, false},
		{"bad store format", func(c *Config) { c.Store.Format = "ini" }, true},
		{"empty layout", func(c *Config) { c.Events.TimeLayout = "" }, true},
		{"rfc3339 layout", func(c *Config) { c.Events.TimeLayout = "2006-01-02T15:04:05Z07:00" }, true},
		{"comma layout", func(c *Config) { c.Events.TimeLayout = "Jan 2, 2006" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
