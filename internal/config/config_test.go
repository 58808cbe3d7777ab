package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	tmp := t.TempDir()

	cfg := Default()
	cfg.TrashDir = filepath.Join(tmp, "trash")
	cfg.LogFile = filepath.Join(tmp, "logs", "papersync.log")
	cfg.LockFile = filepath.Join(tmp, "papersync.lock")
	cfg.Path = filepath.Join(tmp, "config.json")
	cfg.Mendeley.ClientID = "1234"
	cfg.Mendeley.ClientSecret = "secret"
	cfg.Mendeley.Token = "dG9rZW4="
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "Remarkable", cfg.SourceFolder)
	assert.Equal(t, "Mendeley", cfg.MirrorFolder)
	assert.Equal(t, "rmapi", cfg.RmapiPath)
	assert.Equal(t, "http://localhost:5000/oauth", cfg.Mendeley.RedirectURI)
	assert.Equal(t, DefaultTrashDir, cfg.TrashDir)
}

func TestConfig_Validate(t *testing.T) {
	cfg := validConfig(t)
	cfg.TrashDir = "./trash"
	require.NoError(t, cfg.Validate())
	assert.True(t, filepath.IsAbs(cfg.TrashDir))

	t.Run("same folder names are allowed", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.MirrorFolder = cfg.SourceFolder
		assert.NoError(t, cfg.Validate())
	})

	t.Run("empty redirect uri gets the default", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Mendeley.RedirectURI = ""
		require.NoError(t, cfg.Validate())
		assert.Equal(t, DefaultRedirectURI, cfg.Mendeley.RedirectURI)
	})
}

func TestConfig_Validate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"no source folder", func(c *Config) { c.SourceFolder = "" }, ErrNoSourceFolder},
		{"no mirror folder", func(c *Config) { c.MirrorFolder = "" }, ErrNoMirrorFolder},
		{"no rmapi", func(c *Config) { c.RmapiPath = "" }, ErrNoRmapiPath},
		{"no client id", func(c *Config) { c.Mendeley.ClientID = "" }, ErrNoClientID},
		{"no client secret", func(c *Config) { c.Mendeley.ClientSecret = "" }, ErrNoClientSecret},
		{"no token", func(c *Config) { c.Mendeley.Token = "" }, ErrNoToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}

	cfg := validConfig(t)
	cfg.Mendeley.RedirectURI = "localhost:5000/oauth"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect uri")
}

func TestConfig_ValidateLogin(t *testing.T) {
	cfg := validConfig(t)
	cfg.Mendeley.Token = ""
	cfg.SourceFolder = ""
	assert.NoError(t, cfg.ValidateLogin())

	cfg.Mendeley.ClientSecret = ""
	assert.ErrorIs(t, cfg.ValidateLogin(), ErrNoClientSecret)
}

func TestConfig_SaveLoad(t *testing.T) {
	cfg := validConfig(t)
	cfg.MirrorFolder = "Papers"
	cfg.NoTrash = true

	require.NoError(t, cfg.Save(cfg.Path))

	info, err := os.Stat(cfg.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(cfg.Path)
	require.NoError(t, err)
	assert.Equal(t, "Papers", loaded.MirrorFolder)
	assert.True(t, loaded.NoTrash)
	assert.Equal(t, cfg.Mendeley, loaded.Mendeley)
	assert.Equal(t, cfg.Path, loaded.Path)
	assert.Equal(t, cfg.LogFile, loaded.LogFile)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}
