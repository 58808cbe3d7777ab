package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openmined/papersync/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCmd mirrors the root command flags on a fresh command
func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{Use: "papersync"}
	cmd.Flags().StringP("config", "c", config.DefaultConfigPath, "")
	cmd.Flags().StringP("source-folder", "s", config.DefaultSourceFolder, "")
	cmd.Flags().StringP("mirror-folder", "m", config.DefaultMirrorFolder, "")
	cmd.Flags().String("rmapi", config.DefaultRmapiPath, "")
	cmd.Flags().String("log-file", config.DefaultLogFilePath, "")
	cmd.Flags().String("trash-dir", config.DefaultTrashDir, "")
	cmd.Flags().Bool("no-trash", false, "")
	cmd.Flags().BoolP("dry-run", "n", false, "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

// isolateEnv points HOME at an empty dir and clears every variable that
// loadConfig reads.
func isolateEnv(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"MENDELEY_CLIENT_ID",
		"MENDELEY_CLIENT_SECRET",
		"MENDELEY_REDIRECT_URI",
		"MENDELEY_OAUTH2_TOKEN_BASE64",
		"PAPERSYNC_SOURCE_FOLDER",
		"PAPERSYNC_MIRROR_FOLDER",
		"PAPERSYNC_RMAPI_PATH",
		"PAPERSYNC_LOG_FILE",
		"PAPERSYNC_MENDELEY_CLIENT_ID",
		"PAPERSYNC_MENDELEY_TOKEN",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return home
}

func TestLoadConfig_Defaults(t *testing.T) {
	home := isolateEnv(t)
	path := filepath.Join(home, "missing.json")

	cfg, err := loadConfig(newTestCmd(t, "--config", path))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultSourceFolder, cfg.SourceFolder)
	assert.Equal(t, config.DefaultMirrorFolder, cfg.MirrorFolder)
	assert.Equal(t, config.DefaultRmapiPath, cfg.RmapiPath)
	assert.Equal(t, config.DefaultRedirectURI, cfg.Mendeley.RedirectURI)
	assert.Equal(t, path, cfg.Path)
	assert.False(t, cfg.DryRun)
}

func TestLoadConfig_Precedence(t *testing.T) {
	home := isolateEnv(t)
	path := filepath.Join(home, "config.json")

	fileCfg := config.Default()
	fileCfg.SourceFolder = "FromFile"
	fileCfg.MirrorFolder = "FromFile"
	fileCfg.RmapiPath = "/opt/rmapi"
	fileCfg.Mendeley.ClientID = "file-id"
	fileCfg.Mendeley.ClientSecret = "file-secret"
	require.NoError(t, fileCfg.Save(path))

	t.Setenv("PAPERSYNC_MIRROR_FOLDER", "FromEnv")
	t.Setenv("PAPERSYNC_SOURCE_FOLDER", "FromEnv")
	t.Setenv("MENDELEY_CLIENT_ID", "env-id")

	cfg, err := loadConfig(newTestCmd(t, "--config", path, "--source-folder", "FromFlag", "--dry-run"))
	require.NoError(t, err)

	assert.Equal(t, "FromFlag", cfg.SourceFolder)
	assert.Equal(t, "FromEnv", cfg.MirrorFolder)
	assert.Equal(t, "/opt/rmapi", cfg.RmapiPath)
	assert.Equal(t, "env-id", cfg.Mendeley.ClientID)
	assert.Equal(t, "file-secret", cfg.Mendeley.ClientSecret)
	assert.True(t, cfg.DryRun)
}

func TestLoadConfig_Dotenv(t *testing.T) {
	home := isolateEnv(t)
	dotenv := "MENDELEY_CLIENT_ID=dot-id\nMENDELEY_CLIENT_SECRET=dot-secret\nMENDELEY_OAUTH2_TOKEN_BASE64=dG9rZW4=\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, ".mendeley_config"), []byte(dotenv), 0o600))

	t.Setenv("MENDELEY_CLIENT_SECRET", "env-secret")

	cfg, err := loadConfig(newTestCmd(t, "--config", filepath.Join(home, "config.json")))
	require.NoError(t, err)

	assert.Equal(t, "dot-id", cfg.Mendeley.ClientID)
	assert.Equal(t, "env-secret", cfg.Mendeley.ClientSecret)
	assert.Equal(t, "dG9rZW4=", cfg.Mendeley.Token)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_BadFile(t *testing.T) {
	home := isolateEnv(t)
	path := filepath.Join(home, "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	_, err := loadConfig(newTestCmd(t, "--config", path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config read")
}

func TestLoadConfig_LogFile(t *testing.T) {
	home := isolateEnv(t)
	configPath := filepath.Join(home, "config.json")

	fileCfg := config.Default()
	fileCfg.LogFile = filepath.Join(home, "from-file.log")
	require.NoError(t, fileCfg.Save(configPath))

	cfg, err := loadConfig(newTestCmd(t, "--config", configPath))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "from-file.log"), cfg.LogFile)

	t.Setenv("PAPERSYNC_LOG_FILE", filepath.Join(home, "from-env.log"))
	cfg, err = loadConfig(newTestCmd(t, "--config", configPath))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "from-env.log"), cfg.LogFile)

	cfg, err = loadConfig(newTestCmd(t, "--config", configPath, "--log-file", filepath.Join(home, "from-flag.log")))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "from-flag.log"), cfg.LogFile)
}
