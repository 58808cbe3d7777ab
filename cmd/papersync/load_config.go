package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/openmined/papersync/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// dotenvFile keeps the MENDELEY_* keys readable from the files older setups used
const dotenvFile = ".mendeley_config"

// flag name => config key
var flagKeys = map[string]string{
	"source-folder": "source_folder",
	"mirror-folder": "mirror_folder",
	"rmapi":         "rmapi_path",
	"trash-dir":     "trash_dir",
	"no-trash":      "no_trash",
	"dry-run":       "dry_run",
	"log-file":      "log_file",
}

// config key => extra env names, checked after PAPERSYNC_<KEY>
var envAliases = map[string]string{
	"mendeley.client_id":     "MENDELEY_CLIENT_ID",
	"mendeley.client_secret": "MENDELEY_CLIENT_SECRET",
	"mendeley.redirect_uri":  "MENDELEY_REDIRECT_URI",
	"mendeley.token":         "MENDELEY_OAUTH2_TOKEN_BASE64",
}

// loadConfig merges defaults, the config file, dotenv files, env vars and
// flags, in increasing order of priority.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()

	defaults := config.Default()
	v.SetDefault("source_folder", defaults.SourceFolder)
	v.SetDefault("mirror_folder", defaults.MirrorFolder)
	v.SetDefault("rmapi_path", defaults.RmapiPath)
	v.SetDefault("trash_dir", defaults.TrashDir)
	v.SetDefault("no_trash", defaults.NoTrash)
	v.SetDefault("dry_run", defaults.DryRun)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("lock_file", defaults.LockFile)
	v.SetDefault("mendeley.client_id", "")
	v.SetDefault("mendeley.client_secret", "")
	v.SetDefault("mendeley.redirect_uri", defaults.Mendeley.RedirectURI)
	v.SetDefault("mendeley.token", "")

	// config path
	configPath := config.DefaultConfigPath
	if f := cmd.Flag("config"); f != nil {
		configPath = f.Value.String()
	}
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		var notFound viper.ConfigFileNotFoundError
		if !enoent && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config read '%s': %w", configPath, err)
		}
	}

	if err := loadDotenv(); err != nil {
		return nil, err
	}

	// Set up environment variables
	v.SetEnvPrefix("PAPERSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range envAliases {
		envKey := "PAPERSYNC_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, alias); err != nil {
			return nil, err
		}
	}

	// Bind flags to viper
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	cfg := config.Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config decode: %w", err)
	}
	cfg.Path = configPath

	return cfg, nil
}

// loadDotenv reads ~/.mendeley_config and ./.mendeley_config when present.
// Variables already set in the environment are never overridden.
func loadDotenv() error {
	var files []string
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, dotenvFile))
	}
	files = append(files, dotenvFile)

	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}
