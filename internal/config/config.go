package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/openmined/papersync/internal/utils"
)

const (
	DefaultSourceFolder = "Remarkable"
	DefaultMirrorFolder = "Mendeley"
	DefaultRmapiPath    = "rmapi"
	DefaultRedirectURI  = "http://localhost:5000/oauth"
)

var (
	home, _             = os.UserHomeDir()
	DefaultConfigDir    = filepath.Join(home, ".papersync")
	DefaultConfigPath   = filepath.Join(DefaultConfigDir, "config.json")
	DefaultLogFilePath  = filepath.Join(DefaultConfigDir, "logs", "papersync.log")
	DefaultLockFilePath = filepath.Join(DefaultConfigDir, "papersync.lock")
	DefaultTrashDir     = filepath.Join(DefaultConfigDir, "trash")
)

var (
	ErrNoSourceFolder = errors.New("config: source folder is required")
	ErrNoMirrorFolder = errors.New("config: mirror folder is required")
	ErrNoRmapiPath    = errors.New("config: rmapi path is required")
	ErrNoClientID     = errors.New("config: mendeley client id is required")
	ErrNoClientSecret = errors.New("config: mendeley client secret is required")
	ErrNoToken        = errors.New("config: mendeley token is required, run `papersync login`")
)

// MendeleyConfig holds the registered OAuth application and the stored token.
// Token is the base64 encoded JSON token printed by `papersync login`.
type MendeleyConfig struct {
	ClientID     string `json:"client_id" mapstructure:"client_id"`
	ClientSecret string `json:"client_secret" mapstructure:"client_secret"`
	RedirectURI  string `json:"redirect_uri" mapstructure:"redirect_uri"`
	Token        string `json:"token,omitempty" mapstructure:"token"`
}

type Config struct {
	SourceFolder string         `json:"source_folder" mapstructure:"source_folder"`
	MirrorFolder string         `json:"mirror_folder" mapstructure:"mirror_folder"`
	RmapiPath    string         `json:"rmapi_path" mapstructure:"rmapi_path"`
	TrashDir     string         `json:"trash_dir,omitempty" mapstructure:"trash_dir"`
	NoTrash      bool           `json:"no_trash,omitempty" mapstructure:"no_trash"`
	DryRun       bool           `json:"-" mapstructure:"dry_run"`
	LogFile      string         `json:"log_file,omitempty" mapstructure:"log_file"`
	LockFile     string         `json:"lock_file,omitempty" mapstructure:"lock_file"`
	Mendeley     MendeleyConfig `json:"mendeley" mapstructure:"mendeley"`
	Path         string         `json:"-" mapstructure:"-"`
}

func Default() *Config {
	return &Config{
		SourceFolder: DefaultSourceFolder,
		MirrorFolder: DefaultMirrorFolder,
		RmapiPath:    DefaultRmapiPath,
		TrashDir:     DefaultTrashDir,
		LogFile:      DefaultLogFilePath,
		LockFile:     DefaultLockFilePath,
		Mendeley: MendeleyConfig{
			RedirectURI: DefaultRedirectURI,
		},
		Path: DefaultConfigPath,
	}
}

// Validate checks everything a sync run needs and resolves local paths.
// Folder names may be equal since they live in different services.
func (c *Config) Validate() error {
	if c.SourceFolder == "" {
		return ErrNoSourceFolder
	}
	if c.MirrorFolder == "" {
		return ErrNoMirrorFolder
	}
	if c.RmapiPath == "" {
		return ErrNoRmapiPath
	}

	if err := c.validateMendeley(); err != nil {
		return err
	}
	if c.Mendeley.Token == "" {
		return ErrNoToken
	}

	return c.resolvePaths()
}

// ValidateLogin checks only what the OAuth login flow needs
func (c *Config) ValidateLogin() error {
	if err := c.validateMendeley(); err != nil {
		return err
	}
	return c.resolvePaths()
}

func (c *Config) validateMendeley() error {
	if c.Mendeley.ClientID == "" {
		return ErrNoClientID
	}
	if c.Mendeley.ClientSecret == "" {
		return ErrNoClientSecret
	}
	if c.Mendeley.RedirectURI == "" {
		c.Mendeley.RedirectURI = DefaultRedirectURI
	}
	if err := utils.ValidateURL(c.Mendeley.RedirectURI); err != nil {
		return fmt.Errorf("config: redirect uri: %w", err)
	}
	return nil
}

func (c *Config) resolvePaths() error {
	paths := []*string{&c.TrashDir, &c.LogFile, &c.LockFile, &c.Path}
	for _, p := range paths {
		if *p == "" {
			continue
		}
		resolved, err := utils.ResolvePath(*p)
		if err != nil {
			return fmt.Errorf("config: resolve %q: %w", *p, err)
		}
		*p = resolved
	}
	return nil
}

// Save writes the config as JSON. The file holds OAuth secrets so it is only
// readable by the owner.
func (c *Config) Save(path string) error {
	if err := utils.EnsureParent(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Load reads a config saved by Save on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Path = path

	return cfg, nil
}
