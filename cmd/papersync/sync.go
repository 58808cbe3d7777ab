package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gofrs/flock"
	"github.com/openmined/papersync/internal/config"
	"github.com/openmined/papersync/internal/docsync"
	"github.com/openmined/papersync/internal/mendeley"
	"github.com/openmined/papersync/internal/rmapi"
	"github.com/openmined/papersync/internal/utils"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

var ErrAlreadyRunning = errors.New("another papersync run is in progress")

// folders bundles both sides of a run plus the token they were built with
type folders struct {
	source   docsync.Folder
	mirror   docsync.Folder
	token    *oauth2.Token
	tokenSrc oauth2.TokenSource
}

func runSync(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()

	unlock, err := acquireLock(cfg.LockFile)
	if err != nil {
		return err
	}
	defer unlock()

	f, err := buildFolders(ctx, cfg)
	if err != nil {
		return err
	}
	defer persistToken(cfg, f)

	opts := []docsync.Option{docsync.WithDryRun(cfg.DryRun)}
	if !cfg.NoTrash && cfg.TrashDir != "" {
		opts = append(opts, docsync.WithTrash(docsync.NewTrash(afero.NewOsFs(), cfg.TrashDir)))
	}

	reconciler := docsync.NewReconciler(f.source, f.mirror, opts...)
	report, err := reconciler.Run(ctx)
	if report != nil {
		fmt.Fprint(cmd.OutOrStdout(), renderReport(report))
	}
	if err != nil {
		return err
	}
	return report.Err()
}

func buildFolders(ctx context.Context, cfg *config.Config) (*folders, error) {
	tok, err := mendeley.DecodeToken(cfg.Mendeley.Token)
	if err != nil {
		return nil, err
	}

	auth := authConfig(cfg)
	ts := auth.TokenSource(ctx, tok)

	client, err := mendeley.NewClient(&mendeley.ClientConfig{
		BaseURL:     auth.BaseURL,
		TokenSource: ts,
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("folders",
		"source", cfg.SourceFolder,
		"mirror", cfg.MirrorFolder,
		"rmapi", cfg.RmapiPath,
		"clientID", cfg.Mendeley.ClientID,
		"token", utils.MaskSecret(tok.AccessToken),
	)

	return &folders{
		source:   mendeley.NewFolder(client, cfg.SourceFolder),
		mirror:   rmapi.NewFolder(rmapi.NewExecRunner(cfg.RmapiPath), afero.NewOsFs(), cfg.MirrorFolder, ""),
		token:    tok,
		tokenSrc: ts,
	}, nil
}

func authConfig(cfg *config.Config) *mendeley.AuthConfig {
	return &mendeley.AuthConfig{
		ClientID:     cfg.Mendeley.ClientID,
		ClientSecret: cfg.Mendeley.ClientSecret,
		RedirectURI:  cfg.Mendeley.RedirectURI,
	}
}

// acquireLock makes sure only one run touches the two folders at a time
func acquireLock(path string) (func(), error) {
	if err := utils.EnsureParent(path); err != nil {
		return nil, fmt.Errorf("lock: %w", err)
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, path)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("lock release", "path", path, "error", err)
		}
	}, nil
}

// persistToken writes a refreshed token back into an existing config file so
// the next run does not start from an expired access token.
func persistToken(cfg *config.Config, f *folders) {
	latest, err := f.tokenSrc.Token()
	if err != nil || latest.AccessToken == f.token.AccessToken {
		return
	}

	if _, err := os.Stat(cfg.Path); err != nil {
		slog.Debug("mendeley token refreshed, no config file to update", "path", cfg.Path)
		return
	}

	stored, err := config.Load(cfg.Path)
	if err != nil {
		slog.Warn("mendeley token refresh not saved", "error", err)
		return
	}

	encoded, err := mendeley.EncodeToken(latest)
	if err != nil {
		slog.Warn("mendeley token refresh not saved", "error", err)
		return
	}

	stored.Mendeley.Token = encoded
	if err := stored.Save(cfg.Path); err != nil {
		slog.Warn("mendeley token refresh not saved", "error", err)
		return
	}
	slog.Info("mendeley token refreshed", "path", cfg.Path, "token", utils.MaskSecret(latest.AccessToken))
}
