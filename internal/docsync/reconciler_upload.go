package docsync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
)

func (r *Reconciler) uploadToMirror(ctx context.Context, name string) error {
	content, err := r.source.Download(ctx, name)
	if err != nil {
		return fmt.Errorf("download from %s: %w", r.source.Name(), err)
	}

	if err := r.mirror.Upload(ctx, name, content); err != nil {
		return fmt.Errorf("upload to %s: %w", r.mirror.Name(), err)
	}

	slog.Info("sync", "op", PhaseUpload, "status", "Completed", "name", name, "size", humanize.Bytes(uint64(len(content))))
	return nil
}
