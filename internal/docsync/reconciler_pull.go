package docsync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
)

// pullFromMirror overwrites the source copy with the mirror's. The mirror
// always wins here, whatever the timestamps or contents say.
func (r *Reconciler) pullFromMirror(ctx context.Context, name string) error {
	content, err := r.mirror.Download(ctx, name)
	if err != nil {
		return fmt.Errorf("download from %s: %w", r.mirror.Name(), err)
	}

	if err := r.source.Upload(ctx, name, content); err != nil {
		return fmt.Errorf("upload to %s: %w", r.source.Name(), err)
	}

	slog.Info("sync", "op", PhasePull, "status", "Completed", "name", name, "size", humanize.Bytes(uint64(len(content))))
	return nil
}
