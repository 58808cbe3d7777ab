package docsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
)

func (r *Reconciler) deleteFromMirror(ctx context.Context, name string) error {
	if r.trash != nil {
		if err := r.trashMirrorCopy(ctx, name); err != nil {
			return err
		}
	}

	if err := r.mirror.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete from %s: %w", r.mirror.Name(), err)
	}

	slog.Info("sync", "op", PhaseDelete, "status", "Completed", "name", name)
	return nil
}

// trashMirrorCopy keeps the annotated copy around before it is deleted. A
// copy that can't be saved blocks the delete.
func (r *Reconciler) trashMirrorCopy(ctx context.Context, name string) error {
	content, err := r.mirror.Download(ctx, name)
	if errors.Is(err, ErrNoAnnotations) {
		slog.Debug("sync", "op", PhaseDelete, "name", name, "trash", "nothing to keep")
		return nil
	} else if err != nil {
		return fmt.Errorf("download for trash: %w", err)
	}

	path, err := r.trash.Save(name, content)
	if err != nil {
		return err
	}

	slog.Info("sync", "op", PhaseDelete, "status", "Trashed", "name", name, "path", path, "size", humanize.Bytes(uint64(len(content))))
	return nil
}
