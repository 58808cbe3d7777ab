package docsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Reconciler converges the mirror's name set to the source's and pulls the
// mirror's content of shared files back into the source. It issues one
// operation at a time: deletes first, then uploads, then pulls.
type Reconciler struct {
	source Folder
	mirror Folder
	trash  *Trash
	dryRun bool
}

type Option func(*Reconciler)

// WithTrash saves the mirror's copy of every file before it is deleted
func WithTrash(trash *Trash) Option {
	return func(r *Reconciler) {
		r.trash = trash
	}
}

// WithDryRun computes and reports the plan without any writes
func WithDryRun(dryRun bool) Option {
	return func(r *Reconciler) {
		r.dryRun = dryRun
	}
}

func NewReconciler(source, mirror Folder, opts ...Option) *Reconciler {
	r := &Reconciler{
		source: source,
		mirror: mirror,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Snapshot lists both folders exactly once. Any error here is fatal.
func (r *Reconciler) Snapshot(ctx context.Context) (source *Snapshot, mirror *Snapshot, err error) {
	source, err = r.snapshot(ctx, r.source)
	if err != nil {
		return nil, nil, err
	}

	mirror, err = r.snapshot(ctx, r.mirror)
	if err != nil {
		return nil, nil, err
	}

	return source, mirror, nil
}

func (r *Reconciler) snapshot(ctx context.Context, folder Folder) (*Snapshot, error) {
	records, err := folder.List(ctx)
	if err != nil {
		if errors.Is(err, ErrAuth) {
			return nil, &FatalError{Phase: PhaseAuth, Err: fmt.Errorf("list %s: %w", folder.Name(), err)}
		}
		return nil, &FatalError{Phase: PhaseList, Err: fmt.Errorf("list %s: %w", folder.Name(), err)}
	}

	snap, err := NewSnapshot(folder.Name(), records)
	if err != nil {
		return nil, &FatalError{Phase: PhaseList, Err: err}
	}
	return snap, nil
}

// Plan takes fresh snapshots and returns the diff without acting on it
func (r *Reconciler) Plan(ctx context.Context) (*DiffResult, error) {
	source, mirror, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Diff(source, mirror), nil
}

// Run performs one full sync pass. The returned error is non-nil only when
// the run was aborted (fatal error or cancelation); per-file failures are
// reported through RunReport.Err.
func (r *Reconciler) Run(ctx context.Context) (*RunReport, error) {
	report := newRunReport(r.source.Name(), r.mirror.Name(), r.dryRun)
	defer func() {
		report.Finished = time.Now()
	}()

	source, mirror, err := r.Snapshot(ctx)
	if err != nil {
		return report, err
	}

	diff := Diff(source, mirror)
	report.Diff = diff
	slog.Info("sync plan",
		"source", r.source.Name(),
		"mirror", r.mirror.Name(),
		"sourceFiles", source.Len(),
		"mirrorFiles", mirror.Len(),
		"deletes", len(diff.OnlyInMirror),
		"uploads", len(diff.OnlyInSource),
		"pulls", len(diff.InBoth),
		"dryRun", r.dryRun,
	)

	if r.dryRun {
		return report, nil
	}

	phases := []struct {
		report *PhaseReport
		names  []string
		apply  func(context.Context, string) error
		skipOn []error
	}{
		{report.Delete, diff.OnlyInMirror, r.deleteFromMirror, []error{ErrNotFound}},
		{report.Upload, diff.OnlyInSource, r.uploadToMirror, []error{ErrNoContent}},
		{report.Pull, diff.InBoth, r.pullFromMirror, []error{ErrNoAnnotations}},
	}

	for _, p := range phases {
		if err := r.runPhase(ctx, p.report, p.names, p.apply, p.skipOn); err != nil {
			return report, err
		}
	}

	slog.Info("sync complete",
		"took", time.Since(report.Started),
		"deleted", len(report.Delete.Succeeded),
		"uploaded", len(report.Upload.Succeeded),
		"pulled", len(report.Pull.Succeeded),
		"skipped", len(report.Delete.Skipped)+len(report.Upload.Skipped)+len(report.Pull.Skipped),
		"failed", len(report.Failures()),
	)

	return report, nil
}

func (r *Reconciler) runPhase(ctx context.Context, report *PhaseReport, names []string, apply func(context.Context, string) error, skipOn []error) error {
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		report.attempt(name)
		err := apply(ctx, name)

		switch {
		case err == nil:
			report.succeed(name)

		case errors.Is(err, ErrAuth):
			report.fail(name, err)
			return &FatalError{Phase: PhaseAuth, Err: FileError{Name: name, Err: err}}

		case ctx.Err() != nil:
			report.fail(name, err)
			return ctx.Err()

		case isAny(err, skipOn):
			report.skip(name)
			slog.Warn("sync", "op", report.Phase, "status", "Skipped", "name", name, "reason", err)

		default:
			report.fail(name, err)
			slog.Error("sync", "op", report.Phase, "status", "Failed", "name", name, "error", err)
		}
	}
	return nil
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
