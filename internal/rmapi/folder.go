package rmapi

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/openmined/papersync/internal/docsync"
	"github.com/spf13/afero"
)

var (
	ErrFolderNotFound = errors.New("rmapi: folder not found")

	errAlreadyExists = errors.New("rmapi: entry already exists")
)

const (
	entryFile = "[f]"
	entryDir  = "[d]"

	noAnnotationsMarker = "failed to generate annotations"
	alreadyExistsMarker = "already exists"
)

// Markers are matched against lowercased stderr after every path and name
// the command was given has been cut out.
var (
	authMarkers = []string{
		"401 unauthorized",
		"status code: 401",
		"failed to refresh token",
		"invalid token",
		"failed to authenticate",
		"token expired",
	}
	notFoundMarkers = []string{"doesn't exist", "does not exist", "entry not found", "file not found"}
)

// Entry is one line of `rmapi ls`
type Entry struct {
	Name  string
	IsDir bool
}

// Folder is a top-level reMarkable cloud folder accessed through rmapi
type Folder struct {
	runner  Runner
	fs      afero.Fs
	folder  string
	workDir string
}

// NewFolder returns a Folder for the named top-level folder. Downloads and
// uploads are staged in temp directories on fs under workDir (os.TempDir if
// empty). rmapi itself reads and writes the staging dirs, so fs must be the
// OS filesystem outside of tests.
func NewFolder(runner Runner, fs afero.Fs, folder string, workDir string) *Folder {
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &Folder{
		runner:  runner,
		fs:      fs,
		folder:  folder,
		workDir: workDir,
	}
}

func (f *Folder) Name() string {
	return "remarkable:" + f.folder
}

// Entries lists the entries under parent; an empty parent lists the root
func (f *Folder) Entries(ctx context.Context, parent string) ([]Entry, error) {
	args := []string{"ls"}
	if parent != "" {
		args = append(args, parent)
	}

	res, err := f.run(ctx, "", args...)
	if err != nil {
		return nil, err
	}
	return parseEntries(res.Stdout), nil
}

// EnsureExists checks that the folder exists at the top level. It is never
// created here.
func (f *Folder) EnsureExists(ctx context.Context) error {
	entries, err := f.Entries(ctx, "")
	if err != nil {
		return err
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir {
			dirs = append(dirs, e.Name)
		}
	}
	if !slices.Contains(dirs, f.folder) {
		return fmt.Errorf("%w: %q (top-level folders: %s)", ErrFolderNotFound, f.folder, strings.Join(dirs, ", "))
	}
	return nil
}

func (f *Folder) List(ctx context.Context) ([]docsync.FileRecord, error) {
	if err := f.EnsureExists(ctx); err != nil {
		return nil, err
	}

	entries, err := f.Entries(ctx, f.folder)
	if err != nil {
		return nil, err
	}

	records := make([]docsync.FileRecord, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		records = append(records, docsync.FileRecord{Name: e.Name})
	}
	return records, nil
}

// Download exports the document with its annotations rendered in
func (f *Folder) Download(ctx context.Context, name string) ([]byte, error) {
	dir, err := f.stagingDir("papersync-geta-")
	if err != nil {
		return nil, fmt.Errorf("rmapi: stage download: %w", err)
	}
	defer f.fs.RemoveAll(dir)

	if _, err := f.run(ctx, dir, "geta", "-a", f.remotePath(name)); err != nil {
		return nil, err
	}

	// geta leaves <name>-annotations.pdf plus the raw <name>.zip in the cwd
	exported := filepath.Join(dir, name+"-annotations.pdf")
	content, err := afero.ReadFile(f.fs, exported)
	if err != nil {
		return nil, fmt.Errorf("rmapi: %s was not downloaded: %w", f.remotePath(name), err)
	}
	return content, nil
}

// Upload puts content as <name>.pdf. rmapi refuses to overwrite, so an
// existing document is removed first.
func (f *Folder) Upload(ctx context.Context, name string, content []byte) error {
	dir, err := f.stagingDir("papersync-put-")
	if err != nil {
		return fmt.Errorf("rmapi: stage upload: %w", err)
	}
	defer f.fs.RemoveAll(dir)

	local := filepath.Join(dir, name+".pdf")
	if err := afero.WriteFile(f.fs, local, content, 0o644); err != nil {
		return fmt.Errorf("rmapi: stage upload: %w", err)
	}

	_, err = f.run(ctx, dir, "put", local, f.folder)
	if !errors.Is(err, errAlreadyExists) {
		return err
	}

	slog.Debug("rmapi replace existing", "name", name)
	if err := f.Delete(ctx, name); err != nil {
		return err
	}
	_, err = f.run(ctx, dir, "put", local, f.folder)
	return err
}

func (f *Folder) Delete(ctx context.Context, name string) error {
	_, err := f.run(ctx, "", "rm", f.remotePath(name))
	return err
}

func (f *Folder) stagingDir(prefix string) (string, error) {
	if err := f.fs.MkdirAll(f.workDir, 0o755); err != nil {
		return "", err
	}
	return afero.TempDir(f.fs, f.workDir, prefix)
}

func (f *Folder) remotePath(name string) string {
	return path.Join(f.folder, name)
}

func (f *Folder) run(ctx context.Context, dir string, args ...string) (*Result, error) {
	res, err := f.runner.Run(ctx, dir, args...)
	if err == nil {
		return res, nil
	}
	return res, classify(res, err, operands(args)...)
}

// operands returns the paths a command was given, in every form rmapi may
// echo them back: as passed, as a base name, and without the .pdf suffix.
func operands(args []string) []string {
	var out []string
	for _, arg := range args[min(1, len(args)):] {
		if arg == "" || strings.HasPrefix(arg, "-") {
			continue
		}
		base := filepath.Base(arg)
		out = append(out, arg, base, strings.TrimSuffix(base, ".pdf"))
	}
	return out
}

// classify maps rmapi's stderr onto the docsync error taxonomy. Document
// titles are user data, so the operands are removed before any marker is
// looked up.
func classify(res *Result, err error, operands ...string) error {
	if res == nil {
		return err
	}

	msg := errorText(res.Stderr, operands)
	switch {
	case strings.Contains(msg, noAnnotationsMarker):
		return fmt.Errorf("%w: %w", docsync.ErrNoAnnotations, err)
	case strings.Contains(msg, alreadyExistsMarker):
		return fmt.Errorf("%w: %w", errAlreadyExists, err)
	case containsAny(msg, notFoundMarkers):
		return fmt.Errorf("%w: %w", docsync.ErrNotFound, err)
	case containsAny(msg, authMarkers):
		return fmt.Errorf("%w: %w", docsync.ErrAuth, err)
	}
	return err
}

// errorText lowercases stderr and blanks out every operand, longest first
// so that a full path goes before its base name.
func errorText(stderr string, operands []string) string {
	msg := strings.ToLower(stderr)

	cut := make([]string, 0, len(operands))
	for _, op := range operands {
		if op != "" {
			cut = append(cut, strings.ToLower(op))
		}
	}
	sort.Slice(cut, func(i, j int) bool { return len(cut[i]) > len(cut[j]) })

	for _, op := range cut {
		msg = strings.ReplaceAll(msg, op, " ")
	}
	return msg
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// parseEntries reads `rmapi ls` output. Lines look like "[f]\tname" or
// "[d]\tname"; anything else is ignored.
func parseEntries(out string) []Entry {
	var entries []Entry
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		kind, name, ok := strings.Cut(scanner.Text(), "\t")
		if !ok || name == "" {
			continue
		}
		switch strings.TrimSpace(kind) {
		case entryFile:
			entries = append(entries, Entry{Name: name})
		case entryDir:
			entries = append(entries, Entry{Name: name, IsDir: true})
		}
	}
	return entries
}

var _ docsync.Folder = (*Folder)(nil)
