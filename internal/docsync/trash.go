package docsync

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Trash keeps the last mirror copy of files removed from the mirror so that
// annotations that never made it back to the source can be recovered by hand.
type Trash struct {
	fs  afero.Fs
	dir string
}

func NewTrash(fs afero.Fs, dir string) *Trash {
	return &Trash{fs: fs, dir: dir}
}

func (t *Trash) Dir() string {
	return t.dir
}

// Save writes content as <dir>/<name>.pdf and returns the path. An existing
// trashed copy with the same name is never overwritten.
func (t *Trash) Save(name string, content []byte) (string, error) {
	if err := t.fs.MkdirAll(t.dir, 0o755); err != nil {
		return "", fmt.Errorf("trash dir: %w", err)
	}

	name = strings.ReplaceAll(name, "/", "_")
	path := filepath.Join(t.dir, name+".pdf")
	exists, err := afero.Exists(t.fs, path)
	if err != nil {
		return "", fmt.Errorf("trash stat %q: %w", path, err)
	}
	if exists {
		path = filepath.Join(t.dir, fmt.Sprintf("%s.%s.pdf", name, uuid.NewString()[:8]))
	}

	if err := afero.WriteFile(t.fs, path, content, 0o644); err != nil {
		return "", fmt.Errorf("trash write %q: %w", path, err)
	}
	return path, nil
}
