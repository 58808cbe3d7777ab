package docsync

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("docsync: file not found")
	ErrNoContent     = errors.New("docsync: file has no content")
	ErrNoAnnotations = errors.New("docsync: no annotations to export")
	ErrAuth          = errors.New("docsync: authentication failed")
)

// Folder is the capability a cloud folder must provide to take part in a
// sync run. Implementations are expected to handle their own timeouts and
// retries.
type Folder interface {
	// Name is a human readable label used in logs and reports
	Name() string

	// List returns the files currently in the folder
	List(ctx context.Context) ([]FileRecord, error)

	// Download fetches the current content of a file. Mirror implementations
	// return the copy with annotations merged in.
	Download(ctx context.Context, name string) ([]byte, error)

	// Upload creates the file or overwrites an existing file of the same name
	Upload(ctx context.Context, name string, content []byte) error

	// Delete removes the file
	Delete(ctx context.Context, name string) error
}
