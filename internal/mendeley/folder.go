package mendeley

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openmined/papersync/internal/docsync"
)

const nameSeparator = "---"

// titleReplacer drops periods and turns path separators into underscores,
// since the name doubles as an rmapi path and a staging file name.
var titleReplacer = strings.NewReplacer(".", "", "/", "_")

// FileName is the name a document is known by on both sides of a sync:
// the cleaned title, then the document id.
func FileName(title, documentID string) string {
	return titleReplacer.Replace(title) + nameSeparator + documentID
}

// ParseFileName recovers the document id from a FileName
func ParseFileName(name string) (title, documentID string, err error) {
	idx := strings.LastIndex(name, nameSeparator)
	if idx < 0 || idx+len(nameSeparator) == len(name) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name[:idx], name[idx+len(nameSeparator):], nil
}

// Folder exposes one Mendeley folder as a docsync.Folder. A document's
// content is its first attached file.
type Folder struct {
	client   *Client
	name     string
	folderID string
}

func NewFolder(client *Client, name string) *Folder {
	return &Folder{
		client: client,
		name:   name,
	}
}

func (f *Folder) Name() string {
	return "mendeley:" + f.name
}

func (f *Folder) resolve(ctx context.Context) (string, error) {
	if f.folderID != "" {
		return f.folderID, nil
	}

	folder, err := f.client.FindFolder(ctx, f.name)
	if err != nil {
		return "", err
	}
	f.folderID = folder.ID
	return f.folderID, nil
}

func (f *Folder) List(ctx context.Context) ([]docsync.FileRecord, error) {
	folderID, err := f.resolve(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := f.client.FolderDocuments(ctx, folderID)
	if err != nil {
		return nil, err
	}

	records := make([]docsync.FileRecord, 0, len(ids))
	for _, id := range ids {
		doc, err := f.client.Document(ctx, id)
		if err != nil {
			return nil, err
		}
		records = append(records, docsync.FileRecord{
			Name:       FileName(doc.Title, doc.ID),
			ModifiedAt: doc.LastModified,
		})
	}
	return records, nil
}

// Download returns the first attached file, or docsync.ErrNoContent when the
// document has none.
func (f *Folder) Download(ctx context.Context, name string) ([]byte, error) {
	_, docID, err := ParseFileName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", docsync.ErrNotFound, err)
	}

	files, err := f.client.Files(ctx, docID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files attached to %q", docsync.ErrNoContent, name)
	}

	return f.client.DownloadFile(ctx, files[0].ID)
}

// Upload replaces every file attached to the document with content. The new
// file is attached before the old ones are removed so a failed upload never
// leaves the document empty. Documents can't be created from a name alone.
func (f *Folder) Upload(ctx context.Context, name string, content []byte) error {
	_, docID, err := ParseFileName(name)
	if err != nil {
		return fmt.Errorf("%w: %w", docsync.ErrNotFound, err)
	}

	existing, err := f.client.Files(ctx, docID)
	if err != nil {
		return err
	}

	attached, err := f.client.AttachFile(ctx, docID, name+".pdf", content)
	if err != nil {
		return err
	}

	var errs []error
	for _, file := range existing {
		if file.ID == attached.ID {
			continue
		}
		if err := f.client.DeleteFile(ctx, file.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		slog.Debug("mendeley removed old file", "document", docID, "file", file.FileName)
	}
	return errors.Join(errs...)
}

// Delete takes the document out of the folder; the library keeps it
func (f *Folder) Delete(ctx context.Context, name string) error {
	_, docID, err := ParseFileName(name)
	if err != nil {
		return fmt.Errorf("%w: %w", docsync.ErrNotFound, err)
	}

	folderID, err := f.resolve(ctx)
	if err != nil {
		return err
	}
	return f.client.RemoveFromFolder(ctx, folderID, docID)
}

var _ docsync.Folder = (*Folder)(nil)
