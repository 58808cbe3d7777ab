package mendeley

import (
	"context"
	"fmt"
	"strings"

	"github.com/imroc/req/v3"
)

const (
	v1Folders         = "/folders"
	v1FolderDocuments = "/folders/{id}/documents"
	v1FolderDocument  = "/folders/{id}/documents/{document_id}"
)

// Folders lists every folder in the library, flattened
func (c *Client) Folders(ctx context.Context) ([]FolderInfo, error) {
	var folders []FolderInfo
	err := c.getPaged(ctx, v1Folders, mediaTypeFolder, "list folders", func(resp *req.Response) error {
		var page []FolderInfo
		if err := resp.Into(&page); err != nil {
			return err
		}
		folders = append(folders, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return folders, nil
}

// FindFolder returns the folder with the given name, preferring a top-level
// one when several folders share the name.
func (c *Client) FindFolder(ctx context.Context, name string) (*FolderInfo, error) {
	folders, err := c.Folders(ctx)
	if err != nil {
		return nil, err
	}

	var match *FolderInfo
	for i := range folders {
		f := &folders[i]
		if f.Name != name {
			continue
		}
		if f.IsTopLevel() {
			return f, nil
		}
		if match == nil {
			match = f
		}
	}

	if match == nil {
		names := make([]string, 0, len(folders))
		for _, f := range folders {
			names = append(names, f.Name)
		}
		return nil, fmt.Errorf("%w: %q (folders: %s)", ErrFolderNotFound, name, strings.Join(names, ", "))
	}
	return match, nil
}

// FolderDocuments lists the ids of the documents in a folder
func (c *Client) FolderDocuments(ctx context.Context, folderID string) ([]string, error) {
	var ids []string
	path := strings.Replace(v1FolderDocuments, "{id}", folderID, 1)
	err := c.getPaged(ctx, path, mediaTypeDocument, "list folder documents", func(resp *req.Response) error {
		var page []folderDocument
		if err := resp.Into(&page); err != nil {
			return err
		}
		for _, d := range page {
			ids = append(ids, d.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// RemoveFromFolder takes a document out of a folder. The document stays in
// the library.
func (c *Client) RemoveFromFolder(ctx context.Context, folderID, documentID string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", folderID).
		SetPathParam("document_id", documentID).
		Delete(v1FolderDocument)

	return handleAPIError(resp, err, "remove from folder")
}
