package mendeley

import (
	"context"
	"fmt"
	"mime"
)

const (
	v1Document = "/documents/{id}"
	v1Files    = "/files"
	v1File     = "/files/{id}"
)

func (c *Client) Document(ctx context.Context, id string) (*Document, error) {
	var doc Document
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", mediaTypeDocument).
		SetPathParam("id", id).
		SetSuccessResult(&doc).
		Get(v1Document)

	if err := handleAPIError(resp, err, "get document"); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Files lists the files attached to a document
func (c *Client) Files(ctx context.Context, documentID string) ([]File, error) {
	var files []File
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", mediaTypeFile).
		SetQueryParam("document_id", documentID).
		SetSuccessResult(&files).
		Get(v1Files)

	if err := handleAPIError(resp, err, "list files"); err != nil {
		return nil, err
	}
	return files, nil
}

// DownloadFile fetches the content of an attached file. The API redirects to
// the storage location, which the client follows.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", fileID).
		Get(v1File)

	if err := handleAPIError(resp, err, "download file"); err != nil {
		return nil, err
	}
	return resp.Bytes(), nil
}

func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", fileID).
		Delete(v1File)

	return handleAPIError(resp, err, "delete file")
}

// AttachFile uploads content as a new file of the document
func (c *Client) AttachFile(ctx context.Context, documentID, fileName string, content []byte) (*File, error) {
	var file File
	resp, err := c.client.R().
		SetContext(ctx).
		SetRetryCount(0).
		SetHeader("Accept", mediaTypeFile).
		SetHeader("Content-Type", "application/pdf").
		SetHeader("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName})).
		SetHeader("Link", fmt.Sprintf(`<%s/documents/%s>; rel="document"`, c.baseURL, documentID)).
		SetBodyBytes(content).
		SetSuccessResult(&file).
		Post(v1Files)

	if err := handleAPIError(resp, err, "attach file"); err != nil {
		return nil, err
	}
	return &file, nil
}
