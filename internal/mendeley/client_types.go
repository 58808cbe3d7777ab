package mendeley

import "time"

const (
	mediaTypeFolder   = "application/vnd.mendeley-folder.1+json"
	mediaTypeDocument = "application/vnd.mendeley-document.1+json"
	mediaTypeFile     = "application/vnd.mendeley-file.1+json"
)

// FolderInfo is a folder in the user's library. Mendeley folders are flat
// records linked by ParentID.
type FolderInfo struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	ParentID string    `json:"parent_id,omitempty"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

func (f *FolderInfo) IsTopLevel() bool {
	return f.ParentID == ""
}

type folderDocument struct {
	ID string `json:"id"`
}

type Document struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"last_modified"`
}

// File is a file attached to a document
type File struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	MimeType   string `json:"mime_type"`
	FileName   string `json:"file_name"`
	Size       int64  `json:"size"`
	FileHash   string `json:"filehash"`
}
