package driven

import "context"

// Folder is a child folder of the vault root in the document source.
type Folder struct {
	ID   string
	Name string
}

// File is a file entry within a source folder.
type File struct {
	ID       string
	Name     string
	MIMEType string
	Size     int64
}

// DocumentSource fetches named text blobs from an external hierarchical
// document store, grouped by folder. Implementations are stateless; all
// calls are bounded by the caller's context.
//
// Implementations may include:
//   - Google Drive (service-account access)
//   - a local directory tree (tests)
type DocumentSource interface {
	// ListFolders returns the immediate child folders of parentID.
	ListFolders(ctx context.Context, parentID string) ([]Folder, error)

	// ListFiles returns the files directly inside folderID. Subfolders
	// are returned with their folder MIME type and are not descended into.
	ListFiles(ctx context.Context, folderID string) ([]File, error)

	// Download fetches the raw bytes of a regular file.
	Download(ctx context.Context, fileID string) ([]byte, error)

	// ExportText exports a native rich document (e.g. a Google Doc) as
	// plain text.
	ExportText(ctx context.Context, fileID string) ([]byte, error)
}
