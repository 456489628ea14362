// Package blobstore persists uploaded photographs in a hierarchical store:
// one folder per case, one file per photo.
package blobstore

import "context"

// UploadedFile identifies a stored photo and where a human can view it.
type UploadedFile struct {
	FileID  string
	ViewURL string
}

// Store is the blob store gateway. EnsureFolder is idempotent: calling it
// twice with the same name and parent returns the same folder id rather than
// creating a duplicate, so a retried submission reuses the case folder.
type Store interface {
	EnsureFolder(ctx context.Context, name, parentID string) (string, error)
	Upload(ctx context.Context, folderID, filename string, data []byte, mimeType string) (*UploadedFile, error)
}
