package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalDirStore mirrors the Drive layout on the local filesystem: a directory
// per case under a base directory. Used for development and tests, where a
// shared Drive is unavailable.
type LocalDirStore struct {
	basePath string
}

// NewLocalDirStore creates a local blob store rooted at basePath, creating
// the directory if needed.
func NewLocalDirStore(basePath string) (*LocalDirStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}
	return &LocalDirStore{basePath: basePath}, nil
}

// EnsureFolder creates the case directory if absent. The folder id is its
// path relative to the base directory, so repeated calls return the same id.
func (s *LocalDirStore) EnsureFolder(ctx context.Context, name, parentID string) (string, error) {
	_ = ctx
	relative := filepath.Join(parentID, filepath.Base(name))
	if err := os.MkdirAll(filepath.Join(s.basePath, relative), 0o755); err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	return relative, nil
}

// Upload writes the photo bytes into the case directory.
func (s *LocalDirStore) Upload(ctx context.Context, folderID, filename string, data []byte, mimeType string) (*UploadedFile, error) {
	_ = ctx
	_ = mimeType

	safeName := filepath.Base(filename)
	relative := filepath.Join(folderID, safeName)
	fullPath := filepath.Join(s.basePath, relative)

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write %q: %w", filename, err)
	}

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		absPath = fullPath
	}

	return &UploadedFile{
		FileID:  relative,
		ViewURL: "file://" + absPath,
	}, nil
}

var _ Store = (*LocalDirStore)(nil)
