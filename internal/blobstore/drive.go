package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// DriveStore stores photos in Google Drive under a shared root folder.
type DriveStore struct {
	service *drive.Service
}

// NewDriveStore creates a Drive-backed blob store.
func NewDriveStore(ctx context.Context, opts ...option.ClientOption) (*DriveStore, error) {
	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &DriveStore{service: service}, nil
}

// EnsureFolder finds a folder by name under the parent and returns its id,
// creating it only when the lookup comes back empty.
func (s *DriveStore) EnsureFolder(ctx context.Context, name, parentID string) (string, error) {
	query := fmt.Sprintf(
		"mimeType='%s' and name='%s' and '%s' in parents and trashed=false",
		folderMimeType, escapeQueryValue(name), escapeQueryValue(parentID),
	)

	list, err := s.service.Files.List().
		Q(query).
		Fields("files(id,name)").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("search folder %q: %w", name, err)
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	folder, err := s.service.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{parentID},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}

	return folder.Id, nil
}

// Upload stores one photo in the given folder and returns its file id and
// web view link.
func (s *DriveStore) Upload(ctx context.Context, folderID, filename string, data []byte, mimeType string) (*UploadedFile, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	file, err := s.service.Files.Create(&drive.File{
		Name:    filename,
		Parents: []string{folderID},
	}).
		Media(bytes.NewReader(data), googleapi.ContentType(mimeType)).
		Fields("id, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("upload %q: %w", filename, err)
	}

	return &UploadedFile{
		FileID:  file.Id,
		ViewURL: file.WebViewLink,
	}, nil
}

// escapeQueryValue escapes a value interpolated into a Drive query string.
func escapeQueryValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}

var _ Store = (*DriveStore)(nil)
