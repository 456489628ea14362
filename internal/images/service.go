package images

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shibalabs/inspection-console/internal/moderation"
)

var (
	// ErrPendingUploadNotFound is returned when an upload token is missing/expired.
	ErrPendingUploadNotFound = errors.New("pending upload not found")
	// ErrUploadNotApproved is returned when trying to claim a non-approved upload token.
	ErrUploadNotApproved = errors.New("upload is not approved")
)

// PendingUpload is a screened photo that has not yet been attached to a case
// entry. Uploads are held under a token so the operator can revise the entry's
// judgment fields without re-sending the bytes.
type PendingUpload struct {
	ID        string
	DraftID   string
	Bytes     []byte
	MimeType  string
	FileName  string
	Decision  moderation.Decision
	ExpiresAt time.Time
}

// PendingStore tracks screened uploads that still await attachment.
type PendingStore interface {
	Put(upload PendingUpload) string
	Get(draftID, uploadID string) (*PendingUpload, bool)
	Delete(uploadID string)
}

// Service orchestrates the screening + pending-token flow for photo uploads.
type Service struct {
	moderator moderation.Moderator
	pending   PendingStore
	timeout   time.Duration
}

// NewService creates a new upload intake service. A nil moderator disables
// content screening; every upload is then accepted as approved.
func NewService(moderator moderation.Moderator, pending PendingStore, timeout time.Duration) *Service {
	return &Service{
		moderator: moderator,
		pending:   pending,
		timeout:   timeout,
	}
}

// ModerateUpload screens the photo bytes and, if approved, stores a pending
// upload token scoped to the requesting draft.
func (s *Service) ModerateUpload(ctx context.Context, draftID string, data []byte, mimeType, fileName string) (*moderation.Decision, string, error) {
	decision := s.moderate(ctx, data)
	if decision.Status != moderation.StatusApproved {
		return decision, "", nil
	}
	if s.pending == nil {
		return &moderation.Decision{
			Status: moderation.StatusPendingReview,
			Reason: "Unable to verify right now",
		}, "", nil
	}

	uploadID := s.pending.Put(PendingUpload{
		DraftID:  draftID,
		Bytes:    data,
		MimeType: mimeType,
		FileName: fileName,
		Decision: *decision,
	})
	if strings.TrimSpace(uploadID) == "" {
		return &moderation.Decision{
			Status: moderation.StatusPendingReview,
			Reason: "Unable to verify right now",
		}, "", nil
	}

	return decision, uploadID, nil
}

// Claim fetches and consumes a pending upload so it can be attached to a case
// entry. The token is scoped to the draft that uploaded it.
func (s *Service) Claim(draftID, uploadID string) (*PendingUpload, error) {
	if s.pending == nil {
		return nil, ErrPendingUploadNotFound
	}

	upload, ok := s.pending.Get(draftID, uploadID)
	if !ok {
		return nil, ErrPendingUploadNotFound
	}
	if upload.Decision.Status != moderation.StatusApproved {
		return nil, ErrUploadNotApproved
	}

	s.pending.Delete(uploadID)
	return upload, nil
}

func (s *Service) moderate(ctx context.Context, data []byte) *moderation.Decision {
	if s.moderator == nil {
		return &moderation.Decision{
			Status: moderation.StatusApproved,
			Reason: "Screening disabled",
		}
	}

	timeout := s.timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	moderationCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	decision, err := s.moderator.ModerateImageBytes(moderationCtx, data)
	if err != nil || decision == nil {
		return &moderation.Decision{
			Status: moderation.StatusPendingReview,
			Reason: "Unable to verify right now",
		}
	}

	return decision
}
