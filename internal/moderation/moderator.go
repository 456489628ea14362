package moderation

import "context"

// Status is the moderation outcome for one uploaded photo.
type Status string

const (
	StatusApproved      Status = "APPROVED"
	StatusRejected      Status = "REJECTED"
	StatusPendingReview Status = "PENDING_REVIEW"
)

// Label captures a single Rekognition moderation label.
type Label struct {
	Name       string  `json:"name"`
	ParentName string  `json:"parentName,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Decision is the server-side screening decision for an uploaded photo.
type Decision struct {
	Status        Status  `json:"status"`
	Reason        string  `json:"reason,omitempty"`
	Labels        []Label `json:"labels,omitempty"`
	MaxConfidence float64 `json:"maxConfidence,omitempty"`
}

// Moderator screens raw photo bytes before they can be attached to a case.
type Moderator interface {
	ModerateImageBytes(ctx context.Context, imageBytes []byte) (*Decision, error)
}

// Detector is the low-level provider abstraction that fetches moderation labels.
type Detector interface {
	DetectModerationLabels(ctx context.Context, imageBytes []byte) ([]Label, error)
}

// Service evaluates moderation labels into APPROVED/REJECTED decisions.
type Service struct {
	detector         Detector
	rejectConfidence float64
}

// NewService creates a moderation service using the configured detector.
func NewService(detector Detector, rejectConfidence float64) *Service {
	if rejectConfidence <= 0 {
		rejectConfidence = 70
	}
	return &Service{
		detector:         detector,
		rejectConfidence: rejectConfidence,
	}
}

// ModerateImageBytes moderates image bytes and returns an APPROVED/REJECTED decision.
func (s *Service) ModerateImageBytes(ctx context.Context, imageBytes []byte) (*Decision, error) {
	labels, err := s.detector.DetectModerationLabels(ctx, imageBytes)
	if err != nil {
		return nil, err
	}

	decision := &Decision{
		Status: StatusApproved,
		Reason: "Approved",
		Labels: labels,
	}

	maxConfidence := 0.0
	shouldReject := false
	for _, label := range labels {
		if label.Confidence > maxConfidence {
			maxConfidence = label.Confidence
		}
		if label.Confidence >= s.rejectConfidence {
			shouldReject = true
		}
	}
	decision.MaxConfidence = maxConfidence

	if shouldReject {
		decision.Status = StatusRejected
		decision.Reason = "Not allowed"
	}

	return decision, nil
}
