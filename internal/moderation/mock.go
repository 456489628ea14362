package moderation

import "context"

// MockModerator is a simple mock implementation for tests and for deployments
// that run without AWS credentials.
type MockModerator struct {
	Decision *Decision
	Err      error
}

// ModerateImageBytes returns the configured decision/error.
func (m *MockModerator) ModerateImageBytes(ctx context.Context, imageBytes []byte) (*Decision, error) {
	_ = ctx
	_ = imageBytes
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Decision != nil {
		return m.Decision, nil
	}
	return &Decision{
		Status: StatusApproved,
		Reason: "Approved",
	}, nil
}
