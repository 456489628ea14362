package submit

import (
	"fmt"

	"github.com/shibalabs/inspection-console/internal/models"
)

// Step names the submission phase in which an error occurred. Surfaced to the
// operator so a failed attempt can be retried with full context.
type Step string

const (
	StepValidating      Step = "validating"
	StepProvisioning    Step = "provisioning"
	StepUploadingImages Step = "uploading_images"
	StepAppendingRows   Step = "appending_rows"
)

// ValidationError reports that the case failed validation. Nothing was
// persisted; the operator fixes the listed fields and submits again.
type ValidationError struct {
	Violations []models.Violation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("case failed validation with %d violation(s)", len(e.Violations))
}

// StepError reports a remote-call failure during submission. ImageIndex is
// the zero-based photo slot for per-photo failures, -1 otherwise. The attempt
// is over; nothing already written is rolled back, and the operator retries
// from the draft.
type StepError struct {
	Step       Step
	ImageIndex int
	Err        error
}

func (e *StepError) Error() string {
	if e.ImageIndex >= 0 {
		return fmt.Sprintf("submission failed at %s (photo %d): %v", e.Step, e.ImageIndex+1, e.Err)
	}
	return fmt.Sprintf("submission failed at %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
