package moderation

import (
	"context"
	"errors"
	"testing"
)

// bagPhoto stands in for real upload bytes; the detector fake ignores them.
var bagPhoto = []byte("jpeg bytes of a handbag on a desk")

type stubDetector struct {
	labels []Label
	err    error
}

func (d *stubDetector) DetectModerationLabels(ctx context.Context, imageBytes []byte) ([]Label, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.labels, nil
}

func TestModerateCleanPhotoApproved(t *testing.T) {
	svc := NewService(&stubDetector{}, 70)

	decision, err := svc.ModerateImageBytes(context.Background(), bagPhoto)
	if err != nil {
		t.Fatalf("ModerateImageBytes returned error: %v", err)
	}
	if decision.Status != StatusApproved {
		t.Errorf("Status = %s, want APPROVED", decision.Status)
	}
	if decision.MaxConfidence != 0 {
		t.Errorf("MaxConfidence = %v, want 0 for a label-free photo", decision.MaxConfidence)
	}
}

func TestModerateLowConfidenceLabelsApproved(t *testing.T) {
	// A desk full of leather goods occasionally trips weak labels; those must
	// not block the inspection flow.
	svc := NewService(&stubDetector{labels: []Label{
		{Name: "Suggestive", Confidence: 31.5},
		{Name: "Tobacco", ParentName: "Drugs & Tobacco", Confidence: 12.0},
	}}, 70)

	decision, err := svc.ModerateImageBytes(context.Background(), bagPhoto)
	if err != nil {
		t.Fatalf("ModerateImageBytes returned error: %v", err)
	}
	if decision.Status != StatusApproved {
		t.Errorf("Status = %s, want APPROVED", decision.Status)
	}
	if decision.MaxConfidence != 31.5 {
		t.Errorf("MaxConfidence = %v, want 31.5", decision.MaxConfidence)
	}
	if len(decision.Labels) != 2 {
		t.Errorf("Decision should carry the detector labels, got %d", len(decision.Labels))
	}
}

func TestModerateRejectsAtThreshold(t *testing.T) {
	// The threshold is inclusive: a label exactly at it rejects.
	svc := NewService(&stubDetector{labels: []Label{
		{Name: "Violence", Confidence: 70.0},
	}}, 70)

	decision, err := svc.ModerateImageBytes(context.Background(), bagPhoto)
	if err != nil {
		t.Fatalf("ModerateImageBytes returned error: %v", err)
	}
	if decision.Status != StatusRejected {
		t.Errorf("Status = %s, want REJECTED", decision.Status)
	}
}

func TestModerateCustomThreshold(t *testing.T) {
	// A deployment that raised the bar to 85 tolerates a 78-confidence label.
	labels := []Label{{Name: "Explicit Nudity", Confidence: 78.0}}

	strict := NewService(&stubDetector{labels: labels}, 70)
	relaxed := NewService(&stubDetector{labels: labels}, 85)

	decision, err := strict.ModerateImageBytes(context.Background(), bagPhoto)
	if err != nil {
		t.Fatalf("ModerateImageBytes returned error: %v", err)
	}
	if decision.Status != StatusRejected {
		t.Errorf("Threshold 70: Status = %s, want REJECTED", decision.Status)
	}

	decision, err = relaxed.ModerateImageBytes(context.Background(), bagPhoto)
	if err != nil {
		t.Fatalf("ModerateImageBytes returned error: %v", err)
	}
	if decision.Status != StatusApproved {
		t.Errorf("Threshold 85: Status = %s, want APPROVED", decision.Status)
	}
}

func TestModerateZeroThresholdUsesDefault(t *testing.T) {
	// Config leaves the confidence unset; the service falls back to 70.
	svc := NewService(&stubDetector{labels: []Label{
		{Name: "Suggestive", Confidence: 69.9},
	}}, 0)

	decision, err := svc.ModerateImageBytes(context.Background(), bagPhoto)
	if err != nil {
		t.Fatalf("ModerateImageBytes returned error: %v", err)
	}
	if decision.Status != StatusApproved {
		t.Errorf("Status = %s, want APPROVED just under the default threshold", decision.Status)
	}
}

func TestModerateDetectorError(t *testing.T) {
	svc := NewService(&stubDetector{err: errors.New("rekognition unavailable")}, 70)

	if _, err := svc.ModerateImageBytes(context.Background(), bagPhoto); err == nil {
		t.Fatal("Expected the detector error to propagate")
	}
}
