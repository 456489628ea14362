package cases

import (
	"fmt"
	"sync"

	"github.com/shibalabs/inspection-console/internal/models"
)

// BuildError reports a structural problem with a draft mutation, such as a
// duplicate image type or an out-of-range slot. Field completeness is not
// checked here; that is the validator's job at submission time, since fields
// are legitimately empty mid-edit.
type BuildError struct {
	Message string
}

func (e *BuildError) Error() string {
	return e.Message
}

func buildErrorf(format string, args ...interface{}) *BuildError {
	return &BuildError{Message: fmt.Sprintf(format, args...)}
}

// Builder accumulates one case draft while the operator fills the form. It
// enforces only structural constraints eagerly: slot bounds, type uniqueness,
// the zipper-pull/IDEAL exclusion, and the offered-rationale restriction.
type Builder struct {
	mu                 sync.Mutex
	draft              models.Case
	aggregateThreshold int
}

// NewBuilder creates an empty draft. The inspector name seed carries the
// previous case's inspector forward when the operator clears the form; it may
// be empty for a fresh session.
func NewBuilder(inspectorSeed string, aggregateThreshold int) *Builder {
	if aggregateThreshold <= 0 {
		aggregateThreshold = models.DefaultAggregateThreshold
	}
	return &Builder{
		draft: models.Case{
			Brand:         models.Brand,
			Item:          models.ItemBag,
			InspectorName: models.NormalizeText(inspectorSeed),
		},
		aggregateThreshold: aggregateThreshold,
	}
}

// SetHeader updates the case header fields.
func (b *Builder) SetHeader(item models.Item, inspectorName, memo string) error {
	if !models.IsValidItem(item) {
		return buildErrorf("unknown item %q", item)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft.Item = item
	b.draft.InspectorName = models.NormalizeText(inspectorName)
	b.draft.Memo = models.NormalizeText(memo)
	return nil
}

// AvailableTypes returns the image types selectable for a slot: the full list
// minus types held by other slots, with the exclusion rule applied. The slot's
// own current type stays selectable so the operator can revise in place.
func (b *Builder) AvailableTypes(slot int) []models.ImageType {
	b.mu.Lock()
	defer b.mu.Unlock()
	return models.AvailableImageTypes(b.typesExcludingLocked(slot))
}

func (b *Builder) typesExcludingLocked(slot int) []models.ImageType {
	types := make([]models.ImageType, 0, len(b.draft.Images))
	for i := range b.draft.Images {
		if i == slot {
			continue
		}
		types = append(types, b.draft.Images[i].Type)
	}
	return types
}

// AddOrReplaceEntry places an entry at a slot, overwriting whatever is there.
// Overwriting is never an error: the form is free to revise any field until
// submission.
func (b *Builder) AddOrReplaceEntry(slot int, entry models.ImageEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if slot < 0 || slot >= models.MaxImages {
		return buildErrorf("photo slot %d is out of range (1-%d)", slot+1, models.MaxImages)
	}
	if slot > len(b.draft.Images) {
		return buildErrorf("photo slot %d cannot be filled before slot %d", slot+1, len(b.draft.Images)+1)
	}
	if !models.IsValidImageType(entry.Type) {
		return buildErrorf("unknown image type %q", entry.Type)
	}

	available := models.AvailableImageTypes(b.typesExcludingLocked(slot))
	if !containsType(available, entry.Type) {
		return buildErrorf("image type %q is not selectable for photo %d", entry.Type, slot+1)
	}

	offered := models.RationaleOptions(entry.Type)
	if entry.Type == models.ImageTypeIdealFeature {
		// IDEAL has no standardized criteria yet; choice-based rationale is
		// discarded no matter what the caller sent.
		entry.ReasonChoices = nil
	} else {
		for _, choice := range entry.ReasonChoices {
			if !containsString(offered, choice) {
				return buildErrorf("rationale %q is not offered for image type %q", choice, entry.Type)
			}
		}
	}

	entry.ReasonFree = models.NormalizeText(entry.ReasonFree)

	if slot == len(b.draft.Images) {
		b.draft.Images = append(b.draft.Images, entry)
		return nil
	}
	b.draft.Images[slot] = entry
	return nil
}

// RemoveLastEntry drops the highest-numbered slot, mirroring the form
// shrinking its photo count.
func (b *Builder) RemoveLastEntry() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.draft.Images) == 0 {
		return buildErrorf("no photo entries to remove")
	}
	b.draft.Images = b.draft.Images[:len(b.draft.Images)-1]
	return nil
}

// SetAggregate records the whole-case judgment. It is accepted regardless of
// the current image count, but Snapshot drops it while the count is below the
// aggregate threshold.
func (b *Builder) SetAggregate(agg models.AggregateJudgment) error {
	offered := models.AggregateRationaleOptions()
	for _, choice := range agg.ReasonChoices {
		if !containsString(offered, choice) {
			return buildErrorf("rationale %q is not offered for the aggregate judgment", choice)
		}
	}
	agg.ReasonFree = models.NormalizeText(agg.ReasonFree)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft.Aggregate = &agg
	return nil
}

// ClearAggregate removes the whole-case judgment.
func (b *Builder) ClearAggregate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft.Aggregate = nil
}

// AggregateUnlocked reports whether the draft holds enough photos for the
// aggregate section to be shown.
func (b *Builder) AggregateUnlocked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.draft.Images) >= b.aggregateThreshold
}

// AggregateThreshold returns the configured minimum image count for the
// aggregate section.
func (b *Builder) AggregateThreshold() int {
	return b.aggregateThreshold
}

// InspectorName returns the current inspector name, used as the seed when the
// operator starts the next case.
func (b *Builder) InspectorName() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.draft.InspectorName
}

// Snapshot returns a copy of the draft ready for validation and submission.
// An aggregate recorded while the photo count sat below the threshold is
// dropped here, so it can never reach the persisted row.
func (b *Builder) Snapshot() models.Case {
	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot := b.draft
	snapshot.Images = make([]models.ImageEntry, len(b.draft.Images))
	copy(snapshot.Images, b.draft.Images)

	if b.draft.Aggregate != nil && len(b.draft.Images) >= b.aggregateThreshold {
		agg := *b.draft.Aggregate
		agg.ReasonChoices = append([]string(nil), b.draft.Aggregate.ReasonChoices...)
		snapshot.Aggregate = &agg
	} else {
		snapshot.Aggregate = nil
	}

	return snapshot
}

func containsType(types []models.ImageType, t models.ImageType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func containsString(values []string, s string) bool {
	for _, candidate := range values {
		if candidate == s {
			return true
		}
	}
	return false
}
