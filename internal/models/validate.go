package models

import (
	"fmt"
	"strings"
)

// Violation is one validation failure, tagged with the field it concerns.
// Field names follow the persisted column names so an operator-facing surface
// can anchor the message next to the offending input.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult carries every violation found in a candidate case.
type ValidationResult struct {
	Violations []Violation `json:"violations,omitempty"`
}

// OK reports whether the case passed validation.
func (r ValidationResult) OK() bool {
	return len(r.Violations) == 0
}

func (r *ValidationResult) add(field, format string, args ...interface{}) {
	r.Violations = append(r.Violations, Violation{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

// Validate runs every submission-time check over a candidate case and reports
// all violations found; it never stops at the first one. A failing result
// must abort submission before any remote call is made.
func Validate(c *Case) ValidationResult {
	var result ValidationResult

	if strings.TrimSpace(c.InspectorName) == "" {
		result.add("judge_person", "inspector name is required")
	}

	if len(c.Images) == 0 {
		result.add("images", "at least one photo is required")
	}

	for i := range c.Images {
		entry := &c.Images[i]
		slot := i + 1

		if !entry.HasImage() {
			result.add(fmt.Sprintf("images[%d].image", i), "photo %d has no image attached", slot)
		}
	}

	for i := range c.Images {
		entry := &c.Images[i]
		slot := i + 1

		if !IsValidJudgment(entry.Judgment) {
			result.add(fmt.Sprintf("images[%d].judge", i), "photo %d is missing a judgment", slot)
		}
		if !IsValidLearnDecision(entry.Learn) {
			result.add(fmt.Sprintf("images[%d].learn_yn", i), "photo %d is missing a learn decision", slot)
		}
	}

	for i := range c.Images {
		entry := &c.Images[i]
		slot := i + 1

		if entry.Learn != LearnNo {
			continue
		}
		if !IsValidLearnNoReason(entry.LearnNoReason) {
			result.add(fmt.Sprintf("images[%d].learn_no_reason", i), "photo %d is excluded from training but has no reason", slot)
			continue
		}
		if entry.LearnNoReason == LearnNoReasonOther && strings.TrimSpace(entry.ReasonFree) == "" {
			result.add(fmt.Sprintf("images[%d].learn_no_reason", i), "photo %d uses the other reason without free-text detail", slot)
		}
	}

	if agg := c.Aggregate; agg != nil {
		if !IsValidJudgment(agg.Judgment) {
			result.add("overall_judge", "aggregate judgment is missing")
		}
		if !IsValidLearnDecision(agg.Learn) {
			result.add("overall_learn_yn", "aggregate learn decision is missing")
		}
		if agg.Learn == LearnNo {
			switch {
			case !IsValidLearnNoReason(agg.LearnNoReason):
				result.add("overall_learn_no_reason", "aggregate is excluded from training but has no reason")
			case agg.LearnNoReason == LearnNoReasonOther && strings.TrimSpace(agg.ReasonFree) == "":
				result.add("overall_learn_no_reason", "aggregate uses the other reason without free-text detail")
			}
		}
	}

	// The builder already refuses duplicate types; this is the last gate
	// before persistence, so re-check anyway.
	seen := make(map[ImageType]int, len(c.Images))
	for i := range c.Images {
		t := c.Images[i].Type
		if first, dup := seen[t]; dup {
			result.add(fmt.Sprintf("images[%d].image_type", i), "photo %d repeats the type already used by photo %d", i+1, first+1)
			continue
		}
		seen[t] = i
	}

	return result
}
