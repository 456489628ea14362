// Package caselog appends submitted cases to two append-only tabular logs:
// one row per case and one row per photo. Backends auto-provision their
// tables with a fixed column order on first use and never mutate an existing
// schema.
package caselog

import (
	"context"

	"github.com/shibalabs/inspection-console/internal/blobstore"
	"github.com/shibalabs/inspection-console/internal/models"
)

// TimestampFormat is how created-at values are rendered in log rows.
const TimestampFormat = "2006-01-02 15:04:05"

// Table names in the backing store.
const (
	CasesTable  = "Cases"
	ImagesTable = "Images"
)

// CaseColumns is the fixed column order of the Cases table.
var CaseColumns = []string{
	"case_id", "brand", "item", "judge_person", "memo",
	"images_count", "overall_judge", "overall_reason_choices", "overall_reason_free",
	"overall_learn_yn", "overall_learn_no_reason", "weight_version", "created_at",
}

// ImageColumns is the fixed column order of the Images table.
var ImageColumns = []string{
	"case_id", "image_type", "drive_file_id", "drive_view_url",
	"judge", "reason_choices", "reason_free",
	"learn_yn", "learn_no_reason", "created_at",
}

// CaseRow is one Cases-table row. When the case has no aggregate judgment the
// overall_* fields are written as empty strings, not omitted.
type CaseRow struct {
	CaseID               string
	Brand                string
	Item                 string
	JudgePerson          string
	Memo                 string
	ImagesCount          int
	OverallJudge         string
	OverallReasonChoices string
	OverallReasonFree    string
	OverallLearnYN       string
	OverallLearnNoReason string
	WeightVersion        string
	CreatedAt            string
}

// ImageRow is one Images-table row.
type ImageRow struct {
	CaseID        string
	ImageType     string
	DriveFileID   string
	DriveViewURL  string
	Judge         string
	ReasonChoices string
	ReasonFree    string
	LearnYN       string
	LearnNoReason string
	CreatedAt     string
}

// Log is the tabular log gateway. Image rows for a case are always appended
// before its case row, so a reader scanning the Cases table finds the photo
// rows already present.
type Log interface {
	EnsureSchema(ctx context.Context) error
	AppendImageRow(ctx context.Context, row ImageRow) error
	AppendCaseRow(ctx context.Context, row CaseRow) error
}

// BuildCaseRow renders a submitted case into its Cases-table row.
func BuildCaseRow(c *models.Case) CaseRow {
	row := CaseRow{
		CaseID:        c.CaseID,
		Brand:         c.Brand,
		Item:          string(c.Item),
		JudgePerson:   c.InspectorName,
		Memo:          c.Memo,
		ImagesCount:   len(c.Images),
		WeightVersion: c.WeightVersion,
		CreatedAt:     c.CreatedAt.Format(TimestampFormat),
	}

	if agg := c.Aggregate; agg != nil {
		row.OverallJudge = string(agg.Judgment)
		row.OverallReasonChoices = models.JoinReasonChoices(agg.ReasonChoices)
		row.OverallReasonFree = agg.ReasonFree
		row.OverallLearnYN = string(agg.Learn)
		if agg.Learn == models.LearnNo {
			row.OverallLearnNoReason = models.FormatLearnNoReason(agg.LearnNoReason, agg.ReasonFree)
		}
	}

	return row
}

// BuildImageRow renders one photo entry into its Images-table row.
func BuildImageRow(c *models.Case, entry *models.ImageEntry, file *blobstore.UploadedFile) ImageRow {
	row := ImageRow{
		CaseID:        c.CaseID,
		ImageType:     string(entry.Type),
		DriveFileID:   file.FileID,
		DriveViewURL:  file.ViewURL,
		Judge:         string(entry.Judgment),
		ReasonChoices: models.JoinReasonChoices(entry.ReasonChoices),
		ReasonFree:    entry.ReasonFree,
		LearnYN:       string(entry.Learn),
		CreatedAt:     c.CreatedAt.Format(TimestampFormat),
	}

	if entry.Learn == models.LearnNo {
		row.LearnNoReason = models.FormatLearnNoReason(entry.LearnNoReason, entry.ReasonFree)
	}

	return row
}

func (r CaseRow) values() []interface{} {
	return []interface{}{
		r.CaseID, r.Brand, r.Item, r.JudgePerson, r.Memo,
		r.ImagesCount, r.OverallJudge, r.OverallReasonChoices, r.OverallReasonFree,
		r.OverallLearnYN, r.OverallLearnNoReason, r.WeightVersion, r.CreatedAt,
	}
}

func (r ImageRow) values() []interface{} {
	return []interface{}{
		r.CaseID, r.ImageType, r.DriveFileID, r.DriveViewURL,
		r.Judge, r.ReasonChoices, r.ReasonFree,
		r.LearnYN, r.LearnNoReason, r.CreatedAt,
	}
}
