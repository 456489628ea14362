package database

import (
	"context"
	"fmt"

	"github.com/shibalabs/inspection-console/internal/caselog"
)

// CaseLogStore implements the tabular case log on PostgreSQL, for deployments
// that keep the logs in a database instead of a shared spreadsheet.
type CaseLogStore struct {
	db *DB
}

// NewCaseLogStore creates a new case log store.
func NewCaseLogStore(db *DB) *CaseLogStore {
	return &CaseLogStore{db: db}
}

// EnsureSchema creates the log tables when absent.
func (s *CaseLogStore) EnsureSchema(ctx context.Context) error {
	if err := s.db.Migrate(ctx); err != nil {
		return fmt.Errorf("ensure log schema: %w", err)
	}
	return nil
}

// AppendImageRow inserts one photo row.
func (s *CaseLogStore) AppendImageRow(ctx context.Context, row caselog.ImageRow) error {
	query := `
		INSERT INTO images (
			case_id, image_type, drive_file_id, drive_view_url,
			judge, reason_choices, reason_free,
			learn_yn, learn_no_reason, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		row.CaseID,
		row.ImageType,
		row.DriveFileID,
		row.DriveViewURL,
		row.Judge,
		row.ReasonChoices,
		row.ReasonFree,
		row.LearnYN,
		row.LearnNoReason,
		row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append image row: %w", err)
	}
	return nil
}

// AppendCaseRow inserts one case row.
func (s *CaseLogStore) AppendCaseRow(ctx context.Context, row caselog.CaseRow) error {
	query := `
		INSERT INTO cases (
			case_id, brand, item, judge_person, memo,
			images_count, overall_judge, overall_reason_choices, overall_reason_free,
			overall_learn_yn, overall_learn_no_reason, weight_version, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		row.CaseID,
		row.Brand,
		row.Item,
		row.JudgePerson,
		row.Memo,
		row.ImagesCount,
		row.OverallJudge,
		row.OverallReasonChoices,
		row.OverallReasonFree,
		row.OverallLearnYN,
		row.OverallLearnNoReason,
		row.WeightVersion,
		row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append case row: %w", err)
	}
	return nil
}

var _ caselog.Log = (*CaseLogStore)(nil)
