// Package submit runs the commit path for a finished case: validate, provision
// the case folder, upload every photo, then append the tabular log rows.
// Phases run strictly in order and the attempt aborts on the first failure;
// there is no rollback, so a half-written case is repaired by resubmitting.
package submit

import (
	"context"
	"encoding/hex"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/shibalabs/inspection-console/internal/blobstore"
	"github.com/shibalabs/inspection-console/internal/caselog"
	"github.com/shibalabs/inspection-console/internal/logging"
	"github.com/shibalabs/inspection-console/internal/models"
)

// Config carries the submission-time settings that are not part of the case
// itself.
type Config struct {
	// RootFolderID is the blob-store folder under which per-case folders are
	// created.
	RootFolderID string
	// WeightVersion is stamped on every case row.
	WeightVersion string
}

// UploadedImage reports where one photo landed.
type UploadedImage struct {
	Index   int              `json:"index"`
	Type    models.ImageType `json:"imageType"`
	FileID  string           `json:"fileId"`
	ViewURL string           `json:"viewUrl"`
}

// Receipt is returned for a committed case.
type Receipt struct {
	CaseID    string
	CreatedAt time.Time
	FolderID  string
	Images    []UploadedImage
}

// Service orchestrates case submission.
type Service struct {
	blob   blobstore.Store
	log    caselog.Log
	logger *logging.Logger
	cfg    Config

	// Injectable for tests.
	now       func() time.Time
	newSuffix func() string
}

// NewService creates a submission service writing to the given blob store and
// tabular log.
func NewService(blob blobstore.Store, log caselog.Log, cfg Config, logger *logging.Logger) *Service {
	if cfg.WeightVersion == "" {
		cfg.WeightVersion = models.DefaultWeightVersion
	}
	return &Service{
		blob:      blob,
		log:       log,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		newSuffix: randomSuffix,
	}
}

// Submit commits a finished case. On a validation failure it returns a
// *ValidationError without touching any remote system; on a remote failure it
// returns a *StepError naming the phase (and photo, where applicable) that
// failed.
func (s *Service) Submit(ctx context.Context, c models.Case) (*Receipt, error) {
	if result := models.Validate(&c); !result.OK() {
		s.logger.Info("Submission rejected by validation",
			logging.WithField("violations", len(result.Violations)))
		return nil, &ValidationError{Violations: result.Violations}
	}

	now := s.now()
	c.CaseID = newCaseID(now, s.newSuffix())
	c.CreatedAt = now
	if c.WeightVersion == "" {
		c.WeightVersion = s.cfg.WeightVersion
	}

	folderID, err := s.blob.EnsureFolder(ctx, c.CaseID, s.cfg.RootFolderID)
	if err != nil {
		s.logger.Error("Failed to provision case folder",
			logging.WithField("case_id", c.CaseID),
			logging.WithField("error", err.Error()))
		return nil, &StepError{Step: StepProvisioning, ImageIndex: -1, Err: err}
	}

	uploaded := make([]blobstore.UploadedFile, 0, len(c.Images))
	for i := range c.Images {
		entry := &c.Images[i]
		file, err := s.blob.Upload(ctx, folderID, uploadFilename(entry, i), entry.Bytes, uploadMimeType(entry))
		if err != nil {
			s.logger.Error("Failed to upload photo",
				logging.WithField("case_id", c.CaseID),
				logging.WithField("photo", i+1),
				logging.WithField("error", err.Error()))
			return nil, &StepError{Step: StepUploadingImages, ImageIndex: i, Err: err}
		}
		uploaded = append(uploaded, *file)
	}

	if err := s.log.EnsureSchema(ctx); err != nil {
		return nil, &StepError{Step: StepAppendingRows, ImageIndex: -1, Err: err}
	}

	// Image rows first, case row last: a reader who sees the case row can
	// trust its photo rows are already present.
	for i := range c.Images {
		row := caselog.BuildImageRow(&c, &c.Images[i], &uploaded[i])
		if err := s.log.AppendImageRow(ctx, row); err != nil {
			return nil, &StepError{Step: StepAppendingRows, ImageIndex: i, Err: err}
		}
	}
	if err := s.log.AppendCaseRow(ctx, caselog.BuildCaseRow(&c)); err != nil {
		return nil, &StepError{Step: StepAppendingRows, ImageIndex: -1, Err: err}
	}

	receipt := &Receipt{
		CaseID:    c.CaseID,
		CreatedAt: c.CreatedAt,
		FolderID:  folderID,
		Images:    make([]UploadedImage, 0, len(c.Images)),
	}
	for i := range c.Images {
		receipt.Images = append(receipt.Images, UploadedImage{
			Index:   i,
			Type:    c.Images[i].Type,
			FileID:  uploaded[i].FileID,
			ViewURL: uploaded[i].ViewURL,
		})
	}

	s.logger.Info("Case committed",
		logging.WithField("case_id", c.CaseID),
		logging.WithField("images", len(c.Images)))

	return receipt, nil
}

// newCaseID builds a case id from the submission timestamp and a random
// suffix, e.g. 20250114_093012_a3f81c0b.
func newCaseID(now time.Time, suffix string) string {
	return now.Format("20060102_150405") + "_" + suffix
}

func randomSuffix() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:8]
}

// uploadFilename prefixes the original filename with the photo's feature type
// so files sort by feature inside the case folder. Uploads that arrived
// without a name get a positional one.
func uploadFilename(entry *models.ImageEntry, index int) string {
	base := path.Base(entry.FileName)
	if base == "." || base == "/" || base == "" {
		base = fmt.Sprintf("photo%d%s", index+1, extensionForMime(uploadMimeType(entry)))
	}
	return fmt.Sprintf("%s_%s", entry.Type, base)
}

func uploadMimeType(entry *models.ImageEntry) string {
	if entry.MimeType == "" {
		return "image/jpeg"
	}
	return entry.MimeType
}

func extensionForMime(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
