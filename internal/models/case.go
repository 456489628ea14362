package models

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Brand is fixed for this deployment; every case row carries it.
const Brand = "COACH"

// DefaultWeightVersion tags rows when no weight version is configured.
const DefaultWeightVersion = "COACH_v1.0"

// Image count bounds per case.
const (
	MinImages = 1
	MaxImages = 4
)

// DefaultAggregateThreshold is the minimum image count that unlocks the
// aggregate judgment section. It has been lowered in the past, so deployments
// override it via configuration.
const DefaultAggregateThreshold = 3

// ImageType identifies which diagnostic feature a photo shows. The values are
// the exact labels written to the Images sheet.
type ImageType string

const (
	ImageTypeLogo         ImageType = "ロゴ"
	ImageTypeCarriageTag  ImageType = "馬車タグ"
	ImageTypeCountryTag   ImageType = "製造国タグ"
	ImageTypeZipperPull   ImageType = "YKK"
	ImageTypeIdealFeature ImageType = "IDEAL"
)

// AllImageTypes returns every image type in selection order.
func AllImageTypes() []ImageType {
	return []ImageType{
		ImageTypeLogo,
		ImageTypeCarriageTag,
		ImageTypeCountryTag,
		ImageTypeZipperPull,
		ImageTypeIdealFeature,
	}
}

// IsValidImageType checks if a type value is one of the known types.
func IsValidImageType(t ImageType) bool {
	for _, valid := range AllImageTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// Judgment is the inspector's call on a photo or on the whole case.
type Judgment string

const (
	JudgmentWithinStandard  Judgment = "基準内"
	JudgmentOutsideStandard Judgment = "基準外"
	JudgmentUndetermined    Judgment = "判断つかず"
)

// Judgments returns the selectable judgment values in display order.
func Judgments() []Judgment {
	return []Judgment{JudgmentWithinStandard, JudgmentOutsideStandard, JudgmentUndetermined}
}

// IsValidJudgment checks if a judgment value is one of the known values.
func IsValidJudgment(j Judgment) bool {
	for _, valid := range Judgments() {
		if j == valid {
			return true
		}
	}
	return false
}

// LearnDecision records whether an entry may be used as training data.
type LearnDecision string

const (
	LearnYes LearnDecision = "Yes"
	LearnNo  LearnDecision = "No"
)

// IsValidLearnDecision checks if a learn decision is one of the known values.
func IsValidLearnDecision(d LearnDecision) bool {
	return d == LearnYes || d == LearnNo
}

// LearnNoReason explains why an entry is excluded from training data.
type LearnNoReason string

const (
	LearnNoReasonImageQuality LearnNoReason = "画像品質不良（ピント/反射/暗い）"
	LearnNoReasonMissingInfo  LearnNoReason = "必要情報が写っていない"
	LearnNoReasonUnsettled    LearnNoReason = "基準未確定／判断が割れる"
	LearnNoReasonTestData     LearnNoReason = "テスト・検証用データ"
	LearnNoReasonOther        LearnNoReason = "その他（自由記述で補足）"
)

// LearnNoReasons returns the selectable learn-no reasons in display order.
func LearnNoReasons() []LearnNoReason {
	return []LearnNoReason{
		LearnNoReasonImageQuality,
		LearnNoReasonMissingInfo,
		LearnNoReasonUnsettled,
		LearnNoReasonTestData,
		LearnNoReasonOther,
	}
}

// IsValidLearnNoReason checks if a reason is one of the known reasons.
func IsValidLearnNoReason(r LearnNoReason) bool {
	for _, valid := range LearnNoReasons() {
		if r == valid {
			return true
		}
	}
	return false
}

// learnNoReasonSupplementFallback is written when the "other" reason is
// persisted without free text. Validation normally rejects that combination,
// so a persisted row should never carry it.
const learnNoReasonSupplementFallback = "（自由記述に補足してください）"

// FormatLearnNoReason renders a learn-no reason for persistence. The "other"
// reason gets the free-text supplement concatenated after a full-width colon.
func FormatLearnNoReason(reason LearnNoReason, supplement string) string {
	if reason == "" {
		return ""
	}
	if reason != LearnNoReasonOther {
		return string(reason)
	}
	supplement = strings.TrimSpace(supplement)
	if supplement == "" {
		supplement = learnNoReasonSupplementFallback
	}
	return string(reason) + "：" + supplement
}

// Item is the inspected article category.
type Item string

const (
	ItemBag    Item = "バッグ"
	ItemWallet Item = "財布"
)

// Items returns the selectable items in display order.
func Items() []Item {
	return []Item{ItemBag, ItemWallet}
}

// IsValidItem checks if an item value is one of the known items.
func IsValidItem(i Item) bool {
	return i == ItemBag || i == ItemWallet
}

// NormalizeText applies NFKC normalization and trims surrounding whitespace.
// Operator-typed Japanese text arrives with mixed full-width and half-width
// characters, so every free-text field goes through this before it is stored.
func NormalizeText(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// ImageEntry is the judgment record for one uploaded photograph.
type ImageEntry struct {
	Type          ImageType     `json:"imageType"`
	Bytes         []byte        `json:"-"`
	MimeType      string        `json:"mimeType,omitempty"`
	FileName      string        `json:"fileName,omitempty"`
	Judgment      Judgment      `json:"judgment,omitempty"`
	ReasonChoices []string      `json:"reasonChoices,omitempty"`
	ReasonFree    string        `json:"reasonFree,omitempty"`
	Learn         LearnDecision `json:"learn,omitempty"`
	LearnNoReason LearnNoReason `json:"learnNoReason,omitempty"`
}

// HasImage reports whether photo bytes were attached to this entry.
func (e *ImageEntry) HasImage() bool {
	return len(e.Bytes) > 0
}

// AggregateJudgment is the optional whole-case judgment, unlocked once the
// case holds enough photos.
type AggregateJudgment struct {
	Judgment      Judgment      `json:"judgment,omitempty"`
	ReasonChoices []string      `json:"reasonChoices,omitempty"`
	ReasonFree    string        `json:"reasonFree,omitempty"`
	Learn         LearnDecision `json:"learn,omitempty"`
	LearnNoReason LearnNoReason `json:"learnNoReason,omitempty"`
}

// Case is one inspection event: 1-4 photos of a single item plus an optional
// aggregate judgment. Built in memory, persisted once at submission, never
// updated afterwards.
type Case struct {
	CaseID        string             `json:"caseId,omitempty"`
	Brand         string             `json:"brand"`
	Item          Item               `json:"item"`
	InspectorName string             `json:"inspectorName"`
	Memo          string             `json:"memo,omitempty"`
	Images        []ImageEntry       `json:"images"`
	Aggregate     *AggregateJudgment `json:"aggregate,omitempty"`
	WeightVersion string             `json:"weightVersion,omitempty"`
	CreatedAt     time.Time          `json:"createdAt,omitempty"`
}

// ImageTypes returns the types chosen across the case's entries, in entry order.
func (c *Case) ImageTypes() []ImageType {
	types := make([]ImageType, 0, len(c.Images))
	for i := range c.Images {
		types = append(types, c.Images[i].Type)
	}
	return types
}

// JoinReasonChoices renders a multi-select rationale for a single sheet cell.
func JoinReasonChoices(choices []string) string {
	return strings.Join(choices, " / ")
}
