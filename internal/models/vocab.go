package models

// UniversalRationale may be chosen for any image type whose photo cannot be
// read well enough to judge.
const UniversalRationale = "判別不可（画像不鮮明）"

// rationaleByType holds the per-type judgment rationale options. IdealFeature
// is deliberately absent: its inspection criteria are not standardized yet, so
// choice-based rationale is disabled and inspectors write free text only.
var rationaleByType = map[ImageType][]string{
	ImageTypeLogo: {
		"ロゴ：フォント／配置／刻印が基準内",
		"ロゴ：にじみ／ズレ／形状違い",
	},
	ImageTypeCarriageTag: {
		"馬車タグ：ピッチが5/7で基準内",
		"馬車タグ：ピッチが基準外（5/7以外）",
		"馬車タグ：キャビン形状が基準内",
		"馬車タグ：キャビン形状が基準外",
	},
	ImageTypeCountryTag: {
		"製造国タグ：印刷／フォントが自然",
		"製造国タグ：にじみ／ズレ／フォント異常",
	},
	ImageTypeZipperPull: {
		"YKK：刻印が深く均一",
		"YKK：刻印が浅い／欠け／潰れ",
	},
}

// aggregateRationales are the whole-case rationale options.
var aggregateRationales = []string{
	"馬車タグが基準内のため総合は基準内寄り",
	"最重要ポイント（馬車タグ）が基準外のため総合は基準外寄り",
	"情報不足のため総合判断つかず",
	"複合的に判断（基準内要素が優勢）",
	"複合的に判断（基準外要素が優勢）",
}

// RationaleOptions returns the selectable rationale list for one image type:
// the type-specific options plus the universal unreadable-image option.
// IdealFeature returns an empty list.
func RationaleOptions(t ImageType) []string {
	if t == ImageTypeIdealFeature {
		return nil
	}
	base, ok := rationaleByType[t]
	if !ok {
		return []string{UniversalRationale}
	}
	options := make([]string, 0, len(base)+1)
	options = append(options, base...)
	options = append(options, UniversalRationale)
	return options
}

// AggregateRationaleOptions returns the selectable whole-case rationale list.
func AggregateRationaleOptions() []string {
	options := make([]string, len(aggregateRationales))
	copy(options, aggregateRationales)
	return options
}

// AvailableImageTypes returns the types still selectable given the types
// already chosen for earlier entries. Chosen types are removed, and once one
// of the ZipperPull/IdealFeature pair is chosen the other is withheld: a case
// records either the production zipper pull or the experimental IDEAL feature,
// never both. If filtering would leave nothing selectable while the case can
// still take entries, the exclusion is abandoned and all unchosen types are
// returned; that only happens when the chosen set itself is inconsistent.
func AvailableImageTypes(chosen []ImageType) []ImageType {
	chosenSet := make(map[ImageType]bool, len(chosen))
	for _, t := range chosen {
		chosenSet[t] = true
	}

	excluded := make(map[ImageType]bool, 1)
	if chosenSet[ImageTypeZipperPull] {
		excluded[ImageTypeIdealFeature] = true
	}
	if chosenSet[ImageTypeIdealFeature] {
		excluded[ImageTypeZipperPull] = true
	}

	available := make([]ImageType, 0, len(AllImageTypes()))
	for _, t := range AllImageTypes() {
		if chosenSet[t] || excluded[t] {
			continue
		}
		available = append(available, t)
	}

	if len(available) == 0 && len(chosen) < MaxImages {
		for _, t := range AllImageTypes() {
			if !chosenSet[t] {
				available = append(available, t)
			}
		}
	}

	return available
}
