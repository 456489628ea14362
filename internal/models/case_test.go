package models

import "testing"

func TestFormatLearnNoReason(t *testing.T) {
	tests := []struct {
		name       string
		reason     LearnNoReason
		supplement string
		want       string
	}{
		{"empty reason", "", "anything", ""},
		{"plain reason ignores supplement", LearnNoReasonImageQuality, "extra", string(LearnNoReasonImageQuality)},
		{"other with supplement", LearnNoReasonOther, "ピッチが5/7ではない", "その他（自由記述で補足）：ピッチが5/7ではない"},
		{"other without supplement falls back", LearnNoReasonOther, "", "その他（自由記述で補足）：（自由記述に補足してください）"},
		{"other trims supplement", LearnNoReasonOther, "  微妙  ", "その他（自由記述で補足）：微妙"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatLearnNoReason(tt.reason, tt.supplement)
			if got != tt.want {
				t.Errorf("FormatLearnNoReason(%q, %q) = %q, want %q", tt.reason, tt.supplement, got, tt.want)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  柴田  ", "柴田"},
		{"full-width ascii folded", "ＣＯＡＣＨ", "COACH"},
		{"half-width katakana widened", "ﾊﾞｯｸﾞ", "バッグ"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.input); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestJoinReasonChoices(t *testing.T) {
	got := JoinReasonChoices([]string{"a", "b"})
	if got != "a / b" {
		t.Errorf("JoinReasonChoices() = %q, want %q", got, "a / b")
	}
	if JoinReasonChoices(nil) != "" {
		t.Error("JoinReasonChoices(nil) should be empty")
	}
}

func TestIsValidImageType(t *testing.T) {
	for _, typ := range AllImageTypes() {
		if !IsValidImageType(typ) {
			t.Errorf("IsValidImageType(%q) = false for a known type", typ)
		}
	}
	if IsValidImageType("財布") {
		t.Error("IsValidImageType should reject values outside the type list")
	}
	if IsValidImageType("") {
		t.Error("IsValidImageType should reject the empty string")
	}
}

func TestImageTypes(t *testing.T) {
	c := &Case{Images: []ImageEntry{{Type: ImageTypeCountryTag}, {Type: ImageTypeLogo}}}
	types := c.ImageTypes()
	if len(types) != 2 || types[0] != ImageTypeCountryTag || types[1] != ImageTypeLogo {
		t.Errorf("ImageTypes() = %v, want entry order preserved", types)
	}
}
