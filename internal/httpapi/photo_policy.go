package httpapi

import (
	"net/http"
	"strings"
)

// photoPolicy is the intake gate for inspection photos: a size cap and the
// set of content types a case folder accepts. Inspectors shoot on phones, so
// the cap is generous and HEIC is deliberately absent until the capture UI
// transcodes it.
type photoPolicy struct {
	maxBytes int64
	allowed  map[string]struct{}
}

var uploadPolicy = photoPolicy{
	maxBytes: 10 * 1024 * 1024,
	allowed: map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
		"image/webp": {},
	},
}

// sniff detects the content type from the upload's leading bytes and reports
// whether the policy accepts it. The browser-supplied header is ignored: only
// the bytes decide. The legacy image/jpg alias folds into image/jpeg so the
// blob store records one spelling.
func (p photoPolicy) sniff(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}

	contentType := strings.ToLower(strings.TrimSpace(http.DetectContentType(data)))
	if contentType == "image/jpg" {
		contentType = "image/jpeg"
	}

	_, ok := p.allowed[contentType]
	return contentType, ok
}

func (p photoPolicy) fitsSize(n int64) bool {
	return n <= p.maxBytes
}
