package ocr

import (
	"regexp"
	"strings"

	"github.com/checkam/scanverifier/constants"
	"github.com/checkam/scanverifier/internal/common"
)

var reWhitespace = regexp.MustCompile(`\s+`)

// Normalize collapses an extracted string into a canonical candidate code:
// leading/trailing whitespace stripped, internal whitespace removed entirely
// (codes contain no embedded spaces). Deterministic, no side effects.
// Results shorter than the minimum code length fail with ErrCodeTooShort.
func Normalize(raw string) (string, error) {
	code := reWhitespace.ReplaceAllString(strings.TrimSpace(raw), "")
	if len(code) < constants.MinCodeLength {
		return "", common.ErrCodeTooShort
	}
	return code, nil
}
