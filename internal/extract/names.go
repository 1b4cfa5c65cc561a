package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	leadingEnumRe = regexp.MustCompile(`^[0-9]{1,3}[.)]\s*`)
	wsRe          = regexp.MustCompile(`\s+`)
)

// enclosing punctuation stripped from both ends of a name before joining.
const enclosing = "()[]【】「」『』\"'“”‘’·-"

// NormalizeName builds the equality key used to join summary facts with
// detail facts: NFC, whitespace and enclosing punctuation stripped, leading
// enumeration removed, case-folded.
func NormalizeName(s string) string {
	s = norm.NFC.String(s)
	s = strings.TrimSpace(s)
	s = leadingEnumRe.ReplaceAllString(s, "")
	s = strings.Trim(s, enclosing)
	s = wsRe.ReplaceAllString(s, "")
	return strings.ToLower(s)
}
