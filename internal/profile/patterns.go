package profile

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/daehwan-oh/coverfact/internal/model"
)

// patterns holds the compiled content-pattern heuristics shared by table
// detection and column inference.
type patterns struct {
	amount  *regexp.Regexp
	premium *regexp.Regexp
	period  *regexp.Regexp
}

func compilePatterns(det model.DetectionConfig) (*patterns, error) {
	p := &patterns{}
	var err error
	if p.amount, err = regexp.Compile(det.AmountPattern); err != nil {
		return nil, err
	}
	if p.premium, err = regexp.Compile(det.PremiumPattern); err != nil {
		return nil, err
	}
	if p.period, err = regexp.Compile(det.PeriodPattern); err != nil {
		return nil, err
	}
	return p, nil
}

// containsAny reports whether s contains any of the keywords.
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// matchedKeyword returns the first keyword contained in s.
func matchedKeyword(s string, keywords []string) string {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return kw
		}
	}
	return ""
}

// hangulRatio returns the fraction of non-space runes that are Hangul.
func hangulRatio(s string) float64 {
	total, hangul := 0, 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.Is(unicode.Hangul, r) {
			hangul++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hangul) / float64(total)
}

// hasHangul reports whether s contains at least one Hangul rune.
func hasHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

// pureInt reports whether s is a bare integer token (a row number).
func pureInt(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// numericRatio returns the fraction of non-space runes that are digits or
// numeric punctuation.
func numericRatio(s string) float64 {
	total, num := 0, 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '%' {
			num++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(num) / float64(total)
}

// sampleRows returns at most n rows starting at from.
func sampleRows(rows [][]string, from, n int) [][]string {
	if from < 0 {
		from = 0
	}
	if from >= len(rows) {
		return nil
	}
	rest := rows[from:]
	if len(rest) > n {
		rest = rest[:n]
	}
	return rest
}

// cellAt returns the trimmed cell value, or "" when the row is short.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
