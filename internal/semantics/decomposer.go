// Package semantics decomposes a raw coverage-name string into structured
// metadata: exclusion lists, payout-limit counters, renewal flags, and
// modifier annotations. It is purely syntactic and applies no business
// interpretation.
package semantics

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/daehwan-oh/coverfact/internal/model"
)

var (
	parenRe = regexp.MustCompile(`\(([^()]*)\)`)
	enumRe  = regexp.MustCompile(`^\s*[0-9]{1,3}[.)]\s*`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// Decomposer turns coverage names into CoverageSemantics. It is a pure
// function object: all pattern tables are fixed at construction.
type Decomposer struct {
	cfg       model.SemanticsConfig
	fragments []*regexp.Regexp
	payout    *regexp.Regexp
	renewal   *regexp.Regexp
}

// NewDecomposer compiles the configured pattern tables.
func NewDecomposer(cfg model.SemanticsConfig) (*Decomposer, error) {
	d := &Decomposer{cfg: cfg}
	for _, p := range cfg.FragmentPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		d.fragments = append(d.fragments, re)
	}
	var err error
	if d.payout, err = regexp.Compile(cfg.PayoutPattern); err != nil {
		return nil, err
	}
	if d.renewal, err = regexp.Compile(cfg.RenewalPattern); err != nil {
		return nil, err
	}
	return d, nil
}

// Decompose parses one raw coverage-name string. Fragment detection runs
// first and exclusively: a fragment carries no other reliable field and must
// be routed to the fragment stream. The remaining extractions are
// independent and non-destructive: the raw text is decomposed, never
// discarded.
func (d *Decomposer) Decompose(raw string) model.CoverageSemantics {
	text := strings.TrimSpace(norm.NFC.String(raw))

	if d.isFragment(text) {
		return model.CoverageSemantics{
			FragmentDetected:   true,
			ParentCoverageHint: d.parentHint(text),
		}
	}

	sem := model.CoverageSemantics{}
	for _, m := range parenRe.FindAllStringSubmatch(text, -1) {
		inner := strings.TrimSpace(m[1])
		if inner == "" {
			continue
		}
		if excl := d.exclusions(inner); len(excl) > 0 {
			sem.Exclusions = append(sem.Exclusions, excl...)
			continue
		}
		if typ, count, ok := d.payoutLimit(inner); ok {
			sem.PayoutLimitType = typ
			sem.PayoutLimitCount = count
			continue
		}
		if d.isModifier(inner) {
			sem.Modifiers = append(sem.Modifiers, inner)
			continue
		}
		if rt, ok := d.renewalType(inner); ok {
			sem.RenewalFlag = true
			sem.RenewalType = rt
		}
	}

	sem.CoverageTitle = d.title(text)
	return sem
}

// isFragment reports whether the text is a mis-split remnant of a larger
// entry: a bare frequency phrase, or an unterminated parenthesis at either
// end.
func (d *Decomposer) isFragment(text string) bool {
	if text == "" {
		return false
	}
	for _, re := range d.fragments {
		if re.MatchString(text) {
			return true
		}
	}
	if strings.HasPrefix(text, "(") && !strings.Contains(text, ")") {
		return true
	}
	if strings.HasSuffix(text, "(") {
		return true
	}
	return false
}

func (d *Decomposer) parentHint(text string) string {
	for key, parent := range d.cfg.ParentHints {
		if strings.Contains(text, key) {
			return parent
		}
	}
	return ""
}

// exclusions parses a parenthetical ending in an excluding marker into
// individual excluded terms.
func (d *Decomposer) exclusions(inner string) []string {
	var body string
	for _, marker := range d.cfg.ExclusionMarkers {
		if strings.HasSuffix(inner, marker) {
			body = strings.TrimSpace(strings.TrimSuffix(inner, marker))
			break
		}
	}
	if body == "" {
		return nil
	}
	parts := []string{body}
	for _, delim := range d.cfg.ListDelimiters {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, delim)...)
		}
		parts = next
	}
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (d *Decomposer) payoutLimit(inner string) (model.PayoutLimitType, int, bool) {
	m := d.payout.FindStringSubmatch(inner)
	if m == nil {
		return "", 0, false
	}
	count, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	switch m[1] {
	case "최초":
		return model.PayoutPerPolicy, count, true
	case "연간":
		return model.PayoutPerYear, count, true
	case "사고당":
		return model.PayoutPerAccident, count, true
	}
	return "", 0, false
}

func (d *Decomposer) renewalType(inner string) (string, bool) {
	if !d.renewal.MatchString(inner) {
		return "", false
	}
	return inner, true
}

func (d *Decomposer) isModifier(inner string) bool {
	for _, allow := range d.cfg.ModifierAllow {
		if inner == allow {
			return true
		}
	}
	return false
}

// title builds the display title: every parenthetical stripped, leading
// enumeration removed, whitespace collapsed.
func (d *Decomposer) title(text string) string {
	prev := ""
	for text != prev {
		prev = text
		text = parenRe.ReplaceAllString(text, " ")
	}
	text = enumRe.ReplaceAllString(text, "")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}
