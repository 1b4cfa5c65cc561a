// Package identity extracts product name and demographic variant from page 1
// of a proposal document. File and folder names are never consulted.
package identity

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/daehwan-oh/coverfact/internal/model"
	"github.com/daehwan-oh/coverfact/internal/pdfdoc"
)

var spaceRe = regexp.MustCompile(`\s+`)

// Extractor resolves product identity and variant context. All issuer
// pattern tables are compiled at construction.
type Extractor struct {
	cfg    model.IdentityConfig
	issuer map[string][]*regexp.Regexp
	age    *regexp.Regexp
	sex    *regexp.Regexp
}

// NewExtractor compiles the configured pattern tables.
func NewExtractor(cfg model.IdentityConfig) (*Extractor, error) {
	e := &Extractor{cfg: cfg, issuer: make(map[string][]*regexp.Regexp)}
	for key, patterns := range cfg.IssuerPatterns {
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("issuer pattern %s: %w", key, err)
			}
			e.issuer[key] = append(e.issuer[key], re)
		}
	}
	var err error
	if e.age, err = regexp.Compile(cfg.AgePattern); err != nil {
		return nil, err
	}
	if e.sex, err = regexp.Compile(cfg.SexPattern); err != nil {
		return nil, err
	}
	return e, nil
}

// Extract resolves identity from page-1 text. An unresolvable product name
// is a hard gate failure: the issuer's page-1 layout is unrecognized and the
// document must be re-profiled. variantHint is a non-binding cross-check;
// a mismatch is reported in the returned notes, never overriding.
func (e *Extractor) Extract(doc pdfdoc.Document, insurer, variantHint string) (model.ProductIdentity, model.VariantContext, []string, error) {
	text, err := doc.PageText(1)
	if err != nil {
		return model.ProductIdentity{}, model.VariantContext{}, nil,
			model.NewGateError(model.GateUnreadableDocument, fmt.Sprintf("page 1: %v", err))
	}
	text = norm.NFC.String(text)
	lines := nonBlankLines(text)

	raw, lineIdx := e.productName(text, lines, insurer)
	if raw == "" {
		return model.ProductIdentity{}, model.VariantContext{}, nil,
			model.NewGateError(model.GateMissingIdentity,
				fmt.Sprintf("no product name resolvable on page 1 for insurer %q", insurer))
	}

	normalized := strings.TrimSpace(spaceRe.ReplaceAllString(raw, " "))
	key := productKey(normalized)
	if key == "" {
		return model.ProductIdentity{}, model.VariantContext{}, nil,
			model.NewGateError(model.GateMissingIdentity,
				fmt.Sprintf("product name %q normalizes to an empty key", raw))
	}

	ident := model.ProductIdentity{
		ProductNameRaw:        raw,
		ProductNameNormalized: normalized,
		ProductKey:            key,
	}

	variant := e.variant(text, lines, lineIdx)
	var notes []string
	if variantHint != "" && variantHint != variant.VariantKey {
		notes = append(notes, fmt.Sprintf(
			"variant hint %q does not match extracted variant %q (extracted value kept)",
			variantHint, variant.VariantKey))
	}
	return ident, variant, notes, nil
}

// productName tries the issuer-specific regex list first, then falls back
// to the first page-1 line carrying a generic product keyword within the
// length window.
func (e *Extractor) productName(text string, lines []string, insurer string) (string, int) {
	for _, re := range e.issuer[insurer] {
		if m := re.FindString(text); m != "" {
			return strings.TrimSpace(m), lineIndexOf(lines, m)
		}
	}
	for i, line := range lines {
		if len([]rune(line)) > e.cfg.MaxProductLineLen {
			continue
		}
		for _, kw := range e.cfg.GenericKeywords {
			if strings.Contains(line, kw) {
				return line, i
			}
		}
	}
	return "", -1
}

// variant inspects the block immediately following the product line: the
// next few non-blank lines, or the head of page 1 when the product line
// cannot be located.
func (e *Extractor) variant(text string, lines []string, productLine int) model.VariantContext {
	var block string
	if productLine >= 0 && productLine+1 < len(lines) {
		end := productLine + 1 + e.cfg.VariantWindowLines
		if end > len(lines) {
			end = len(lines)
		}
		block = strings.Join(lines[productLine+1:end], "\n")
	} else {
		runes := []rune(text)
		if len(runes) > e.cfg.VariantWindowChars {
			runes = runes[:e.cfg.VariantWindowChars]
		}
		block = string(runes)
	}

	age := strings.TrimSpace(e.age.FindString(block))
	sex := strings.TrimSpace(e.sex.FindString(block))
	if age == "" && sex == "" {
		return model.DefaultVariant()
	}

	vc := model.VariantContext{VariantValues: map[string]string{}}
	var parts []string
	if sex != "" {
		vc.VariantAxis = append(vc.VariantAxis, "sex")
		vc.VariantValues["sex"] = sex
		parts = append(parts, sex)
	}
	if age != "" {
		vc.VariantAxis = append(vc.VariantAxis, "age")
		vc.VariantValues["age"] = spaceRe.ReplaceAllString(age, "")
		parts = append(parts, vc.VariantValues["age"])
	}
	vc.VariantKey = strings.Join(parts, "_")
	return vc
}

func nonBlankLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func lineIndexOf(lines []string, match string) int {
	needle := strings.TrimSpace(match)
	for i, line := range lines {
		if strings.Contains(line, needle) || strings.Contains(needle, line) {
			return i
		}
	}
	return -1
}

// productKey lowercases and strips spacing/punctuation so the key is a
// stable join/equality token.
func productKey(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
