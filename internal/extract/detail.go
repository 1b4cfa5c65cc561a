package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/daehwan-oh/coverfact/internal/model"
	"github.com/daehwan-oh/coverfact/internal/pdfdoc"
)

// DetailExtractor locates the benefit-description layout of a document and
// produces detail facts for the summary join. The layout variant is the
// profile-declared structure type; it is configuration, never re-inferred
// per issuer at call time.
type DetailExtractor struct {
	cfg      model.DetailConfig
	det      model.DetectionConfig
	lineRe   *regexp.Regexp
	limitRe  *regexp.Regexp
	amountRe *regexp.Regexp
	periodRe *regexp.Regexp
}

// NewDetailExtractor compiles the configured patterns.
func NewDetailExtractor(cfg model.DetailConfig, det model.DetectionConfig) (*DetailExtractor, error) {
	d := &DetailExtractor{cfg: cfg, det: det}
	var err error
	if d.lineRe, err = regexp.Compile(cfg.CoverageLineNum); err != nil {
		return nil, fmt.Errorf("coverage line pattern: %w", err)
	}
	if d.limitRe, err = regexp.Compile(cfg.LimitHintPattern); err != nil {
		return nil, fmt.Errorf("limit hint pattern: %w", err)
	}
	if d.amountRe, err = regexp.Compile(det.AmountPattern); err != nil {
		return nil, err
	}
	if d.periodRe, err = regexp.Compile(det.PeriodPattern); err != nil {
		return nil, err
	}
	return d, nil
}

// Extract walks the document according to the declared structure type.
func (d *DetailExtractor) Extract(doc pdfdoc.Document, structure model.DetailStructure) ([]model.DetailFact, []string) {
	switch structure.Type {
	case model.DetailDescriptionColumn:
		return d.fromDescriptionColumn(doc, structure.DescriptionColumn)
	case model.DetailMergedInline:
		return d.fromMergedInline(doc)
	case model.DetailMergedMultiRow:
		return d.fromMergedMultiRow(doc)
	case model.DetailTextLayout:
		return d.fromTextLayout(doc)
	case model.DetailSummaryEmbedded:
		return d.fromSummaryEmbedded(doc)
	case model.DetailSummaryEmbeddedSplit:
		return d.fromSummaryEmbeddedSplit(doc)
	default:
		return nil, nil
	}
}

// fromDescriptionColumn handles tables with distinct coverage-name and
// description header columns. When both keyword matches collide on the same
// header cell, the description column is offset one to the right (or taken
// from the profile override).
func (d *DetailExtractor) fromDescriptionColumn(doc pdfdoc.Document, override *int) ([]model.DetailFact, []string) {
	var facts []model.DetailFact
	var anomalies []string
	d.eachDescriptionTable(doc, &anomalies, func(t pdfdoc.Table, nameCol, descCol int) {
		if override != nil {
			descCol = *override
		} else if descCol == nameCol {
			descCol = nameCol + 1
		}
		for i, row := range t.Rows[1:] {
			name := cellAt(row, nameCol)
			desc := cellAt(row, descCol)
			if name == "" || desc == "" {
				continue
			}
			facts = append(facts, d.fact(name, desc, t.Page, i+1))
		}
	})
	return facts, anomalies
}

// fromMergedInline handles one shared cell: coverage name on the first
// line, description after the newline.
func (d *DetailExtractor) fromMergedInline(doc pdfdoc.Document) ([]model.DetailFact, []string) {
	var facts []model.DetailFact
	var anomalies []string
	d.eachDescriptionTable(doc, &anomalies, func(t pdfdoc.Table, nameCol, _ int) {
		for i, row := range t.Rows[1:] {
			cellText := cellAt(row, nameCol)
			name, desc, ok := strings.Cut(cellText, "\n")
			if !ok || strings.TrimSpace(desc) == "" {
				continue
			}
			facts = append(facts, d.fact(strings.TrimSpace(name), strings.TrimSpace(desc), t.Page, i+1))
		}
	})
	return facts, anomalies
}

// fromMergedMultiRow handles the name on one row with the following row's
// description column holding the text. Disclaimer/exclusion-header rows are
// not descriptions.
func (d *DetailExtractor) fromMergedMultiRow(doc pdfdoc.Document) ([]model.DetailFact, []string) {
	var facts []model.DetailFact
	var anomalies []string
	d.eachDescriptionTable(doc, &anomalies, func(t pdfdoc.Table, nameCol, descCol int) {
		rows := t.Rows[1:]
		for i := 0; i+1 < len(rows); i++ {
			name := cellAt(rows[i], nameCol)
			if name == "" || d.amountRe.MatchString(name) {
				continue
			}
			desc := cellAt(rows[i+1], descCol)
			if desc == "" || containsAnyDetail(desc, d.cfg.ExclusionHeaderHints) {
				continue
			}
			facts = append(facts, d.fact(name, desc, t.Page, i+1))
		}
	})
	return facts, anomalies
}

// fromTextLayout handles documents with no table structure at all.
// A coverage line is "number. name" or a payment/term co-occurrence; its
// description is the run of subsequent lines up to the next coverage line,
// an exclusion-section marker, or a page-footer marker. Payment/term-only
// lines are skipped, not accumulated.
func (d *DetailExtractor) fromTextLayout(doc pdfdoc.Document) ([]model.DetailFact, []string) {
	var facts []model.DetailFact
	var anomalies []string
	for page := 1; page <= doc.PageCount(); page++ {
		text, err := doc.PageText(page)
		if err != nil {
			anomalies = append(anomalies, fmt.Sprintf("page %d: %v", page, err))
			continue
		}
		lines := strings.Split(text, "\n")
		var curName string
		var curDesc []string
		var curLine int
		flush := func() {
			if curName != "" && len(curDesc) > 0 {
				facts = append(facts, d.fact(curName, strings.Join(curDesc, " "), page, curLine))
			}
			curName, curDesc = "", nil
		}
		for i, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if containsAnyDetail(line, d.cfg.ExclusionHeaderHints) || containsAnyDetail(line, d.cfg.FooterMarkers) {
				flush()
				continue
			}
			if name, ok := d.coverageLine(line); ok {
				flush()
				curName, curLine = name, i
				continue
			}
			if curName == "" {
				continue
			}
			if d.paymentOnly(line) {
				continue
			}
			curDesc = append(curDesc, line)
		}
		flush()
	}
	return facts, anomalies
}

// fromSummaryEmbedded pulls description text from page text outside the
// table, keyed by a leading numeric coverage index. Descriptions get the
// numeric-fact cleanup cut.
func (d *DetailExtractor) fromSummaryEmbedded(doc pdfdoc.Document) ([]model.DetailFact, []string) {
	var facts []model.DetailFact
	var anomalies []string
	for page := 1; page <= doc.PageCount(); page++ {
		text, err := doc.PageText(page)
		if err != nil {
			anomalies = append(anomalies, fmt.Sprintf("page %d: %v", page, err))
			continue
		}
		lines := strings.Split(text, "\n")
		for i := 0; i < len(lines); i++ {
			m := d.lineRe.FindStringSubmatch(strings.TrimSpace(lines[i]))
			if m == nil {
				continue
			}
			name := strings.TrimSpace(m[2])
			var desc []string
			for j := i + 1; j < len(lines); j++ {
				next := strings.TrimSpace(lines[j])
				if next == "" || d.lineRe.MatchString(next) || containsAnyDetail(next, d.cfg.FooterMarkers) {
					break
				}
				desc = append(desc, next)
			}
			if len(desc) == 0 {
				continue
			}
			facts = append(facts, d.fact(name, d.cleanEmbedded(strings.Join(desc, " ")), page, i))
		}
	}
	return facts, anomalies
}

// fromSummaryEmbeddedSplit pairs alternating table rows: a label row
// followed by a description row. Cleanup applies as for summary_embedded.
func (d *DetailExtractor) fromSummaryEmbeddedSplit(doc pdfdoc.Document) ([]model.DetailFact, []string) {
	var facts []model.DetailFact
	var anomalies []string
	for page := 1; page <= doc.PageCount(); page++ {
		tables, err := doc.PageTables(page)
		if err != nil {
			anomalies = append(anomalies, fmt.Sprintf("page %d: %v", page, err))
			continue
		}
		for _, t := range tables {
			for i := 0; i+1 < len(t.Rows); i += 2 {
				name := strings.TrimSpace(strings.Join(t.Rows[i], " "))
				desc := strings.TrimSpace(strings.Join(t.Rows[i+1], " "))
				if name == "" || desc == "" || d.amountRe.MatchString(name) {
					continue
				}
				facts = append(facts, d.fact(name, d.cleanEmbedded(desc), t.Page, i))
			}
		}
	}
	return facts, anomalies
}

// eachDescriptionTable visits tables whose header carries both a coverage
// keyword and a description keyword, resolving the two columns.
func (d *DetailExtractor) eachDescriptionTable(doc pdfdoc.Document, anomalies *[]string, visit func(t pdfdoc.Table, nameCol, descCol int)) {
	for page := 1; page <= doc.PageCount(); page++ {
		tables, err := doc.PageTables(page)
		if err != nil {
			*anomalies = append(*anomalies, fmt.Sprintf("page %d: %v", page, err))
			continue
		}
		for _, t := range tables {
			if len(t.Rows) < 2 {
				continue
			}
			header := t.Rows[0]
			nameCol, descCol := -1, -1
			for c, cell := range header {
				if nameCol < 0 && containsAnyDetail(cell, d.det.CoverageKeywords) {
					nameCol = c
				}
				if descCol < 0 && containsAnyDetail(cell, d.cfg.DescriptionKeywords) {
					descCol = c
				}
			}
			if nameCol < 0 || descCol < 0 {
				continue
			}
			visit(t, nameCol, descCol)
		}
	}
}

// coverageLine recognizes the start of a coverage entry in text layout.
func (d *DetailExtractor) coverageLine(line string) (string, bool) {
	if m := d.lineRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[2]), true
	}
	// Payment/term co-occurrence with a leading Hangul name.
	if d.amountRe.MatchString(line) && d.periodRe.MatchString(line) {
		if idx := d.amountRe.FindStringIndex(line); idx != nil && idx[0] > 0 {
			name := strings.TrimSpace(line[:idx[0]])
			if name != "" {
				return name, true
			}
		}
	}
	return "", false
}

// paymentOnly reports whether a line carries nothing but payment/term
// facts.
func (d *DetailExtractor) paymentOnly(line string) bool {
	stripped := d.amountRe.ReplaceAllString(line, "")
	stripped = d.periodRe.ReplaceAllString(stripped, "")
	stripped = strings.Trim(stripped, " \t:·,/()")
	return stripped == ""
}

// cleanEmbedded truncates at the earliest numeric-fact hint so amounts
// never bleed into free-text description fields.
func (d *DetailExtractor) cleanEmbedded(desc string) string {
	if idx := d.limitRe.FindStringIndex(desc); idx != nil {
		desc = strings.TrimSpace(desc[:idx[0]])
	}
	return desc
}

func (d *DetailExtractor) fact(name, desc string, page, rowHint int) model.DetailFact {
	return model.DetailFact{
		CoverageNameRaw:        name,
		BenefitDescriptionText: TruncateAtSentence(desc, d.cfg.MaxDescriptionLen),
		DetailPage:             page,
		DetailRowHint:          rowHint,
		Evidences:              []model.Evidence{{Page: page, Row: rowHint, Note: "detail"}},
	}
}

// sentenceEnders mark boundaries for description truncation.
var sentenceEnders = []string{"다.", ".", "!", "?"}

// TruncateAtSentence cuts text to at most max runes, at the nearest
// preceding sentence boundary. The result never exceeds max and never ends
// mid-sentence when a boundary exists within the window.
func TruncateAtSentence(text string, max int) string {
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	window := string(runes[:max])
	cut := -1
	for _, end := range sentenceEnders {
		if idx := strings.LastIndex(window, end); idx >= 0 && idx+len(end) > cut {
			cut = idx + len(end)
		}
	}
	if cut > 0 {
		return strings.TrimSpace(window[:cut])
	}
	return strings.TrimSpace(window)
}

func containsAnyDetail(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
