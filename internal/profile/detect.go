package profile

import (
	"fmt"
	"strings"

	"github.com/daehwan-oh/coverfact/internal/model"
	"github.com/daehwan-oh/coverfact/internal/pdfdoc"
)

// classification is the outcome of running the detectors on one table.
type classification struct {
	matched   bool
	primary   bool
	pass      model.DetectionPass
	headerRow int
	evidence  []string
}

// detector implements the two discovery passes. Pass B only ever sees
// tables on pages Pass A did not claim; the claimed-pages set is owned by
// the builder and threaded through explicitly.
type detector struct {
	cfg  model.DetectionConfig
	pats *patterns
}

// passA classifies a table by header keywords. Tables whose header also
// carries description-boilerplate markers are rescued as variant signatures
// when their data rows still look like a coverage listing.
func (d *detector) passA(t pdfdoc.Table) classification {
	headerRow, headerText := d.headerOf(t)
	if headerText == "" {
		return classification{}
	}

	covKw := matchedKeyword(headerText, d.cfg.CoverageKeywords)
	amtKw := matchedKeyword(headerText, d.cfg.AmountKeywords)
	premKw := matchedKeyword(headerText, d.cfg.PremiumKeywords)
	perKw := matchedKeyword(headerText, d.cfg.PeriodKeywords)
	if covKw == "" || amtKw == "" || (premKw == "" && perKw == "") {
		return classification{}
	}

	data := t.Rows[headerRow+1:]
	evidence := []string{
		fmt.Sprintf("header keywords: coverage=%q amount=%q premium=%q period=%q", covKw, amtKw, premKw, perKw),
	}

	if disq := matchedKeyword(headerText, d.cfg.DisqualifyKeywords); disq != "" {
		// Provisional re-classification as variant instead of rejection,
		// provided the data rows pass the secondary check.
		if len(data) < d.cfg.MinVariantRows || !d.rescueCheck(data) {
			return classification{}
		}
		evidence = append(evidence,
			fmt.Sprintf("disqualifier %q present, rescued as variant by data-row check", disq))
		return classification{matched: true, primary: false, pass: model.PassKeyword, headerRow: headerRow, evidence: evidence}
	}

	if len(data) < d.cfg.MinPrimaryRows {
		if len(data) < d.cfg.MinVariantRows {
			return classification{}
		}
		evidence = append(evidence, fmt.Sprintf("row count %d below primary minimum", len(data)))
		return classification{matched: true, primary: false, pass: model.PassKeyword, headerRow: headerRow, evidence: evidence}
	}
	return classification{matched: true, primary: true, pass: model.PassKeyword, headerRow: headerRow, evidence: evidence}
}

// rescueCheck samples data rows of a disqualified candidate: fewer than the
// configured ratio of long clause-like rows, and more than half the rows
// carrying an amount pattern next to a premium or period pattern.
func (d *detector) rescueCheck(data [][]string) bool {
	sample := sampleRows(data, 0, d.cfg.PassBSampleRows)
	if len(sample) == 0 {
		return false
	}
	longText, cooccur := 0, 0
	for _, row := range sample {
		joined := strings.Join(row, " ")
		if d.isClauseLike(row) {
			longText++
		}
		if d.pats.amount.MatchString(joined) &&
			(d.pats.premium.MatchString(joined) || d.pats.period.MatchString(joined)) {
			cooccur++
		}
	}
	n := float64(len(sample))
	return float64(longText)/n < d.cfg.RescueLongTextRatio &&
		float64(cooccur)/n > d.cfg.RescueCooccurRatio
}

// isClauseLike flags long free-text rows: over the character cutoff,
// embedded newlines, or explicit clause phrases in any cell.
func (d *detector) isClauseLike(row []string) bool {
	total := 0
	for _, cell := range row {
		total += len([]rune(cell))
		if strings.Contains(cell, "\n") || containsAny(cell, d.cfg.ClauseKeywords) {
			return true
		}
	}
	return total > d.cfg.RescueLongTextChars
}

// passB classifies a table by content-pattern frequencies alone. All Pass-B
// matches are variant signatures.
func (d *detector) passB(t pdfdoc.Table) classification {
	if len(t.Rows) < d.cfg.MinVariantRows {
		return classification{}
	}
	sample := sampleRows(t.Rows, 0, d.cfg.PassBSampleRows)
	n := float64(len(sample))

	var amount, premPeriod, hangul, clause float64
	for _, row := range sample {
		joined := strings.Join(row, " ")
		if d.pats.amount.MatchString(joined) {
			amount++
		}
		if d.pats.premium.MatchString(joined) || d.pats.period.MatchString(joined) {
			premPeriod++
		}
		if hasHangul(cellAt(row, 0)) || hasHangul(cellAt(row, 1)) {
			hangul++
		}
		if containsAny(joined, d.cfg.ClauseKeywords) {
			clause++
		}
	}

	if amount/n < d.cfg.PassBAmountRatio ||
		premPeriod/n < d.cfg.PassBPremPeriodRatio ||
		hangul/n < d.cfg.PassBHangulRatio ||
		clause/n >= d.cfg.PassBClauseRatio {
		return classification{}
	}

	return classification{
		matched:   true,
		primary:   false,
		pass:      model.PassContent,
		headerRow: -1, // content-mapped tables have no trusted header row
		evidence: []string{fmt.Sprintf(
			"content patterns: amount=%.2f premium/period=%.2f hangul=%.2f clause=%.2f",
			amount/n, premPeriod/n, hangul/n, clause/n)},
	}
}

// headerOf picks the header row: the row among the first HeaderRows rows
// with the most field-keyword hits.
func (d *detector) headerOf(t pdfdoc.Table) (int, string) {
	limit := d.cfg.HeaderRows
	if limit > len(t.Rows) {
		limit = len(t.Rows)
	}
	bestRow, bestHits := 0, -1
	for i := 0; i < limit; i++ {
		text := strings.Join(t.Rows[i], " ")
		hits := 0
		for _, kws := range [][]string{d.cfg.CoverageKeywords, d.cfg.AmountKeywords, d.cfg.PremiumKeywords, d.cfg.PeriodKeywords} {
			if containsAny(text, kws) {
				hits++
			}
		}
		if hits > bestHits {
			bestRow, bestHits = i, hits
		}
	}
	if bestHits <= 0 {
		return 0, ""
	}
	return bestRow, strings.Join(t.Rows[bestRow], " ")
}
