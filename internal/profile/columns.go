package profile

import (
	"fmt"

	"github.com/daehwan-oh/coverfact/internal/model"
	"github.com/daehwan-oh/coverfact/internal/pdfdoc"
)

// mapper infers a column-to-field mapping for one detected table.
type mapper struct {
	cfg  model.ColumnConfig
	det  model.DetectionConfig
	pats *patterns
}

// infer maps columns to fields. For Pass-A tables header keywords drive the
// mapping with a content-based fallback for the name column; Pass-B tables
// use the pure content scorer for every field.
func (m *mapper) infer(t pdfdoc.Table, headerRow int, pass model.DetectionPass) (model.ColumnMap, []string) {
	data := t.Rows[headerRow+1:]
	cols := colCount(t.Rows)

	cm := model.ColumnMap{}
	var notes []string

	// Step 1: row-number column detection. A mostly-integer first column is
	// an artifact, never the coverage name.
	excluded := map[int]bool{}
	if m.hasRowNumberColumn(data) {
		cm.HasRowNumberColumn = true
		cm.RowNumberColumnIdx = model.Idx(0)
		excluded[0] = true
	}

	// Step 2: low-diversity category columns are equally ineligible.
	for c := 0; c < cols; c++ {
		if !excluded[c] && m.isCategoryColumn(data, c) {
			excluded[c] = true
			notes = append(notes, fmt.Sprintf("column %d classified as category column", c))
		}
	}

	if pass == model.PassContent {
		return m.inferByContent(data, cols, excluded, cm, notes)
	}

	// Step 3: header keyword containment. Excluded indices are off limits for
	// every field; a category header often repeats a field keyword.
	header := t.Rows[headerRow]
	for c := 0; c < cols; c++ {
		cell := cellAt(header, c)
		if cell == "" || excluded[c] {
			continue
		}
		if cm.CoverageNameIndex == nil && containsAny(cell, m.det.CoverageKeywords) {
			cm.CoverageNameIndex = model.Idx(c)
			continue
		}
		if cm.CoverageAmountIndex == nil && containsAny(cell, m.det.AmountKeywords) {
			cm.CoverageAmountIndex = model.Idx(c)
			continue
		}
		if cm.PremiumIndex == nil && containsAny(cell, m.det.PremiumKeywords) {
			cm.PremiumIndex = model.Idx(c)
			continue
		}
		if cm.PeriodIndex == nil && containsAny(cell, m.det.PeriodKeywords) {
			cm.PeriodIndex = model.Idx(c)
		}
	}
	cm.MappingMethod = model.MappingHeader
	cm.MappingConfidence = 1.0

	// Step 4: no header keyword yielded a name column, fall back to
	// content-based detection.
	if cm.CoverageNameIndex == nil {
		tried := map[int]bool{}
		for c := range excluded {
			tried[c] = true
		}
		for _, idx := range []*int{cm.CoverageAmountIndex, cm.PremiumIndex, cm.PeriodIndex} {
			if idx != nil {
				tried[*idx] = true
			}
		}
		if best, score := m.scoreNameColumn(data, cols, tried); best >= 0 && score >= m.cfg.MinContentScore {
			cm.CoverageNameIndex = model.Idx(best)
			cm.MappingMethod = model.MappingContent
			notes = append(notes, fmt.Sprintf("coverage name column %d chosen by content score %.2f", best, score))
		} else {
			notes = append(notes, "no coverage name column resolvable")
		}
	}
	return cm, notes
}

// hasRowNumberColumn samples first-column values of data rows.
func (m *mapper) hasRowNumberColumn(data [][]string) bool {
	sample := sampleRows(data, 0, m.cfg.SampleRows)
	if len(sample) == 0 {
		return false
	}
	ints := 0
	for _, row := range sample {
		if pureInt(cellAt(row, 0)) {
			ints++
		}
	}
	return float64(ints)/float64(len(sample)) > m.cfg.RowNumberRatio
}

// isCategoryColumn applies all four category criteria over sampled rows:
// mostly empty, low diversity, short values, keyword-dominated.
func (m *mapper) isCategoryColumn(data [][]string, col int) bool {
	sample := sampleRows(data, 0, m.cfg.SampleRows)
	if len(sample) == 0 {
		return false
	}
	empty := 0
	uniq := map[string]bool{}
	var lenSum, kwHits, nonEmpty int
	for _, row := range sample {
		v := cellAt(row, col)
		if v == "" {
			empty++
			continue
		}
		nonEmpty++
		uniq[v] = true
		lenSum += len([]rune(v))
		if containsAny(v, m.cfg.CategoryKeywords) {
			kwHits++
		}
	}
	total := float64(len(sample))
	emptyRatio := float64(empty) / total
	// Diversity is measured against all sampled rows, not just non-empty
	// ones: a column that is half empty and half one repeated label still
	// counts as low diversity.
	uniqueRatio := float64(len(uniq)) / total
	if nonEmpty == 0 {
		return false
	}
	avgLen := float64(lenSum) / float64(nonEmpty)
	kwRatio := float64(kwHits) / float64(nonEmpty)

	// Sparse columns and keyword-saturated columns are both category
	// markers; diversity and length bounds apply to either shape.
	return uniqueRatio < m.cfg.CategoryUniqueRatio &&
		avgLen < m.cfg.CategoryAvgLen &&
		(emptyRatio > m.cfg.CategoryEmptyRatio || kwRatio > m.cfg.CategoryKeywordRatio)
}

// scoreNameColumn scores untried columns by a weighted combination of
// Hangul ratio, normalized average length, and inverse numeric ratio.
// Left-most wins ties.
func (m *mapper) scoreNameColumn(data [][]string, cols int, tried map[int]bool) (int, float64) {
	sample := sampleRows(data, 0, m.cfg.SampleRows)
	best, bestScore := -1, 0.0
	for c := 0; c < cols; c++ {
		if tried[c] {
			continue
		}
		var hangulSum, numericSum, lenSum float64
		n := 0
		for _, row := range sample {
			v := cellAt(row, c)
			if v == "" {
				continue
			}
			n++
			hangulSum += hangulRatio(v)
			numericSum += numericRatio(v)
			lenSum += float64(len([]rune(v)))
		}
		if n == 0 {
			continue
		}
		avgHangul := hangulSum / float64(n)
		avgNumeric := numericSum / float64(n)
		avgLen := lenSum / float64(n)

		score := 0.0
		if avgHangul > 0.5 {
			score += m.cfg.HangulWeight
		}
		normLen := avgLen / 20
		if normLen > 1 {
			normLen = 1
		}
		score += m.cfg.LengthWeight * normLen
		score += m.cfg.NumericWeight * (1 - avgNumeric)

		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore
}

// inferByContent resolves every field by content pattern frequency
// (Pass-B tables have no reliable header). Mapping confidence is the
// fraction of the four fields resolved; a field whose supporting ratio
// falls below its threshold degrades to null with a note rather than
// raising.
func (m *mapper) inferByContent(data [][]string, cols int, excluded map[int]bool, cm model.ColumnMap, notes []string) (model.ColumnMap, []string) {
	cm.MappingMethod = model.MappingContent

	type colStats struct {
		amount, premium, period float64
	}
	sample := sampleRows(data, 0, m.det.PassBSampleRows)
	stats := make([]colStats, cols)
	for c := 0; c < cols; c++ {
		var a, pr, pe, n float64
		for _, row := range sample {
			v := cellAt(row, c)
			if v == "" {
				continue
			}
			n++
			if m.pats.amount.MatchString(v) {
				a++
			}
			if m.pats.premium.MatchString(v) {
				pr++
			}
			if m.pats.period.MatchString(v) {
				pe++
			}
		}
		if n > 0 {
			stats[c] = colStats{amount: a / n, premium: pr / n, period: pe / n}
		}
	}

	claimed := map[int]bool{}
	pick := func(score func(colStats) float64, threshold float64, field string) *int {
		best, bestScore := -1, 0.0
		for c := 0; c < cols; c++ {
			if excluded[c] || claimed[c] {
				continue
			}
			if s := score(stats[c]); s > bestScore {
				best, bestScore = c, s
			}
		}
		if best < 0 || bestScore < threshold {
			notes = append(notes, fmt.Sprintf("%s column below confidence threshold, degraded to null", field))
			return nil
		}
		claimed[best] = true
		return model.Idx(best)
	}

	// Amount before premium: amount cells carry unit suffixes that the
	// looser premium pattern also matches.
	cm.CoverageAmountIndex = pick(func(s colStats) float64 { return s.amount }, m.det.PassBAmountRatio, "amount")
	cm.PremiumIndex = pick(func(s colStats) float64 { return s.premium }, m.det.PassBPremPeriodRatio, "premium")
	cm.PeriodIndex = pick(func(s colStats) float64 { return s.period }, m.det.PassBPremPeriodRatio, "period")

	tried := map[int]bool{}
	for c := range excluded {
		tried[c] = true
	}
	for c := range claimed {
		tried[c] = true
	}
	if best, score := m.scoreNameColumn(data, cols, tried); best >= 0 && score >= m.cfg.MinContentScore {
		cm.CoverageNameIndex = model.Idx(best)
	} else {
		notes = append(notes, "coverage name column below confidence threshold, degraded to null")
	}

	resolved := 0
	for _, idx := range []*int{cm.CoverageNameIndex, cm.CoverageAmountIndex, cm.PremiumIndex, cm.PeriodIndex} {
		if idx != nil {
			resolved++
		}
	}
	cm.MappingConfidence = float64(resolved) / 4
	return cm, notes
}

func colCount(rows [][]string) int {
	max := 0
	for _, row := range rows {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}
