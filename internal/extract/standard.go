package extract

import (
	"strings"

	"github.com/daehwan-oh/coverfact/internal/model"
	"github.com/daehwan-oh/coverfact/internal/pdfdoc"
)

// RawRow is one coverage row pulled straight out of table cells, before
// semantic decomposition.
type RawRow struct {
	Name    string
	Amount  string
	Premium string
	Period  string
	Row     int // source row index within the table
}

// emptyNameTokens are cell values treated as absent coverage names.
var emptyNameTokens = map[string]bool{"": true, "none": true, "null": true, "-": true}

// EmptyNameRatio computes the fraction of data rows in the raw table whose
// coverage-name cell is empty. It runs before any row filtering: the ratio
// decides whether the table's cells are usable at all.
func EmptyNameRatio(t pdfdoc.Table, sig model.TableSignature) float64 {
	if sig.ColumnMap.CoverageNameIndex == nil {
		return 1
	}
	data := dataRows(t, sig)
	if len(data) == 0 {
		return 1
	}
	empty := 0
	for _, row := range data {
		v := strings.ToLower(strings.TrimSpace(cellAt(row, *sig.ColumnMap.CoverageNameIndex)))
		if emptyNameTokens[v] {
			empty++
		}
	}
	return float64(empty) / float64(len(data))
}

// ExtractStandard reads coverage rows directly from table cells using the
// signature's column map. Row filtering is applied here and only here,
// since hybrid reconstruction carries its own rejection rules.
func ExtractStandard(t pdfdoc.Table, sig model.TableSignature) ([]RawRow, []string) {
	cm := sig.ColumnMap
	if cm.CoverageNameIndex == nil {
		return nil, []string{"no coverage name column in signature, standard extraction skipped"}
	}

	var rows []RawRow
	var skipped []string
	offset := sig.HeaderRowIndex + 1
	for i, row := range dataRows(t, sig) {
		name := cellAt(row, *cm.CoverageNameIndex)
		if reason := rejectRow(name, sig.RowFilter); reason != "" {
			if reason != "empty name" {
				skipped = append(skipped, reason)
			}
			continue
		}
		rr := RawRow{Name: name, Row: offset + i}
		if cm.CoverageAmountIndex != nil {
			rr.Amount = cellAt(row, *cm.CoverageAmountIndex)
		}
		if cm.PremiumIndex != nil {
			rr.Premium = cellAt(row, *cm.PremiumIndex)
		}
		if cm.PeriodIndex != nil {
			rr.Period = cellAt(row, *cm.PeriodIndex)
		}
		rows = append(rows, rr)
	}
	return rows, skipped
}

// rejectRow returns a non-empty reason when the coverage-name text marks a
// non-coverage row.
func rejectRow(name string, rules model.RowFilterRules) string {
	name = strings.TrimSpace(name)
	if emptyNameTokens[strings.ToLower(name)] {
		return "empty name"
	}
	n := len([]rune(name))
	if n < rules.MinNameLen || (rules.MaxNameLen > 0 && n > rules.MaxNameLen) {
		return "name length out of bounds: " + name
	}
	for _, kw := range rules.TotalsKeywords {
		if strings.Contains(name, kw) {
			return "totals row: " + name
		}
	}
	for _, kw := range rules.DisclaimerKeywords {
		if strings.Contains(name, kw) {
			return "disclaimer row: " + name
		}
	}
	if isBareInt(name) {
		return "bare row number: " + name
	}
	return ""
}

func dataRows(t pdfdoc.Table, sig model.TableSignature) [][]string {
	start := sig.HeaderRowIndex + 1
	if start < 0 {
		start = 0
	}
	if start >= len(t.Rows) {
		return nil
	}
	return t.Rows[start:]
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBareInt(s string) bool {
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
