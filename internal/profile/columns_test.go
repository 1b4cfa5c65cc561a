package profile

import (
	"fmt"
	"testing"

	"github.com/daehwan-oh/coverfact/internal/model"
	"github.com/daehwan-oh/coverfact/internal/pdfdoc"
)

func newMapper(t *testing.T) *mapper {
	t.Helper()
	cfg := model.DefaultConfig()
	pats, err := compilePatterns(cfg.Detection)
	if err != nil {
		t.Fatalf("compilePatterns: %v", err)
	}
	return &mapper{cfg: cfg.Columns, det: cfg.Detection, pats: pats}
}

func tableOf(rows [][]string) pdfdoc.Table {
	return pdfdoc.Table{Page: 2, Index: 0, Rows: rows}
}

func coverageRows(n int, prefix []string) [][]string {
	names := []string{"암진단비", "뇌출혈진단비", "급성심근경색진단비", "질병수술비", "상해수술비",
		"질병입원일당", "상해입원일당", "암수술비", "유사암진단비", "응급실내원비", "골절진단비", "화상진단비"}
	var rows [][]string
	for i := 0; i < n; i++ {
		row := append([]string{}, prefix...)
		row = append(row, names[i%len(names)], fmt.Sprintf("%d,000만원", i%9+1), fmt.Sprintf("1%d,300원", i%9), "100세만기")
		rows = append(rows, row)
	}
	return rows
}

func TestInferHeaderKeywordMapping(t *testing.T) {
	m := newMapper(t)
	rows := append([][]string{{"담보명", "가입금액", "보험료", "보험기간"}}, coverageRows(12, nil)...)
	cm, _ := m.infer(tableOf(rows), 0, model.PassKeyword)

	if cm.MappingMethod != model.MappingHeader {
		t.Errorf("method = %s, want header_keyword", cm.MappingMethod)
	}
	if cm.CoverageNameIndex == nil || *cm.CoverageNameIndex != 0 {
		t.Errorf("name index = %v, want 0", cm.CoverageNameIndex)
	}
	if cm.CoverageAmountIndex == nil || *cm.CoverageAmountIndex != 1 {
		t.Errorf("amount index = %v, want 1", cm.CoverageAmountIndex)
	}
	if cm.PremiumIndex == nil || *cm.PremiumIndex != 2 {
		t.Errorf("premium index = %v, want 2", cm.PremiumIndex)
	}
	if cm.PeriodIndex == nil || *cm.PeriodIndex != 3 {
		t.Errorf("period index = %v, want 3", cm.PeriodIndex)
	}
	if cm.MappingConfidence != 1.0 {
		t.Errorf("confidence = %.2f, want 1.0", cm.MappingConfidence)
	}
}

func TestInferRowNumberColumnExcluded(t *testing.T) {
	m := newMapper(t)
	rows := [][]string{{"번호", "담보명", "가입금액", "보험료", "보험기간"}}
	for i, r := range coverageRows(12, nil) {
		rows = append(rows, append([]string{fmt.Sprintf("%d", i+1)}, r...))
	}
	cm, _ := m.infer(tableOf(rows), 0, model.PassKeyword)

	if !cm.HasRowNumberColumn || cm.RowNumberColumnIdx == nil || *cm.RowNumberColumnIdx != 0 {
		t.Fatalf("row-number column not detected: %+v", cm)
	}
	if cm.CoverageNameIndex == nil || *cm.CoverageNameIndex != 1 {
		t.Errorf("name index = %v, want 1 (column 0 is row numbers)", cm.CoverageNameIndex)
	}
}

func TestInferCategoryColumnExcluded(t *testing.T) {
	m := newMapper(t)
	rows := [][]string{{"구분", "담보명", "가입금액", "보험료", "보험기간"}}
	cats := []string{"기본계약", "선택계약"}
	for i, r := range coverageRows(12, nil) {
		rows = append(rows, append([]string{cats[i%2]}, r...))
	}
	cm, notes := m.infer(tableOf(rows), 0, model.PassKeyword)

	if cm.CoverageNameIndex == nil || *cm.CoverageNameIndex != 1 {
		t.Errorf("name index = %v, want 1 (column 0 is a category column)", cm.CoverageNameIndex)
	}
	found := false
	for _, n := range notes {
		if n == "column 0 classified as category column" {
			found = true
		}
	}
	if !found {
		t.Errorf("category exclusion not noted: %v", notes)
	}
}

func TestInferExcludedColumnNotClaimedByValueFields(t *testing.T) {
	// A category column whose header repeats a field keyword must not be
	// claimed for that field either.
	m := newMapper(t)
	rows := [][]string{{"보험료 구분", "담보명", "가입금액", "보험료", "보험기간"}}
	cats := []string{"기본계약", "선택계약"}
	for i, r := range coverageRows(12, nil) {
		rows = append(rows, append([]string{cats[i%2]}, r...))
	}
	cm, _ := m.infer(tableOf(rows), 0, model.PassKeyword)

	if cm.CoverageNameIndex == nil || *cm.CoverageNameIndex != 1 {
		t.Errorf("name index = %v, want 1", cm.CoverageNameIndex)
	}
	if cm.PremiumIndex == nil || *cm.PremiumIndex != 3 {
		t.Errorf("premium index = %v, want 3 (column 0 is a category column)", cm.PremiumIndex)
	}
	if cm.CoverageAmountIndex == nil || *cm.CoverageAmountIndex != 2 {
		t.Errorf("amount index = %v, want 2", cm.CoverageAmountIndex)
	}
}

func TestInferContentFallbackForName(t *testing.T) {
	// No header cell matches a coverage keyword; the name column must come
	// from content scoring instead.
	m := newMapper(t)
	rows := append([][]string{{"항목", "가입금액", "보험료", "보험기간"}}, coverageRows(12, nil)...)
	cm, _ := m.infer(tableOf(rows), 0, model.PassKeyword)

	if cm.CoverageNameIndex == nil || *cm.CoverageNameIndex != 0 {
		t.Errorf("name index = %v, want 0 via content score", cm.CoverageNameIndex)
	}
	if cm.MappingMethod != model.MappingContent {
		t.Errorf("method = %s, want content_pattern after fallback", cm.MappingMethod)
	}
}

func TestInferByContentPassB(t *testing.T) {
	m := newMapper(t)
	rows := coverageRows(12, nil)
	cm, _ := m.infer(tableOf(rows), -1, model.PassContent)

	if cm.MappingMethod != model.MappingContent {
		t.Errorf("method = %s, want content_pattern", cm.MappingMethod)
	}
	if cm.CoverageNameIndex == nil || *cm.CoverageNameIndex != 0 {
		t.Errorf("name index = %v, want 0", cm.CoverageNameIndex)
	}
	if cm.CoverageAmountIndex == nil || *cm.CoverageAmountIndex != 1 {
		t.Errorf("amount index = %v, want 1", cm.CoverageAmountIndex)
	}
	if cm.PremiumIndex == nil || *cm.PremiumIndex != 2 {
		t.Errorf("premium index = %v, want 2", cm.PremiumIndex)
	}
	if cm.PeriodIndex == nil || *cm.PeriodIndex != 3 {
		t.Errorf("period index = %v, want 3", cm.PeriodIndex)
	}
	if cm.MappingConfidence != 1.0 {
		t.Errorf("confidence = %.2f, want 1.0 with all four resolved", cm.MappingConfidence)
	}
}

func TestInferByContentDegradesMissingField(t *testing.T) {
	// Rows without any period text: the period field must degrade to null
	// and the confidence drop to 3/4.
	m := newMapper(t)
	var rows [][]string
	for i := 0; i < 12; i++ {
		rows = append(rows, []string{"암진단비", fmt.Sprintf("%d,000만원", i%9+1), fmt.Sprintf("1%d,300원", i%9)})
	}
	cm, notes := m.infer(tableOf(rows), -1, model.PassContent)

	if cm.PeriodIndex != nil {
		t.Errorf("period index = %v, want nil", cm.PeriodIndex)
	}
	if cm.MappingConfidence != 0.75 {
		t.Errorf("confidence = %.2f, want 0.75", cm.MappingConfidence)
	}
	degraded := false
	for _, n := range notes {
		if n == "period column below confidence threshold, degraded to null" {
			degraded = true
		}
	}
	if !degraded {
		t.Errorf("degradation not noted: %v", notes)
	}
}
