package extract

import (
	"strings"
	"testing"

	"github.com/daehwan-oh/coverfact/internal/model"
	"github.com/daehwan-oh/coverfact/internal/pdfdoc"
)

func newReconstructor(t *testing.T) *Reconstructor {
	t.Helper()
	r, err := NewReconstructor(model.DefaultConfig().Hybrid)
	if err != nil {
		t.Fatalf("NewReconstructor: %v", err)
	}
	return r
}

func TestReconstruct(t *testing.T) {
	r := newReconstructor(t)
	doc := &pdfdoc.Stub{
		NumPages: 3,
		Fragments: map[int][]pdfdoc.Fragment{2: {
			// Header band: no value fragment, silently ignored.
			{Text: "담보명 가입금액 보험료", X: 50, Y: 740},
			// Name fragment and value fragment slightly offset vertically,
			// within the band tolerance.
			{Text: "암진단비특약", X: 50, Y: 700.5},
			{Text: "3,000만원 12,300원 100세만기", X: 220, Y: 700},
			// A full value line carrying its own sequence and name.
			{Text: "2. 뇌출혈진단비 2,000만원 15,000원 80세만기", X: 50, Y: 650},
			// Totals band: noise keyword, recorded anomaly.
			{Text: "합계", X: 50, Y: 600},
			{Text: "27,300원", X: 220, Y: 600},
			// Footer outside the table bounds.
			{Text: "8,000만원 발급번호", X: 50, Y: 30},
		}},
	}
	bounds := pdfdoc.Rect{X0: 0, Y0: 100, X1: 600, Y1: 760}

	rows, anomalies, err := r.Reconstruct(doc, 2, bounds)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2: %+v", len(rows), rows)
	}

	// Sorted top to bottom.
	if rows[0].Name != "암진단비특약" {
		t.Errorf("row 0 name = %q, want 암진단비특약", rows[0].Name)
	}
	if rows[0].Amount != "3,000만원" || rows[0].Premium != "12,300원" || rows[0].Period != "100세만기" {
		t.Errorf("row 0 values = %+v", rows[0])
	}
	if rows[1].Name != "뇌출혈진단비" || rows[1].Seq != "2" {
		t.Errorf("row 1 = %+v, want 뇌출혈진단비 with seq 2", rows[1])
	}
	if rows[1].Amount != "2,000만원" || rows[1].Premium != "15,000원" || rows[1].Period != "80세만기" {
		t.Errorf("row 1 values = %+v", rows[1])
	}

	if rows[0].YTop < rows[0].YBottom {
		t.Errorf("row 0 y-range inverted: top %.1f bottom %.1f", rows[0].YTop, rows[0].YBottom)
	}

	// Exactly one anomaly: the rejected totals band. The footer fragment
	// lies outside the bounds and never reaches band parsing.
	if len(anomalies) != 1 || !strings.Contains(anomalies[0], "header/noise") {
		t.Errorf("anomalies = %v, want one header/noise rejection", anomalies)
	}
}

func TestReconstructEmptyRegion(t *testing.T) {
	r := newReconstructor(t)
	doc := &pdfdoc.Stub{NumPages: 2}

	rows, anomalies, err := r.Reconstruct(doc, 2, pdfdoc.Rect{X0: 0, Y0: 0, X1: 600, Y1: 800})
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if len(rows) != 0 || len(anomalies) != 0 {
		t.Errorf("rows = %v anomalies = %v, want none", rows, anomalies)
	}
}

func TestRejectNameShortWithoutWordRun(t *testing.T) {
	r := newReconstructor(t)
	if reason := r.rejectName("가 나"); reason == "" {
		t.Error("fragmented two-character name accepted")
	}
	if reason := r.rejectName("암진단비"); reason != "" {
		t.Errorf("real coverage name rejected: %s", reason)
	}
}
