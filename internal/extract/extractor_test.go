package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/daehwan-oh/coverfact/internal/model"
	"github.com/daehwan-oh/coverfact/internal/pdfdoc"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor(model.DefaultConfig())
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	return e
}

func sampleFingerprint() model.Fingerprint {
	return model.Fingerprint{FileSizeBytes: 1000, PageCount: 3, ContentHash: "deadbeef", SourceBasename: "s.pdf"}
}

func extractProfile(fp model.Fingerprint) *model.Profile {
	sig := summarySig(0)
	return &model.Profile{
		ProfileVersion: "2",
		Insurer:        "samsung",
		Variant:        "default",
		PDFFingerprint: &fp,
		SummaryTable: model.SummaryTable{
			PrimarySignatures: []model.TableSignature{sig},
			TableSignatures:   []model.TableSignature{sig},
		},
	}
}

func summaryDoc(rows [][]string) *pdfdoc.Stub {
	return &pdfdoc.Stub{
		NumPages: 3,
		Texts:    map[int]string{1: "행복한 종합보험\n"},
		Tables: map[int][]pdfdoc.Table{2: {{
			Page: 2, Index: 0, Rows: rows,
			Bounds: pdfdoc.Rect{X0: 0, Y0: 100, X1: 600, Y1: 760},
		}}},
	}
}

func standardRowsDoc() *pdfdoc.Stub {
	return summaryDoc([][]string{
		{"담보명", "가입금액", "보험료", "보험기간"},
		{"암진단비", "3,000만원", "12,300원", "100세만기"},
		{"질병수술비", "500만원", "4,100원", "100세만기"},
	})
}

func TestRunGateMissingFingerprint(t *testing.T) {
	e := newTestExtractor(t)
	prof := extractProfile(sampleFingerprint())
	prof.PDFFingerprint = nil

	_, err := e.Run(standardRowsDoc(), sampleFingerprint(), prof, "", nil)
	var ge *model.GateError
	if !errors.As(err, &ge) || ge.Reason != model.GateMissingFingerprint {
		t.Fatalf("error = %v, want missing_fingerprint gate", err)
	}
}

func TestRunGateFingerprintMismatch(t *testing.T) {
	e := newTestExtractor(t)
	prof := extractProfile(sampleFingerprint())
	fp := sampleFingerprint()
	fp.ContentHash = "other"
	fp.FileSizeBytes = 2000

	_, err := e.Run(standardRowsDoc(), fp, prof, "", nil)
	var ge *model.GateError
	if !errors.As(err, &ge) || ge.Reason != model.GateFingerprintMismatch {
		t.Fatalf("error = %v, want fingerprint_mismatch gate", err)
	}
	if len(ge.Fields) != 2 {
		t.Errorf("fields = %v, want the two changed fields itemized", ge.Fields)
	}
}

func TestRunStandardExtraction(t *testing.T) {
	e := newTestExtractor(t)

	res, err := e.Run(standardRowsDoc(), sampleFingerprint(), extractProfile(sampleFingerprint()), "", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Facts) != 2 {
		t.Fatalf("facts = %d, want 2: %+v", len(res.Facts), res.Facts)
	}

	f := res.Facts[0]
	if f.InsurerKey != "samsung" || f.Variant != "default" {
		t.Errorf("stamping = %s/%s, want samsung/default", f.InsurerKey, f.Variant)
	}
	if f.Product == "" {
		t.Error("product key not stamped from page-1 identity")
	}
	if f.CoverageNameRaw != "암진단비" || f.ProposalFacts.CoverageAmountText != "3,000만원" {
		t.Errorf("fact 0 = %+v", f)
	}
	if len(f.ProposalFacts.Evidence) != 1 || f.ProposalFacts.Evidence[0].Note != "standard" {
		t.Errorf("evidence = %+v, want standard-strategy note", f.ProposalFacts.Evidence)
	}

	if res.Parity.Status != ParityPass || res.Parity.Extracted != 2 {
		t.Errorf("parity = %+v, want first-run pass over 2 facts", res.Parity)
	}
}

func TestRunIssuerCodeStamping(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Identity.IssuerCodes = map[string]string{"samsung": "S01"}
	e, err := NewExtractor(cfg)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	res, err := e.Run(standardRowsDoc(), sampleFingerprint(), extractProfile(sampleFingerprint()), "", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, f := range res.Facts {
		if f.IssuerCode != "S01" {
			t.Fatalf("issuer code = %q, want S01", f.IssuerCode)
		}
	}
}

func TestRunHybridAutoTrigger(t *testing.T) {
	e := newTestExtractor(t)

	// 4 of 10 coverage-name cells are empty: the ratio exceeds the trigger
	// and the cell grid is abandoned for fragment reconstruction.
	rows := [][]string{{"담보명", "가입금액", "보험료", "보험기간"}}
	for i := 0; i < 10; i++ {
		name := "상해수술비"
		if i < 4 {
			name = ""
		}
		rows = append(rows, []string{name, "500만원", "4,100원", "100세만기"})
	}
	doc := summaryDoc(rows)
	doc.Fragments = map[int][]pdfdoc.Fragment{2: {
		{Text: "암진단비특약", X: 50, Y: 700},
		{Text: "3,000만원 12,300원 100세만기", X: 220, Y: 700},
	}}

	res, err := e.Run(doc, sampleFingerprint(), extractProfile(sampleFingerprint()), "", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Facts) != 1 || res.Facts[0].CoverageNameRaw != "암진단비특약" {
		t.Fatalf("facts = %+v, want the single reconstructed row", res.Facts)
	}
	if res.Facts[0].ProposalFacts.Evidence[0].Note != "hybrid" {
		t.Errorf("evidence = %+v, want hybrid-strategy note", res.Facts[0].ProposalFacts.Evidence)
	}

	triggered := false
	for _, a := range res.Parity.Anomalies {
		if strings.Contains(a, "hybrid reconstruction") {
			triggered = true
		}
	}
	if !triggered {
		t.Errorf("auto-trigger not recorded in anomalies: %v", res.Parity.Anomalies)
	}
}

func TestRunForceStandardOverride(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Extract.ForceStandard = true
	e, err := NewExtractor(cfg)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	rows := [][]string{{"담보명", "가입금액", "보험료", "보험기간"}}
	for i := 0; i < 10; i++ {
		name := "상해수술비"
		if i < 4 {
			name = ""
		}
		rows = append(rows, []string{name, "500만원", "4,100원", "100세만기"})
	}
	doc := summaryDoc(rows)
	doc.Fragments = map[int][]pdfdoc.Fragment{2: {
		{Text: "암진단비특약", X: 50, Y: 700},
		{Text: "3,000만원 12,300원 100세만기", X: 220, Y: 700},
	}}

	res, err := e.Run(doc, sampleFingerprint(), extractProfile(sampleFingerprint()), "", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Facts) != 6 {
		t.Fatalf("facts = %d, want the 6 named cell rows", len(res.Facts))
	}
	for _, f := range res.Facts {
		if f.ProposalFacts.Evidence[0].Note != "standard" {
			t.Fatalf("evidence = %+v, want standard despite the empty-name ratio", f.ProposalFacts.Evidence)
		}
	}
}

func TestRunFragmentRouting(t *testing.T) {
	e := newTestExtractor(t)
	doc := summaryDoc([][]string{
		{"담보명", "가입금액", "보험료", "보험기간"},
		{"암진단비", "3,000만원", "12,300원", "100세만기"},
		{"연간 3회한", "", "", ""},
	})

	res, err := e.Run(doc, sampleFingerprint(), extractProfile(sampleFingerprint()), "", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Facts) != 1 || len(res.Fragments) != 1 {
		t.Fatalf("facts/fragments = %d/%d, want 1/1", len(res.Facts), len(res.Fragments))
	}
	if res.Fragments[0].CoverageNameRaw != "연간 3회한" {
		t.Errorf("fragment = %q", res.Fragments[0].CoverageNameRaw)
	}
	// Parity counts the primary stream only.
	if res.Parity.Extracted != 1 {
		t.Errorf("parity extracted = %d, want 1", res.Parity.Extracted)
	}
}

func TestRunDetailJoin(t *testing.T) {
	e := newTestExtractor(t)
	prof := extractProfile(sampleFingerprint())
	prof.Detail = model.DetailStructure{Type: model.DetailDescriptionColumn}

	doc := standardRowsDoc()
	doc.Tables[3] = []pdfdoc.Table{{Page: 3, Index: 0, Rows: [][]string{
		{"담보명", "보장내용"},
		{"1. 암진단비", "암으로 진단 확정시 지급합니다"},
	}}}

	res, err := e.Run(doc, sampleFingerprint(), prof, "", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	byName := map[string]model.FactRecord{}
	for _, f := range res.Facts {
		byName[f.CoverageNameRaw] = f
	}

	joined := byName["암진단비"]
	if joined.DetailFacts == nil {
		t.Fatal("detail fact not joined despite the matching normalized name")
	}
	if joined.DetailFacts.BenefitDescriptionText != "암으로 진단 확정시 지급합니다" {
		t.Errorf("joined description = %q", joined.DetailFacts.BenefitDescriptionText)
	}
	if byName["질병수술비"].DetailFacts != nil {
		t.Error("unmatched fact carries a detail join")
	}
}

func TestRunVariantSignatureFallsBackToStandard(t *testing.T) {
	e := newTestExtractor(t)
	prof := extractProfile(sampleFingerprint())
	// Demote the signature: variant regions run hybrid-first, and with no
	// fragments on the page the cell grid is the fallback.
	prof.SummaryTable.PrimarySignatures = nil
	prof.SummaryTable.VariantSignatures = prof.SummaryTable.TableSignatures

	res, err := e.Run(standardRowsDoc(), sampleFingerprint(), prof, "", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Facts) != 2 {
		t.Fatalf("facts = %d, want 2 from the standard fallback", len(res.Facts))
	}
	if res.Facts[0].ProposalFacts.Evidence[0].Note != "standard" {
		t.Errorf("evidence = %+v, want standard fallback", res.Facts[0].ProposalFacts.Evidence)
	}
}

func TestRunParityAgainstBaseline(t *testing.T) {
	e := newTestExtractor(t)

	res, err := e.Run(standardRowsDoc(), sampleFingerprint(), extractProfile(sampleFingerprint()), "", &Baseline{Count: 4})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Parity.Status != ParityFail || res.Parity.Baseline != 4 {
		t.Errorf("parity = %+v, want fail against baseline 4", res.Parity)
	}
}
