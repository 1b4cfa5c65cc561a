package identity

import (
	"errors"
	"testing"

	"github.com/daehwan-oh/coverfact/internal/model"
	"github.com/daehwan-oh/coverfact/internal/pdfdoc"
)

func newExtractor(t *testing.T, mutate func(*model.IdentityConfig)) *Extractor {
	t.Helper()
	cfg := model.DefaultConfig().Identity
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := NewExtractor(cfg)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	return e
}

func docWithPage1(text string) *pdfdoc.Stub {
	return &pdfdoc.Stub{NumPages: 3, Texts: map[int]string{1: text}}
}

func TestExtractIssuerPattern(t *testing.T) {
	e := newExtractor(t, func(cfg *model.IdentityConfig) {
		cfg.IssuerPatterns = map[string][]string{
			"samsung": {`삼성화재\s*\S*\s*종합보험\S*`},
		}
	})
	doc := docWithPage1("가입설계서\n삼성화재 마이헬스 종합보험(무배당)\n피보험자: 남자 40세\n")

	ident, variant, notes, err := e.Extract(doc, "samsung", "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ident.ProductNameRaw == "" || ident.ProductKey == "" {
		t.Fatalf("identity not resolved: %+v", ident)
	}
	if variant.VariantKey == "default" {
		t.Errorf("variant = default, want sex/age variant from the following block")
	}
	if len(notes) != 0 {
		t.Errorf("unexpected notes: %v", notes)
	}
}

func TestExtractGenericFallback(t *testing.T) {
	e := newExtractor(t, nil)
	doc := docWithPage1("보험가입설계서\n든든한 인생 종합보험 2604\n보험기간: 100세만기\n")

	ident, _, _, err := e.Extract(doc, "unknown-insurer", "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ident.ProductNameRaw != "보험가입설계서" && ident.ProductNameRaw != "든든한 인생 종합보험 2604" {
		t.Errorf("unexpected product line: %q", ident.ProductNameRaw)
	}
}

func TestExtractMissingIdentityGate(t *testing.T) {
	e := newExtractor(t, nil)
	doc := docWithPage1("문서번호 12345\n안내자료\n")

	_, _, _, err := e.Extract(doc, "kb", "")
	if !model.IsGateError(err) {
		t.Fatalf("error = %v, want gate error", err)
	}
	var ge *model.GateError
	errors.As(err, &ge)
	if ge.Reason != model.GateMissingIdentity {
		t.Errorf("reason = %s, want missing_identity", ge.Reason)
	}
}

func TestExtractVariantFromFollowingBlock(t *testing.T) {
	e := newExtractor(t, nil)
	doc := docWithPage1("행복한 종합보험\n피보험자: 여자 35세~60세\n")

	_, variant, _, err := e.Extract(doc, "kb", "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if variant.VariantValues["sex"] != "여자" {
		t.Errorf("sex = %q, want 여자", variant.VariantValues["sex"])
	}
	if variant.VariantValues["age"] == "" {
		t.Error("age band not extracted")
	}
	if variant.VariantKey == "default" {
		t.Error("variant key not derived from axis values")
	}
}

func TestExtractDefaultVariant(t *testing.T) {
	e := newExtractor(t, nil)
	doc := docWithPage1("행복한 종합보험\n계약일: 2026-01-01\n")

	_, variant, _, err := e.Extract(doc, "kb", "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if variant.VariantKey != "default" {
		t.Errorf("variant = %q, want default", variant.VariantKey)
	}
}

func TestExtractVariantHintMismatchIsNoteOnly(t *testing.T) {
	e := newExtractor(t, nil)
	doc := docWithPage1("행복한 종합보험\n피보험자: 남자 40세~60세\n")

	_, variant, notes, err := e.Extract(doc, "kb", "default")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if variant.VariantKey == "default" {
		t.Error("hint overrode the extracted variant")
	}
	if len(notes) != 1 {
		t.Errorf("notes = %v, want one mismatch note", notes)
	}
}

func TestExtractKeyNormalization(t *testing.T) {
	e := newExtractor(t, nil)
	doc := docWithPage1("무배당 안심 건강보험 Plus 2.0\n")

	ident, _, _, err := e.Extract(doc, "kb", "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ident.ProductKey != "무배당안심건강보험plus20" {
		t.Errorf("key = %q, want 무배당안심건강보험plus20", ident.ProductKey)
	}
}
