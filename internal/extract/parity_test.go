package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/daehwan-oh/coverfact/internal/model"
)

func TestCompareParityTiers(t *testing.T) {
	cfg := model.ParityConfig{WarnDelta: 0.05, FailDelta: 0.20}
	base := &Baseline{Count: 100}
	tests := []struct {
		extracted int
		want      ParityStatus
	}{
		{100, ParityPass},
		{103, ParityPass},
		{105, ParityPass}, // tier boundaries are exclusive
		{110, ParityWarn},
		{94, ParityWarn},
		{121, ParityFail},
		{70, ParityFail},
	}
	for _, tt := range tests {
		r := CompareParity(tt.extracted, base, cfg)
		if r.Status != tt.want {
			t.Errorf("CompareParity(%d) = %s (delta %.2f), want %s", tt.extracted, r.Status, r.DeltaPct, tt.want)
		}
	}
}

func TestCompareParityFirstRun(t *testing.T) {
	cfg := model.ParityConfig{WarnDelta: 0.05, FailDelta: 0.20}

	r := CompareParity(37, nil, cfg)
	if r.Status != ParityPass || r.Extracted != 37 || r.Baseline != 0 {
		t.Errorf("first run report = %+v, want pass with no baseline", r)
	}

	// A zero-count baseline is treated as absent, not as a 100% drop.
	r = CompareParity(37, &Baseline{Count: 0}, cfg)
	if r.Status != ParityPass {
		t.Errorf("zero baseline status = %s, want pass", r.Status)
	}
}

func TestBaselineRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samsung_default_baseline.json")

	b, err := LoadBaseline(path)
	if err != nil || b != nil {
		t.Fatalf("missing baseline = (%+v, %v), want (nil, nil)", b, err)
	}

	if err := SaveBaseline(path, 42); err != nil {
		t.Fatalf("SaveBaseline: %v", err)
	}
	b, err = LoadBaseline(path)
	if err != nil {
		t.Fatalf("LoadBaseline: %v", err)
	}
	if b == nil || b.Count != 42 {
		t.Fatalf("baseline = %+v, want count 42", b)
	}
	if b.UpdatedAt.IsZero() {
		t.Error("baseline timestamp not recorded")
	}
}

func TestLoadBaselineCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadBaseline(path); err == nil {
		t.Error("corrupt baseline parsed without error")
	}
}
