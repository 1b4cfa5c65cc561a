package semantics

import (
	"reflect"
	"testing"

	"golang.org/x/text/unicode/norm"

	"github.com/daehwan-oh/coverfact/internal/model"
)

func newDecomposer(t *testing.T) *Decomposer {
	t.Helper()
	d, err := NewDecomposer(model.DefaultConfig().Semantics)
	if err != nil {
		t.Fatalf("NewDecomposer: %v", err)
	}
	return d
}

func TestDecomposePlainName(t *testing.T) {
	d := newDecomposer(t)
	sem := d.Decompose("암진단비")
	if sem.FragmentDetected {
		t.Error("plain name flagged as fragment")
	}
	if sem.CoverageTitle != "암진단비" {
		t.Errorf("title = %q, want 암진단비", sem.CoverageTitle)
	}
	if len(sem.Exclusions) != 0 || sem.RenewalFlag || sem.PayoutLimitCount != 0 {
		t.Errorf("plain name picked up semantics: %+v", sem)
	}
}

func TestDecomposeFullAnnotations(t *testing.T) {
	d := newDecomposer(t)
	sem := d.Decompose("로봇암수술비(갑상선암, 전립선암 제외)(최초1회한)(갱신형)")

	if sem.FragmentDetected {
		t.Fatal("annotated name flagged as fragment")
	}
	if sem.CoverageTitle != "로봇암수술비" {
		t.Errorf("title = %q, want 로봇암수술비", sem.CoverageTitle)
	}
	wantExcl := []string{"갑상선암", "전립선암"}
	if !reflect.DeepEqual(sem.Exclusions, wantExcl) {
		t.Errorf("exclusions = %v, want %v", sem.Exclusions, wantExcl)
	}
	if sem.PayoutLimitType != model.PayoutPerPolicy || sem.PayoutLimitCount != 1 {
		t.Errorf("payout = %s/%d, want per_policy/1", sem.PayoutLimitType, sem.PayoutLimitCount)
	}
	if !sem.RenewalFlag || sem.RenewalType != "갱신형" {
		t.Errorf("renewal = %v/%q, want true/갱신형", sem.RenewalFlag, sem.RenewalType)
	}
}

func TestDecomposePayoutVariants(t *testing.T) {
	d := newDecomposer(t)
	tests := []struct {
		raw   string
		typ   model.PayoutLimitType
		count int
	}{
		{"응급실내원비(연간3회한)", model.PayoutPerYear, 3},
		{"자동차부상치료비(사고당1회한)", model.PayoutPerAccident, 1},
		{"유사암진단비(최초2회한)", model.PayoutPerPolicy, 2},
	}
	for _, tt := range tests {
		sem := d.Decompose(tt.raw)
		if sem.PayoutLimitType != tt.typ || sem.PayoutLimitCount != tt.count {
			t.Errorf("%s: payout = %s/%d, want %s/%d", tt.raw, sem.PayoutLimitType, sem.PayoutLimitCount, tt.typ, tt.count)
		}
	}
}

func TestDecomposeModifierNotRenewal(t *testing.T) {
	// 갱신불가 is an allowed modifier; the renewal pattern must not claim it.
	d := newDecomposer(t)
	sem := d.Decompose("암진단비(갱신불가)")
	if sem.RenewalFlag {
		t.Error("갱신불가 wrongly set the renewal flag")
	}
	if len(sem.Modifiers) != 1 || sem.Modifiers[0] != "갱신불가" {
		t.Errorf("modifiers = %v, want [갱신불가]", sem.Modifiers)
	}
}

func TestDecomposeNonRenewalMarker(t *testing.T) {
	// 비갱신형 negates renewal; it must land in the modifier list, never
	// flip the renewal flag.
	d := newDecomposer(t)
	sem := d.Decompose("암진단비(비갱신형)")
	if sem.RenewalFlag || sem.RenewalType != "" {
		t.Errorf("비갱신형 parsed as renewal: flag=%v type=%q", sem.RenewalFlag, sem.RenewalType)
	}
	if len(sem.Modifiers) != 1 || sem.Modifiers[0] != "비갱신형" {
		t.Errorf("modifiers = %v, want [비갱신형]", sem.Modifiers)
	}
}

func TestDecomposeRenewalWithYears(t *testing.T) {
	d := newDecomposer(t)
	sem := d.Decompose("질병입원일당(20년갱신형)")
	if !sem.RenewalFlag {
		t.Fatal("renewal flag not set")
	}
	if sem.RenewalType != "20년갱신형" {
		t.Errorf("renewal type = %q, want 20년갱신형", sem.RenewalType)
	}
}

func TestDecomposeFragments(t *testing.T) {
	d := newDecomposer(t)
	tests := []string{
		"최초1회한)",
		"연간 3회한",
		"(갑상선암",
		"암진단비(",
	}
	for _, raw := range tests {
		sem := d.Decompose(raw)
		if !sem.FragmentDetected {
			t.Errorf("%q not detected as fragment", raw)
		}
		if sem.CoverageTitle != "" {
			t.Errorf("%q: fragment carries a title %q", raw, sem.CoverageTitle)
		}
	}
}

func TestDecomposeFragmentParentHint(t *testing.T) {
	d := newDecomposer(t)
	sem := d.Decompose("최초1회한)")
	if !sem.FragmentDetected {
		t.Fatal("not detected as fragment")
	}
	if sem.ParentCoverageHint != "지급횟수한도" {
		t.Errorf("parent hint = %q, want 지급횟수한도", sem.ParentCoverageHint)
	}
}

func TestDecomposeEnumerationStripped(t *testing.T) {
	d := newDecomposer(t)
	sem := d.Decompose("3. 상해후유장해(3~100%)")
	if sem.CoverageTitle != "상해후유장해" {
		t.Errorf("title = %q, want 상해후유장해", sem.CoverageTitle)
	}
}

func TestDecomposeAnnotationOrderIndependent(t *testing.T) {
	d := newDecomposer(t)
	a := d.Decompose("뇌혈관질환수술비(갱신형)(연간1회한)")
	b := d.Decompose("뇌혈관질환수술비(연간1회한)(갱신형)")
	if a.PayoutLimitType != b.PayoutLimitType || a.RenewalFlag != b.RenewalFlag || a.CoverageTitle != b.CoverageTitle {
		t.Errorf("annotation order changed the decomposition: %+v vs %+v", a, b)
	}
}

func TestDecomposeExclusionWithAndDelimiter(t *testing.T) {
	d := newDecomposer(t)
	sem := d.Decompose("암수술비(기타피부암 및 갑상선암 제외)")
	want := []string{"기타피부암", "갑상선암"}
	if !reflect.DeepEqual(sem.Exclusions, want) {
		t.Errorf("exclusions = %v, want %v", sem.Exclusions, want)
	}
}

func TestDecomposeNFCFolding(t *testing.T) {
	d := newDecomposer(t)
	// Decomposed Hangul jamo must fold to the same title as the composed form.
	composed := d.Decompose("암진단비")
	decomposed := d.Decompose(norm.NFD.String("암진단비"))
	if composed.CoverageTitle != decomposed.CoverageTitle {
		t.Errorf("NFC folding failed: %q vs %q", composed.CoverageTitle, decomposed.CoverageTitle)
	}
}
