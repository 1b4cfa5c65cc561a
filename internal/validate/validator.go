// Package validate checks loaded profiles for structural consistency
// before they are trusted by the extractor.
package validate

import (
	"fmt"
	"strings"

	"github.com/daehwan-oh/coverfact/internal/model"
)

// SupportedProfileVersions are the schema versions this build can consume.
var SupportedProfileVersions = map[string]bool{"1": true, "2": true}

// Validator validates profile artifacts
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateProfile checks the profile's internal consistency. It returns
// the first problem found; a profile that fails here must never drive an
// extraction.
func (v *Validator) ValidateProfile(p *model.Profile) error {
	if p == nil {
		return fmt.Errorf("nil profile")
	}
	if !SupportedProfileVersions[p.ProfileVersion] {
		return fmt.Errorf("unsupported profile version %q", p.ProfileVersion)
	}
	if strings.TrimSpace(p.Insurer) == "" {
		return fmt.Errorf("profile has no insurer key")
	}
	if strings.TrimSpace(p.Variant) == "" {
		return fmt.Errorf("profile %s has no variant key", p.Insurer)
	}
	if len(p.SummaryTable.TableSignatures) == 0 {
		return fmt.Errorf("profile %s/%s has no table signatures", p.Insurer, p.Variant)
	}
	if len(p.SummaryTable.TableSignatures) != len(p.SummaryTable.PrimarySignatures)+len(p.SummaryTable.VariantSignatures) {
		return fmt.Errorf("profile %s/%s: signature lists are inconsistent", p.Insurer, p.Variant)
	}

	for i, sig := range p.SummaryTable.TableSignatures {
		if err := v.validateSignature(sig); err != nil {
			return fmt.Errorf("profile %s/%s signature %d: %w", p.Insurer, p.Variant, i, err)
		}
	}
	return nil
}

func (v *Validator) validateSignature(sig model.TableSignature) error {
	if sig.Page < 1 {
		return fmt.Errorf("invalid page %d", sig.Page)
	}
	if sig.TableIndex < 0 {
		return fmt.Errorf("invalid table index %d", sig.TableIndex)
	}
	switch sig.DetectionPass {
	case model.PassKeyword, model.PassContent:
	default:
		return fmt.Errorf("unknown detection pass %q", sig.DetectionPass)
	}
	if sig.DetectionPass == model.PassKeyword && sig.HeaderRowIndex < 0 {
		return fmt.Errorf("keyword-detected table without a header row")
	}

	cm := sig.ColumnMap
	for _, idx := range []*int{cm.RowNumberColumnIdx, cm.CoverageNameIndex, cm.CoverageAmountIndex, cm.PremiumIndex, cm.PeriodIndex} {
		if idx == nil {
			continue
		}
		if *idx < 0 || (sig.ColCount > 0 && *idx >= sig.ColCount) {
			return fmt.Errorf("column index %d out of range for %d columns", *idx, sig.ColCount)
		}
	}
	if cm.CoverageNameIndex != nil && cm.RowNumberColumnIdx != nil && *cm.CoverageNameIndex == *cm.RowNumberColumnIdx {
		return fmt.Errorf("coverage name column collides with row-number column %d", *cm.RowNumberColumnIdx)
	}
	if cm.MappingConfidence < 0 || cm.MappingConfidence > 1 {
		return fmt.Errorf("mapping confidence %.2f out of range", cm.MappingConfidence)
	}
	return nil
}
