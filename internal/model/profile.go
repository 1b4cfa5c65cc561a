package model

import "time"

// Profile is the persisted schema-recovery result for one (insurer, variant)
// source document. It is created by the profile builder, read-only to the
// extractor, and only ever superseded wholesale, never mutated in place.
type Profile struct {
	ProfileVersion string       `json:"profile_version"`
	BuilderVersion string       `json:"builder_version"`
	GeneratedAt    time.Time    `json:"generated_at"`
	Insurer        string       `json:"insurer"`
	Variant        string       `json:"variant"`
	SourcePDFPath  string       `json:"source_pdf_path"`
	PDFFingerprint *Fingerprint `json:"pdf_fingerprint"`

	SummaryTable SummaryTable    `json:"summary_table"`
	Detail       DetailStructure `json:"detail_structure"`

	DetectionMetadata DetectionMetadata `json:"detection_metadata"`
	KnownAnomalies    []string          `json:"known_anomalies"`
}

// SummaryTable groups the detected table signatures by confidence class.
type SummaryTable struct {
	PrimarySignatures []TableSignature `json:"primary_signatures"`
	VariantSignatures []TableSignature `json:"variant_signatures"`
	TableSignatures   []TableSignature `json:"table_signatures"` // all, declaration order
}

// DetectionMetadata records how discovery went, for audit.
type DetectionMetadata struct {
	PagesScanned int      `json:"pages_scanned"`
	TablesSeen   int      `json:"tables_seen"`
	ClaimedPages []int    `json:"claimed_pages"`
	Notes        []string `json:"notes,omitempty"`
}

// DetectionPass identifies which discovery pass produced a signature.
type DetectionPass string

const (
	PassKeyword DetectionPass = "A" // header keyword detection
	PassContent DetectionPass = "B" // content-pattern fallback
)

// TableSignature is one detected table region plus its inferred column
// mapping and row-filtering rules.
type TableSignature struct {
	Page              int            `json:"page"`
	TableIndex        int            `json:"table_index"`
	RowCount          int            `json:"row_count"`
	ColCount          int            `json:"col_count"`
	HeaderRowIndex    int            `json:"header_row_index"`
	ColumnMap         ColumnMap      `json:"column_map"`
	RowFilter         RowFilterRules `json:"row_filter_rules"`
	DetectionEvidence []string       `json:"detection_evidence"`
	DetectionPass     DetectionPass  `json:"detection_pass"`
}

// MappingMethod records how a column map was inferred.
type MappingMethod string

const (
	MappingHeader  MappingMethod = "header_keyword"
	MappingContent MappingMethod = "content_pattern"
)

// ColumnMap assigns table columns to coverage fields. A nil index means the
// field could not be resolved (or was degraded below the confidence
// threshold). Invariant: CoverageNameIndex never coincides with the
// row-number column or a detected category column.
type ColumnMap struct {
	HasRowNumberColumn  bool          `json:"has_row_number_column"`
	RowNumberColumnIdx  *int          `json:"row_number_column_index"`
	CoverageNameIndex   *int          `json:"coverage_name_index"`
	CoverageAmountIndex *int          `json:"coverage_amount_index"`
	PremiumIndex        *int          `json:"premium_index"`
	PeriodIndex         *int          `json:"period_index"`
	MappingMethod       MappingMethod `json:"mapping_method"`
	MappingConfidence   float64       `json:"mapping_confidence"`
}

// Equal reports whether two column maps resolve every field to the same
// index. Used by the profile lock check.
func (m ColumnMap) Equal(o ColumnMap) bool {
	return m.HasRowNumberColumn == o.HasRowNumberColumn &&
		idxEqual(m.RowNumberColumnIdx, o.RowNumberColumnIdx) &&
		idxEqual(m.CoverageNameIndex, o.CoverageNameIndex) &&
		idxEqual(m.CoverageAmountIndex, o.CoverageAmountIndex) &&
		idxEqual(m.PremiumIndex, o.PremiumIndex) &&
		idxEqual(m.PeriodIndex, o.PeriodIndex)
}

func idxEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Idx is a convenience constructor for optional column indices.
func Idx(i int) *int { return &i }

// RowFilterRules are the thresholds and keyword lists a signature uses to
// reject non-coverage rows.
type RowFilterRules struct {
	MinNameLen         int      `json:"min_name_len"`
	MaxNameLen         int      `json:"max_name_len"`
	TotalsKeywords     []string `json:"totals_keywords"`
	DisclaimerKeywords []string `json:"disclaimer_keywords"`
}

// DetailStructure declares how the benefit-description layout of this
// document is organised. The variant is a configuration value fixed at
// profile-build time; the extractor never re-infers it per call.
type DetailStructure struct {
	Type DetailType `json:"type"`
	// DescriptionColumn optionally pins the description column for the
	// description_column variant when the header collides.
	DescriptionColumn *int `json:"description_column,omitempty"`
}

// DetailType enumerates the supported benefit-description layouts.
type DetailType string

const (
	DetailNone                 DetailType = ""
	DetailDescriptionColumn    DetailType = "description_column"
	DetailMergedInline         DetailType = "merged_inline"
	DetailMergedMultiRow       DetailType = "merged_multirow"
	DetailTextLayout           DetailType = "text_layout"
	DetailSummaryEmbedded      DetailType = "summary_embedded"
	DetailSummaryEmbeddedSplit DetailType = "summary_embedded_split"
)
