package model

// Evidence is a page/row/coordinate reference attached to an extracted
// field. It exists for downstream traceability and never feeds back into
// inference.
type Evidence struct {
	Page    int     `json:"page"`
	Row     int     `json:"row,omitempty"`
	YTop    float64 `json:"y_top,omitempty"`
	YBottom float64 `json:"y_bottom,omitempty"`
	Note    string  `json:"note,omitempty"`
}

// PayoutLimitType is the canonical payout-limit classification.
type PayoutLimitType string

const (
	PayoutPerPolicy   PayoutLimitType = "per_policy"   // 최초 N회
	PayoutPerYear     PayoutLimitType = "per_year"     // 연간 N회
	PayoutPerAccident PayoutLimitType = "per_accident" // 사고당 N회
)

// CoverageSemantics is the structured decomposition of a raw coverage-name
// string. When FragmentDetected is true no other field is reliable and the
// record must be routed to the fragment stream.
type CoverageSemantics struct {
	CoverageTitle      string          `json:"coverage_title"`
	Exclusions         []string        `json:"exclusions,omitempty"`
	PayoutLimitType    PayoutLimitType `json:"payout_limit_type,omitempty"`
	PayoutLimitCount   int             `json:"payout_limit_count,omitempty"`
	RenewalType        string          `json:"renewal_type,omitempty"`
	RenewalFlag        bool            `json:"renewal_flag"`
	Modifiers          []string        `json:"coverage_modifiers,omitempty"`
	FragmentDetected   bool            `json:"fragment_detected"`
	ParentCoverageHint string          `json:"parent_coverage_hint,omitempty"`
}

// ProposalFact is one extracted coverage row. Facts are immutable once
// emitted and written exactly once to the output stream.
type ProposalFact struct {
	CoverageNameRaw      string            `json:"coverage_name_raw"`
	CoverageAmountText   string            `json:"coverage_amount_text"`
	PremiumText          string            `json:"premium_text"`
	PeriodText           string            `json:"period_text"`
	Semantics            CoverageSemantics `json:"coverage_semantics"`
	EvidenceRequirements string            `json:"evidence_requirements,omitempty"`
	Evidence             []Evidence        `json:"evidences"`
}

// DetailFact is a free-text benefit description matched to a coverage row
// by normalized name.
type DetailFact struct {
	CoverageNameRaw        string     `json:"coverage_name_raw"`
	BenefitDescriptionText string     `json:"benefit_description_text"`
	DetailPage             int        `json:"detail_page"`
	DetailRowHint          int        `json:"detail_row_hint"`
	Evidences              []Evidence `json:"evidences"`
}

// FactRecord is one line of the fact (or fragment) stream: identity fields
// stamped per document plus the extracted fact and its optional detail.
type FactRecord struct {
	InsurerKey      string         `json:"insurer_key"`
	IssuerCode      string         `json:"issuer_code,omitempty"`
	Product         string         `json:"product"`
	Variant         string         `json:"variant"`
	ProposalContext VariantContext `json:"proposal_context"`

	CoverageNameRaw string       `json:"coverage_name_raw"`
	ProposalFacts   ProposalFact `json:"proposal_facts"`
	DetailFacts     *DetailFact  `json:"proposal_detail_facts"`
}
