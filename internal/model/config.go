package model

// Config holds every tuned threshold, keyword table, and pattern the engine
// uses. All values were calibrated against the observed proposal corpus and
// are overridable via config file or COVERFACT_* environment variables;
// none of them is derived from a statistical model, so treat them as
// defaults subject to recalibration on a new document set.
type Config struct {
	Paths     PathsConfig     `json:"paths" yaml:"paths" mapstructure:"paths"`
	Detection DetectionConfig `json:"detection" yaml:"detection" mapstructure:"detection"`
	Columns   ColumnConfig    `json:"columns" yaml:"columns" mapstructure:"columns"`
	RowFilter RowFilterConfig `json:"row_filter" yaml:"row_filter" mapstructure:"row_filter"`
	Extract   ExtractConfig   `json:"extract" yaml:"extract" mapstructure:"extract"`
	Hybrid    HybridConfig    `json:"hybrid" yaml:"hybrid" mapstructure:"hybrid"`
	Semantics SemanticsConfig `json:"semantics" yaml:"semantics" mapstructure:"semantics"`
	Identity  IdentityConfig  `json:"identity" yaml:"identity" mapstructure:"identity"`
	Detail    DetailConfig    `json:"detail" yaml:"detail" mapstructure:"detail"`
	Parity    ParityConfig    `json:"parity" yaml:"parity" mapstructure:"parity"`
	Output    OutputConfig    `json:"output" yaml:"output" mapstructure:"output"`
	Batch     BatchConfig     `json:"batch" yaml:"batch" mapstructure:"batch"`
}

// PathsConfig holds the directory roots for the two persisted artifacts.
type PathsConfig struct {
	ProfileDir string `json:"profile_dir" yaml:"profile_dir" mapstructure:"profile_dir"`
	OutputDir  string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
	SourceDir  string `json:"source_dir" yaml:"source_dir" mapstructure:"source_dir"`
}

// DetectionConfig drives the two-pass summary-table discovery.
type DetectionConfig struct {
	CoverageKeywords     []string `json:"coverage_keywords" yaml:"coverage_keywords" mapstructure:"coverage_keywords"`
	AmountKeywords       []string `json:"amount_keywords" yaml:"amount_keywords" mapstructure:"amount_keywords"`
	PremiumKeywords      []string `json:"premium_keywords" yaml:"premium_keywords" mapstructure:"premium_keywords"`
	PeriodKeywords       []string `json:"period_keywords" yaml:"period_keywords" mapstructure:"period_keywords"`
	DisqualifyKeywords   []string `json:"disqualify_keywords" yaml:"disqualify_keywords" mapstructure:"disqualify_keywords"`
	ClauseKeywords       []string `json:"clause_keywords" yaml:"clause_keywords" mapstructure:"clause_keywords"`
	AmountPattern        string   `json:"amount_pattern" yaml:"amount_pattern" mapstructure:"amount_pattern"`
	PremiumPattern       string   `json:"premium_pattern" yaml:"premium_pattern" mapstructure:"premium_pattern"`
	PeriodPattern        string   `json:"period_pattern" yaml:"period_pattern" mapstructure:"period_pattern"`
	MinPrimaryRows       int      `json:"min_primary_rows" yaml:"min_primary_rows" mapstructure:"min_primary_rows"`
	MinVariantRows       int      `json:"min_variant_rows" yaml:"min_variant_rows" mapstructure:"min_variant_rows"`
	HeaderRows           int      `json:"header_rows" yaml:"header_rows" mapstructure:"header_rows"`
	RescueLongTextRatio  float64  `json:"rescue_long_text_ratio" yaml:"rescue_long_text_ratio" mapstructure:"rescue_long_text_ratio"`
	RescueLongTextChars  int      `json:"rescue_long_text_chars" yaml:"rescue_long_text_chars" mapstructure:"rescue_long_text_chars"`
	RescueCooccurRatio   float64  `json:"rescue_cooccur_ratio" yaml:"rescue_cooccur_ratio" mapstructure:"rescue_cooccur_ratio"`
	PassBSampleRows      int      `json:"passb_sample_rows" yaml:"passb_sample_rows" mapstructure:"passb_sample_rows"`
	PassBAmountRatio     float64  `json:"passb_amount_ratio" yaml:"passb_amount_ratio" mapstructure:"passb_amount_ratio"`
	PassBPremPeriodRatio float64  `json:"passb_prem_period_ratio" yaml:"passb_prem_period_ratio" mapstructure:"passb_prem_period_ratio"`
	PassBHangulRatio     float64  `json:"passb_hangul_ratio" yaml:"passb_hangul_ratio" mapstructure:"passb_hangul_ratio"`
	PassBClauseRatio     float64  `json:"passb_clause_ratio" yaml:"passb_clause_ratio" mapstructure:"passb_clause_ratio"`
	PassBMinConfidence   float64  `json:"passb_min_confidence" yaml:"passb_min_confidence" mapstructure:"passb_min_confidence"`
}

// ColumnConfig drives column-mapping inference for a detected table.
type ColumnConfig struct {
	SampleRows           int      `json:"sample_rows" yaml:"sample_rows" mapstructure:"sample_rows"`
	RowNumberRatio       float64  `json:"row_number_ratio" yaml:"row_number_ratio" mapstructure:"row_number_ratio"`
	CategoryKeywords     []string `json:"category_keywords" yaml:"category_keywords" mapstructure:"category_keywords"`
	CategoryEmptyRatio   float64  `json:"category_empty_ratio" yaml:"category_empty_ratio" mapstructure:"category_empty_ratio"`
	CategoryUniqueRatio  float64  `json:"category_unique_ratio" yaml:"category_unique_ratio" mapstructure:"category_unique_ratio"`
	CategoryAvgLen       float64  `json:"category_avg_len" yaml:"category_avg_len" mapstructure:"category_avg_len"`
	CategoryKeywordRatio float64  `json:"category_keyword_ratio" yaml:"category_keyword_ratio" mapstructure:"category_keyword_ratio"`
	HangulWeight         float64  `json:"hangul_weight" yaml:"hangul_weight" mapstructure:"hangul_weight"`
	LengthWeight         float64  `json:"length_weight" yaml:"length_weight" mapstructure:"length_weight"`
	NumericWeight        float64  `json:"numeric_weight" yaml:"numeric_weight" mapstructure:"numeric_weight"`
	MinContentScore      float64  `json:"min_content_score" yaml:"min_content_score" mapstructure:"min_content_score"`
}

// RowFilterConfig rejects non-coverage rows during standard extraction.
type RowFilterConfig struct {
	MinNameLen         int      `json:"min_name_len" yaml:"min_name_len" mapstructure:"min_name_len"`
	MaxNameLen         int      `json:"max_name_len" yaml:"max_name_len" mapstructure:"max_name_len"`
	TotalsKeywords     []string `json:"totals_keywords" yaml:"totals_keywords" mapstructure:"totals_keywords"`
	DisclaimerKeywords []string `json:"disclaimer_keywords" yaml:"disclaimer_keywords" mapstructure:"disclaimer_keywords"`
}

// ExtractConfig drives per-signature strategy selection.
type ExtractConfig struct {
	// EmptyNameRatioTrigger is the fraction of empty coverage-name cells in
	// the raw table above which standard extraction is discarded in favour
	// of hybrid reconstruction.
	EmptyNameRatioTrigger float64 `json:"empty_name_ratio_trigger" yaml:"empty_name_ratio_trigger" mapstructure:"empty_name_ratio_trigger"`
	// ForceStandard disables the hybrid auto-trigger for primary signatures.
	ForceStandard bool `json:"force_standard" yaml:"force_standard" mapstructure:"force_standard"`
}

// HybridConfig drives row reconstruction from positioned text fragments.
type HybridConfig struct {
	BandTolerance     float64  `json:"band_tolerance" yaml:"band_tolerance" mapstructure:"band_tolerance"`
	MinNameLen        int      `json:"min_name_len" yaml:"min_name_len" mapstructure:"min_name_len"`
	MinWordRun        int      `json:"min_word_run" yaml:"min_word_run" mapstructure:"min_word_run"`
	NoiseKeywords     []string `json:"noise_keywords" yaml:"noise_keywords" mapstructure:"noise_keywords"`
	ValueLinePattern  string   `json:"value_line_pattern" yaml:"value_line_pattern" mapstructure:"value_line_pattern"`
	AmountCellPattern string   `json:"amount_cell_pattern" yaml:"amount_cell_pattern" mapstructure:"amount_cell_pattern"`
}

// SemanticsConfig drives the coverage-name decomposer.
type SemanticsConfig struct {
	FragmentPatterns []string          `json:"fragment_patterns" yaml:"fragment_patterns" mapstructure:"fragment_patterns"`
	ParentHints      map[string]string `json:"parent_hints" yaml:"parent_hints" mapstructure:"parent_hints"`
	ExclusionMarkers []string          `json:"exclusion_markers" yaml:"exclusion_markers" mapstructure:"exclusion_markers"`
	ListDelimiters   []string          `json:"list_delimiters" yaml:"list_delimiters" mapstructure:"list_delimiters"`
	PayoutPattern    string            `json:"payout_pattern" yaml:"payout_pattern" mapstructure:"payout_pattern"`
	RenewalPattern   string            `json:"renewal_pattern" yaml:"renewal_pattern" mapstructure:"renewal_pattern"`
	ModifierAllow    []string          `json:"modifier_allow" yaml:"modifier_allow" mapstructure:"modifier_allow"`
}

// IdentityConfig drives product/variant extraction from page 1.
type IdentityConfig struct {
	// IssuerPatterns maps an insurer key to an ordered regex list tried
	// against page-1 text before the generic fallback.
	IssuerPatterns map[string][]string `json:"issuer_patterns" yaml:"issuer_patterns" mapstructure:"issuer_patterns"`
	// IssuerCodes maps an insurer key to the official issuer code stamped
	// into every output record for that insurer.
	IssuerCodes        map[string]string   `json:"issuer_codes" yaml:"issuer_codes" mapstructure:"issuer_codes"`
	GenericKeywords    []string            `json:"generic_keywords" yaml:"generic_keywords" mapstructure:"generic_keywords"`
	MaxProductLineLen  int                 `json:"max_product_line_len" yaml:"max_product_line_len" mapstructure:"max_product_line_len"`
	VariantWindowLines int                 `json:"variant_window_lines" yaml:"variant_window_lines" mapstructure:"variant_window_lines"`
	VariantWindowChars int                 `json:"variant_window_chars" yaml:"variant_window_chars" mapstructure:"variant_window_chars"`
	AgePattern         string              `json:"age_pattern" yaml:"age_pattern" mapstructure:"age_pattern"`
	SexPattern         string              `json:"sex_pattern" yaml:"sex_pattern" mapstructure:"sex_pattern"`
}

// DetailConfig drives benefit-description extraction.
type DetailConfig struct {
	DescriptionKeywords  []string `json:"description_keywords" yaml:"description_keywords" mapstructure:"description_keywords"`
	MaxDescriptionLen    int      `json:"max_description_len" yaml:"max_description_len" mapstructure:"max_description_len"`
	ExclusionHeaderHints []string `json:"exclusion_header_hints" yaml:"exclusion_header_hints" mapstructure:"exclusion_header_hints"`
	FooterMarkers        []string `json:"footer_markers" yaml:"footer_markers" mapstructure:"footer_markers"`
	// LimitHintPattern truncates summary-embedded descriptions at the first
	// numeric fact so amounts never bleed into free text.
	LimitHintPattern string `json:"limit_hint_pattern" yaml:"limit_hint_pattern" mapstructure:"limit_hint_pattern"`
	CoverageLineNum  string `json:"coverage_line_num" yaml:"coverage_line_num" mapstructure:"coverage_line_num"`
}

// ParityConfig sets the status tiers for the post-run count comparison.
type ParityConfig struct {
	WarnDelta float64 `json:"warn_delta" yaml:"warn_delta" mapstructure:"warn_delta"`
	FailDelta float64 `json:"fail_delta" yaml:"fail_delta" mapstructure:"fail_delta"`
}

// OutputConfig controls CLI-facing behaviour.
type OutputConfig struct {
	Verbose bool `json:"verbose" yaml:"verbose" mapstructure:"verbose"`
}

// BatchConfig controls document-level parallelism in batch mode. The core
// itself is single-threaded per document.
type BatchConfig struct {
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			ProfileDir: "./profiles",
			OutputDir:  "./facts",
			SourceDir:  "./proposals",
		},
		Detection: DetectionConfig{
			CoverageKeywords:     []string{"담보", "담보명", "보장명", "가입담보", "보장", "coverage"},
			AmountKeywords:       []string{"가입금액", "보험가입금액", "보장금액", "가입 금액", "amount"},
			PremiumKeywords:      []string{"보험료", "premium"},
			PeriodKeywords:       []string{"보험기간", "납입기간", "납기", "만기", "기간", "term"},
			DisqualifyKeywords:   []string{"지급사유", "지급금액", "보장내용", "유의사항"},
			ClauseKeywords:       []string{"약관", "지급사유", "단서", "조항", "유의사항", "보상하지"},
			AmountPattern:        `[0-9][0-9,.]*\s*(억원|만원|천만원|백만원|천원|원|억|만)`,
			PremiumPattern:       `[0-9]{1,3}(,[0-9]{3})+|[0-9]+\s*원`,
			PeriodPattern:        `[0-9]+\s*(년|세)\s*(만기|납|갱신)?|갱신형?|전기납|종신`,
			MinPrimaryRows:       10,
			MinVariantRows:       5,
			HeaderRows:           2,
			RescueLongTextRatio:  0.30,
			RescueLongTextChars:  200,
			RescueCooccurRatio:   0.50,
			PassBSampleRows:      20,
			PassBAmountRatio:     0.25,
			PassBPremPeriodRatio: 0.20,
			PassBHangulRatio:     0.20,
			PassBClauseRatio:     0.35,
			PassBMinConfidence:   0.50,
		},
		Columns: ColumnConfig{
			SampleRows:           10,
			RowNumberRatio:       0.50,
			CategoryKeywords:     []string{"기본계약", "선택계약", "의무부가", "기본", "선택", "진단", "입원", "수술", "통원", "실손"},
			CategoryEmptyRatio:   0.50,
			CategoryUniqueRatio:  0.30,
			CategoryAvgLen:       6,
			CategoryKeywordRatio: 0.30,
			HangulWeight:         0.5,
			LengthWeight:         0.3,
			NumericWeight:        0.2,
			MinContentScore:      0.35,
		},
		RowFilter: RowFilterConfig{
			MinNameLen:         2,
			MaxNameLen:         80,
			TotalsKeywords:     []string{"합계", "총계", "소계", "총 보험료", "총보험료"},
			DisclaimerKeywords: []string{"유의사항", "알아두실", "자세한 사항", "안내", "참고"},
		},
		Extract: ExtractConfig{
			EmptyNameRatioTrigger: 0.30,
			ForceStandard:         false,
		},
		Hybrid: HybridConfig{
			BandTolerance: 3.0,
			MinNameLen:    10,
			MinWordRun:    2,
			NoiseKeywords: []string{"담보명", "보장명", "가입금액", "보험료", "보험기간", "합계", "총계"},
			// [seq]? name amount premium period, applied to the single
			// value fragment of a reconstructed row band.
			ValueLinePattern:  `^(?:([0-9]{1,3})[.)]?\s+)?(.*?)\s*([0-9][0-9,.]*\s*(?:억원|만원|천만원|천원|원|억|만))\s+([0-9][0-9,]*원?)\s*(.*)$`,
			AmountCellPattern: `[0-9][0-9,.]*\s*(억원|만원|천만원|백만원|천원|원|억|만)`,
		},
		Semantics: SemanticsConfig{
			FragmentPatterns: []string{
				`^최초\s*[0-9]+\s*회한?\)?$`,
				`^연간\s*[0-9]+\s*회한?\)?$`,
				`^[0-9]+\s*회한\)?$`,
			},
			ParentHints: map[string]string{
				"회한": "지급횟수한도",
				"갱신": "갱신형담보",
			},
			ExclusionMarkers: []string{"제외"},
			ListDelimiters:   []string{",", "、", "·", "/", " 및 "},
			PayoutPattern: `(최초|연간|사고당)\s*([0-9]+)\s*회한?`,
			// Anchored so negated markers like 비갱신형 cannot substring-match.
			RenewalPattern: `^(?:([0-9]+)년\s*)?갱신형?$`,
			ModifierAllow:  []string{"무배당", "무해지", "해약환급금미지급", "감액미적용", "급여", "비급여", "요양병원제외", "갱신불가", "비갱신형"},
		},
		Identity: IdentityConfig{
			IssuerPatterns: map[string][]string{},
			IssuerCodes:    map[string]string{},
			GenericKeywords: []string{
				"보험", "플랜", "종합보험", "건강보험",
			},
			MaxProductLineLen:  80,
			VariantWindowLines: 5,
			VariantWindowChars: 500,
			AgePattern:         `([0-9]{1,3})\s*세?\s*[~∼-]\s*([0-9]{1,3})\s*세|([0-9]{1,3})\s*세\s*(만기|이상|이하)`,
			SexPattern:         `남자|여자|남성|여성`,
		},
		Detail: DetailConfig{
			DescriptionKeywords:  []string{"보장내용", "지급사유", "급부내용", "보상내용"},
			MaxDescriptionLen:    800,
			ExclusionHeaderHints: []string{"보상하지 않는", "면책", "지급하지 않는", "유의사항"},
			FooterMarkers:        []string{"페이지", "Page", "- 1 -"},
			LimitHintPattern:     `[0-9][0-9,.]*\s*(억원|만원|천원|원)|[0-9]+\s*회한|[0-9]+\s*(년|세)\s*(만기|납)`,
			CoverageLineNum:      `^([0-9]{1,3})[.)]\s*(.+)$`,
		},
		Parity: ParityConfig{
			WarnDelta: 0.05,
			FailDelta: 0.20,
		},
		Output: OutputConfig{Verbose: false},
		Batch:  BatchConfig{Workers: 1},
	}
}
