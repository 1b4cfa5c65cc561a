// Package extract applies a persisted profile to its source document and
// assembles the final stream of coverage fact records, choosing between
// direct cell extraction and hybrid layout reconstruction per table region.
package extract

import (
	"fmt"

	"github.com/daehwan-oh/coverfact/internal/identity"
	"github.com/daehwan-oh/coverfact/internal/model"
	"github.com/daehwan-oh/coverfact/internal/pdfdoc"
	"github.com/daehwan-oh/coverfact/internal/semantics"
)

// Extractor is the orchestrator: fingerprint gate, identity gate, strategy
// selection per signature, semantics decomposition, detail join, identity
// stamping.
type Extractor struct {
	cfg    *model.Config
	ident  *identity.Extractor
	decomp *semantics.Decomposer
	hybrid *Reconstructor
	detail *DetailExtractor
}

// NewExtractor wires the component services from configuration.
func NewExtractor(cfg *model.Config) (*Extractor, error) {
	ident, err := identity.NewExtractor(cfg.Identity)
	if err != nil {
		return nil, fmt.Errorf("identity extractor: %w", err)
	}
	decomp, err := semantics.NewDecomposer(cfg.Semantics)
	if err != nil {
		return nil, fmt.Errorf("semantics decomposer: %w", err)
	}
	hybrid, err := NewReconstructor(cfg.Hybrid)
	if err != nil {
		return nil, fmt.Errorf("hybrid reconstructor: %w", err)
	}
	detail, err := NewDetailExtractor(cfg.Detail, cfg.Detection)
	if err != nil {
		return nil, fmt.Errorf("detail extractor: %w", err)
	}
	return &Extractor{cfg: cfg, ident: ident, decomp: decomp, hybrid: hybrid, detail: detail}, nil
}

// Result is one document's completed extraction: the primary fact stream,
// the fragment partition, and the audit trail.
type Result struct {
	Identity  model.ProductIdentity
	Variant   model.VariantContext
	Facts     []model.FactRecord
	Fragments []model.FactRecord
	Parity    ParityReport
}

// Run extracts facts from doc under the given profile. fp must be the
// freshly recomputed fingerprint of the document at hand. All gate
// failures return a *model.GateError and emit nothing.
func (e *Extractor) Run(doc pdfdoc.Document, fp model.Fingerprint, prof *model.Profile, variantHint string, baseline *Baseline) (*Result, error) {
	// Gate 1: the profile's schema must have been inferred from these exact
	// bytes. Extracting against a stale schema is never acceptable.
	if prof.PDFFingerprint == nil {
		return nil, model.NewGateError(model.GateMissingFingerprint,
			fmt.Sprintf("profile %s/%s predates fingerprint locking; re-profile the document", prof.Insurer, prof.Variant))
	}
	if !model.FingerprintsMatch(fp, *prof.PDFFingerprint) {
		return nil, model.NewGateError(model.GateFingerprintMismatch,
			fmt.Sprintf("document no longer matches profile %s/%s", prof.Insurer, prof.Variant),
			model.FingerprintDiff(fp, *prof.PDFFingerprint)...)
	}

	// Gate 2: product identity from page 1.
	ident, variant, identNotes, err := e.ident.Extract(doc, prof.Insurer, variantHint)
	if err != nil {
		return nil, err
	}

	res := &Result{Identity: ident, Variant: variant}
	var anomalies []string
	anomalies = append(anomalies, identNotes...)
	var skipped []string

	primary := primarySet(prof)
	for _, sig := range prof.SummaryTable.TableSignatures {
		rows, sigAnomalies, sigSkipped := e.extractSignature(doc, sig, primary[sigKey(sig)])
		anomalies = append(anomalies, sigAnomalies...)
		skipped = append(skipped, sigSkipped...)
		for _, row := range rows {
			rec := e.record(prof, ident, variant, row)
			if rec.ProposalFacts.Semantics.FragmentDetected {
				res.Fragments = append(res.Fragments, rec)
			} else {
				res.Facts = append(res.Facts, rec)
			}
		}
	}

	// Detail join by normalized name. Unmatched facts keep an explicit
	// null detail rather than a missing field.
	details, detailAnomalies := e.detail.Extract(doc, prof.Detail)
	anomalies = append(anomalies, detailAnomalies...)
	byName := make(map[string]*model.DetailFact, len(details))
	for i := range details {
		byName[NormalizeName(details[i].CoverageNameRaw)] = &details[i]
	}
	for i := range res.Facts {
		res.Facts[i].DetailFacts = byName[NormalizeName(res.Facts[i].CoverageNameRaw)]
	}

	res.Parity = CompareParity(len(res.Facts), baseline, e.cfg.Parity)
	res.Parity.Anomalies = anomalies
	res.Parity.Skipped = skipped
	return res, nil
}

// factRow is the strategy-independent shape of one extracted row.
type factRow struct {
	name     string
	amount   string
	premium  string
	period   string
	evidence model.Evidence
}

// extractSignature picks the strategy for one table region. Primary
// signatures run standard-first with the hybrid auto-trigger; variant
// signatures run hybrid-first with a standard fallback on zero rows.
func (e *Extractor) extractSignature(doc pdfdoc.Document, sig model.TableSignature, isPrimary bool) ([]factRow, []string, []string) {
	var anomalies []string
	table, ok := e.findTable(doc, sig, &anomalies)

	if isPrimary {
		if ok && sig.ColumnMap.CoverageNameIndex != nil {
			ratio := EmptyNameRatio(table, sig)
			if ratio > e.cfg.Extract.EmptyNameRatioTrigger && !e.cfg.Extract.ForceStandard {
				anomalies = append(anomalies, fmt.Sprintf(
					"page %d table %d: empty coverage-name ratio %.2f exceeds trigger, using hybrid reconstruction",
					sig.Page, sig.TableIndex, ratio))
				rows, hybAnoms := e.hybridRows(doc, sig, table.Bounds)
				return rows, append(anomalies, hybAnoms...), nil
			}
			raw, skips := ExtractStandard(table, sig)
			return standardRows(raw, sig), anomalies, prefix(skips, sig)
		}
		// No usable cells or no name column: hybrid is the only option.
		rows, hybAnoms := e.hybridRows(doc, sig, boundsOf(table, ok))
		return rows, append(anomalies, hybAnoms...), nil
	}

	rows, hybAnoms := e.hybridRows(doc, sig, boundsOf(table, ok))
	anomalies = append(anomalies, hybAnoms...)
	if len(rows) == 0 && ok && sig.ColumnMap.CoverageNameIndex != nil {
		raw, skips := ExtractStandard(table, sig)
		return standardRows(raw, sig), anomalies, prefix(skips, sig)
	}
	return rows, anomalies, nil
}

func (e *Extractor) hybridRows(doc pdfdoc.Document, sig model.TableSignature, bounds pdfdoc.Rect) ([]factRow, []string) {
	recon, anomalies, err := e.hybrid.Reconstruct(doc, sig.Page, bounds)
	if err != nil {
		return nil, append(anomalies, fmt.Sprintf("page %d table %d: hybrid reconstruction failed: %v", sig.Page, sig.TableIndex, err))
	}
	rows := make([]factRow, 0, len(recon))
	for _, r := range recon {
		rows = append(rows, factRow{
			name:    r.Name,
			amount:  r.Amount,
			premium: r.Premium,
			period:  r.Period,
			evidence: model.Evidence{
				Page: r.Page, YTop: r.YTop, YBottom: r.YBottom, Note: "hybrid",
			},
		})
	}
	return rows, anomalies
}

func (e *Extractor) record(prof *model.Profile, ident model.ProductIdentity, variant model.VariantContext, row factRow) model.FactRecord {
	return model.FactRecord{
		InsurerKey:      prof.Insurer,
		IssuerCode:      e.cfg.Identity.IssuerCodes[prof.Insurer],
		Product:         ident.ProductKey,
		Variant:         prof.Variant,
		ProposalContext: variant,
		CoverageNameRaw: row.name,
		ProposalFacts: model.ProposalFact{
			CoverageNameRaw:    row.name,
			CoverageAmountText: row.amount,
			PremiumText:        row.premium,
			PeriodText:         row.period,
			Semantics:          e.decomp.Decompose(row.name),
			Evidence:           []model.Evidence{row.evidence},
		},
	}
}

// findTable locates the signature's table on its page, matching by index
// with a positional fallback.
func (e *Extractor) findTable(doc pdfdoc.Document, sig model.TableSignature, anomalies *[]string) (pdfdoc.Table, bool) {
	tables, err := doc.PageTables(sig.Page)
	if err != nil {
		*anomalies = append(*anomalies, fmt.Sprintf("page %d: table extraction failed: %v", sig.Page, err))
		return pdfdoc.Table{}, false
	}
	for _, t := range tables {
		if t.Index == sig.TableIndex {
			return t, true
		}
	}
	if sig.TableIndex < len(tables) {
		return tables[sig.TableIndex], true
	}
	*anomalies = append(*anomalies, fmt.Sprintf("page %d: table %d not found", sig.Page, sig.TableIndex))
	return pdfdoc.Table{}, false
}

func standardRows(raw []RawRow, sig model.TableSignature) []factRow {
	rows := make([]factRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, factRow{
			name:     r.Name,
			amount:   r.Amount,
			premium:  r.Premium,
			period:   r.Period,
			evidence: model.Evidence{Page: sig.Page, Row: r.Row, Note: "standard"},
		})
	}
	return rows
}

func prefix(skips []string, sig model.TableSignature) []string {
	out := make([]string, 0, len(skips))
	for _, s := range skips {
		out = append(out, fmt.Sprintf("page %d table %d: skipped row: %s", sig.Page, sig.TableIndex, s))
	}
	return out
}

func boundsOf(t pdfdoc.Table, ok bool) pdfdoc.Rect {
	if !ok {
		return pdfdoc.Rect{}
	}
	return t.Bounds
}

func sigKey(sig model.TableSignature) [2]int {
	return [2]int{sig.Page, sig.TableIndex}
}

func primarySet(prof *model.Profile) map[[2]int]bool {
	set := map[[2]int]bool{}
	for _, sig := range prof.SummaryTable.PrimarySignatures {
		set[sigKey(sig)] = true
	}
	return set
}
