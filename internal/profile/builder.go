// Package profile discovers coverage-table regions in a proposal document,
// infers their column semantics, and persists the result as a versioned,
// fingerprint-locked profile artifact.
package profile

import (
	"fmt"
	"sort"
	"time"

	"github.com/daehwan-oh/coverfact/internal/model"
	"github.com/daehwan-oh/coverfact/internal/pdfdoc"
)

// BuilderVersion is stamped into every profile artifact.
const BuilderVersion = "1.3.0"

// ProfileVersion is the artifact schema version.
const ProfileVersion = "2"

// Builder runs two-pass table discovery and column inference over a
// document. It has no per-issuer templates: every decision is a
// deterministic rule over observed cell content.
type Builder struct {
	cfg    *model.Config
	pats   *patterns
	det    *detector
	mapper *mapper
}

// NewBuilder compiles the configured detection patterns.
func NewBuilder(cfg *model.Config) (*Builder, error) {
	pats, err := compilePatterns(cfg.Detection)
	if err != nil {
		return nil, fmt.Errorf("compile detection patterns: %w", err)
	}
	return &Builder{
		cfg:    cfg,
		pats:   pats,
		det:    &detector{cfg: cfg.Detection, pats: pats},
		mapper: &mapper{cfg: cfg.Columns, det: cfg.Detection, pats: pats},
	}, nil
}

// Build discovers table signatures in doc and assembles a profile. Pages
// are processed in ascending order; Pass B never re-examines a page Pass A
// claimed.
func (b *Builder) Build(doc pdfdoc.Document, insurer, variant, sourcePath string, fp model.Fingerprint, detail model.DetailStructure) (*model.Profile, error) {
	p := &model.Profile{
		ProfileVersion: ProfileVersion,
		BuilderVersion: BuilderVersion,
		GeneratedAt:    time.Now().UTC(),
		Insurer:        insurer,
		Variant:        variant,
		SourcePDFPath:  sourcePath,
		PDFFingerprint: &fp,
		Detail:         detail,
	}

	claimed := map[int]bool{}
	type pending struct {
		table pdfdoc.Table
		cls   classification
	}
	var passBQueue []pdfdoc.Table

	pages := doc.PageCount()
	tablesSeen := 0
	var matches []pending

	for page := 1; page <= pages; page++ {
		tables, err := doc.PageTables(page)
		if err != nil {
			p.KnownAnomalies = append(p.KnownAnomalies,
				fmt.Sprintf("page %d: table extraction failed: %v", page, err))
			continue
		}
		tablesSeen += len(tables)
		for _, t := range tables {
			if cls := b.det.passA(t); cls.matched {
				claimed[page] = true
				matches = append(matches, pending{table: t, cls: cls})
			} else {
				passBQueue = append(passBQueue, t)
			}
		}
	}

	for _, t := range passBQueue {
		if claimed[t.Page] {
			continue
		}
		if cls := b.det.passB(t); cls.matched {
			matches = append(matches, pending{table: t, cls: cls})
		}
	}

	for _, m := range matches {
		sig := b.signature(m.table, m.cls, p)
		p.SummaryTable.TableSignatures = append(p.SummaryTable.TableSignatures, sig)
		if m.cls.primary {
			p.SummaryTable.PrimarySignatures = append(p.SummaryTable.PrimarySignatures, sig)
		} else {
			p.SummaryTable.VariantSignatures = append(p.SummaryTable.VariantSignatures, sig)
		}
	}

	p.DetectionMetadata = model.DetectionMetadata{
		PagesScanned: pages,
		TablesSeen:   tablesSeen,
		ClaimedPages: sortedPages(claimed),
	}

	if len(p.SummaryTable.TableSignatures) == 0 {
		p.KnownAnomalies = append(p.KnownAnomalies, "no summary-table candidates detected")
	}
	return p, nil
}

func (b *Builder) signature(t pdfdoc.Table, cls classification, p *model.Profile) model.TableSignature {
	cm, notes := b.mapper.infer(t, cls.headerRow, cls.pass)
	for _, n := range notes {
		p.KnownAnomalies = append(p.KnownAnomalies,
			fmt.Sprintf("page %d table %d: %s", t.Page, t.Index, n))
	}
	return model.TableSignature{
		Page:           t.Page,
		TableIndex:     t.Index,
		RowCount:       len(t.Rows),
		ColCount:       colCount(t.Rows),
		HeaderRowIndex: cls.headerRow,
		ColumnMap:      cm,
		RowFilter: model.RowFilterRules{
			MinNameLen:         b.cfg.RowFilter.MinNameLen,
			MaxNameLen:         b.cfg.RowFilter.MaxNameLen,
			TotalsKeywords:     b.cfg.RowFilter.TotalsKeywords,
			DisclaimerKeywords: b.cfg.RowFilter.DisclaimerKeywords,
		},
		DetectionEvidence: cls.evidence,
		DetectionPass:     cls.pass,
	}
}

func sortedPages(claimed map[int]bool) []int {
	var pages []int
	for p := range claimed {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}
