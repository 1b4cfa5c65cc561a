package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/daehwan-oh/coverfact/internal/model"
	"github.com/daehwan-oh/coverfact/internal/pdfdoc"
)

// ReconRow is one coverage row rebuilt from positioned text fragments.
type ReconRow struct {
	Seq     string
	Name    string
	Amount  string
	Premium string
	Period  string
	Page    int
	YTop    float64
	YBottom float64
}

// Reconstructor rebuilds coverage rows when a document renders row text
// outside the actual table cell boundaries and direct cell extraction
// returns a sparsely populated grid.
type Reconstructor struct {
	cfg      model.HybridConfig
	valueRe  *regexp.Regexp
	amountRe *regexp.Regexp
}

// NewReconstructor compiles the configured patterns.
func NewReconstructor(cfg model.HybridConfig) (*Reconstructor, error) {
	valueRe, err := regexp.Compile(cfg.ValueLinePattern)
	if err != nil {
		return nil, fmt.Errorf("value line pattern: %w", err)
	}
	amountRe, err := regexp.Compile(cfg.AmountCellPattern)
	if err != nil {
		return nil, fmt.Errorf("amount cell pattern: %w", err)
	}
	return &Reconstructor{cfg: cfg, valueRe: valueRe, amountRe: amountRe}, nil
}

// Reconstruct extracts fragments confined to the table's bounding box,
// clusters them into horizontal row bands, and parses each band into a
// coverage row. Rows come back sorted top-to-bottom with their y-range as
// evidence.
func (r *Reconstructor) Reconstruct(doc pdfdoc.Document, page int, bounds pdfdoc.Rect) ([]ReconRow, []string, error) {
	frags, err := doc.PageFragments(page, bounds)
	if err != nil {
		return nil, nil, fmt.Errorf("page %d fragments: %w", page, err)
	}

	var rows []ReconRow
	var anomalies []string
	for _, b := range r.bands(frags) {
		row, reason := r.parseBand(page, b)
		if reason != "" {
			anomalies = append(anomalies, fmt.Sprintf("page %d y=%.1f: %s", page, b.y, reason))
			continue
		}
		if row != nil {
			rows = append(rows, *row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].YTop > rows[j].YTop })
	return rows, anomalies, nil
}

type fragBand struct {
	y     float64
	frags []pdfdoc.Fragment
}

// bands clusters fragments into horizontal row bands: fragments within the
// tolerance of each other's top edge belong to the same band.
func (r *Reconstructor) bands(frags []pdfdoc.Fragment) []fragBand {
	sorted := make([]pdfdoc.Fragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var bands []fragBand
	for _, f := range sorted {
		if n := len(bands); n > 0 && bands[n-1].y-f.Y <= r.cfg.BandTolerance {
			bands[n-1].frags = append(bands[n-1].frags, f)
			continue
		}
		bands = append(bands, fragBand{y: f.Y, frags: []pdfdoc.Fragment{f}})
	}
	for i := range bands {
		sort.SliceStable(bands[i].frags, func(a, b int) bool {
			return bands[i].frags[a].X < bands[i].frags[b].X
		})
	}
	return bands
}

// parseBand classifies the band's fragments into exactly one value fragment
// and zero-or-more name fragments, then parses the value text positionally.
// A nil row with empty reason means the band is not a coverage row at all
// (no value fragment); a non-empty reason is a recorded anomaly.
func (r *Reconstructor) parseBand(page int, b fragBand) (*ReconRow, string) {
	valueIdx := -1
	for i, f := range b.frags {
		if r.amountRe.MatchString(f.Text) {
			valueIdx = i
			break
		}
	}
	if valueIdx < 0 {
		return nil, ""
	}

	var nameParts []string
	yTop, yBottom := b.frags[0].Y, b.frags[0].Y
	for i, f := range b.frags {
		if f.Y > yTop {
			yTop = f.Y
		}
		if f.Y < yBottom {
			yBottom = f.Y
		}
		if i != valueIdx {
			nameParts = append(nameParts, f.Text)
		}
	}

	row := ReconRow{Page: page, YTop: yTop, YBottom: yBottom}
	value := b.frags[valueIdx].Text
	if m := r.valueRe.FindStringSubmatch(value); m != nil {
		row.Seq = m[1]
		if m[2] != "" {
			nameParts = append(nameParts, m[2])
		}
		row.Amount = strings.TrimSpace(m[3])
		row.Premium = strings.TrimSpace(m[4])
		row.Period = strings.TrimSpace(m[5])
	} else {
		row.Amount = strings.TrimSpace(r.amountRe.FindString(value))
	}

	row.Name = strings.TrimSpace(strings.Join(nameParts, " "))
	if reason := r.rejectName(row.Name); reason != "" {
		return nil, reason
	}
	return &row, ""
}

// rejectName filters suspicious reconstructions: names too short to be a
// real coverage with no contiguous run of word script, or header/noise
// rows.
func (r *Reconstructor) rejectName(name string) string {
	if len([]rune(name)) < r.cfg.MinNameLen && longestWordRun(name) < r.cfg.MinWordRun {
		return "suspicious short name: " + name
	}
	for _, kw := range r.cfg.NoiseKeywords {
		if strings.Contains(name, kw) {
			return "header/noise row: " + name
		}
	}
	return ""
}

// longestWordRun returns the length of the longest contiguous run of
// letter/digit runes.
func longestWordRun(s string) int {
	best, cur := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur++
			if cur > best {
				best = cur
			}
		} else {
			cur = 0
		}
	}
	return best
}
