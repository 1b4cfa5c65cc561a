package pdfdoc

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/text/unicode/norm"
)

// glyph merge thresholds, in points. Runs closer than joinGap are one
// fragment; gaps above spaceGap get a space inserted between them.
const (
	joinGap  = 4.0
	spaceGap = 1.0
)

// Reader is the ledongthuc/pdf-backed Document implementation. Parsed page
// artifacts (text, fragments, tables) are memoized per page because the
// builder, identity extractor, detail extractor, and hybrid reconstructor
// all revisit the same pages.
type Reader struct {
	path  string
	file  *os.File
	r     *pdf.Reader
	cache *gocache.Cache
}

// Open opens a proposal PDF for reading.
func Open(path string) (*Reader, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &Reader{
		path:  path,
		file:  f,
		r:     r,
		cache: gocache.New(gocache.NoExpiration, 0),
	}, nil
}

// PageCountOf returns the page count of a PDF without keeping it open.
// pdfcpu validates the xref table on the way, so a corrupt document fails
// here rather than mid-extraction.
func PageCountOf(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("page count %s: %w", path, err)
	}
	return n, nil
}

// PageCount returns the number of pages.
func (d *Reader) PageCount() int {
	return d.r.NumPage()
}

// Close releases the underlying file.
func (d *Reader) Close() error {
	return d.file.Close()
}

// PageText returns the plain text of a page, NFC-normalized. Hangul in PDF
// content streams frequently arrives as decomposed jamo; every keyword
// match downstream assumes composed form.
func (d *Reader) PageText(page int) (string, error) {
	key := fmt.Sprintf("text:%d", page)
	if v, ok := d.cache.Get(key); ok {
		return v.(string), nil
	}
	p := d.r.Page(page)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d of %s: no content", page, d.path)
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d of %s: %w", page, d.path, err)
	}
	text = norm.NFC.String(text)
	d.cache.Set(key, text, gocache.NoExpiration)
	return text, nil
}

// PageFragments returns merged positioned text runs on a page, confined to
// region, ordered top-to-bottom then left-to-right.
func (d *Reader) PageFragments(page int, region Rect) ([]Fragment, error) {
	all, err := d.pageFragments(page)
	if err != nil {
		return nil, err
	}
	if region.Empty() {
		return all, nil
	}
	var out []Fragment
	for _, f := range all {
		if region.Contains(f.X, f.Y) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (d *Reader) pageFragments(page int) ([]Fragment, error) {
	key := fmt.Sprintf("frags:%d", page)
	if v, ok := d.cache.Get(key); ok {
		return v.([]Fragment), nil
	}
	p := d.r.Page(page)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d of %s: no content", page, d.path)
	}
	texts := p.Content().Text
	frags := mergeGlyphs(texts)
	d.cache.Set(key, frags, gocache.NoExpiration)
	return frags, nil
}

// PageTables returns the table grids recovered on a page.
func (d *Reader) PageTables(page int) ([]Table, error) {
	key := fmt.Sprintf("tables:%d", page)
	if v, ok := d.cache.Get(key); ok {
		return v.([]Table), nil
	}
	frags, err := d.pageFragments(page)
	if err != nil {
		return nil, err
	}
	tables := RecoverTables(page, frags)
	d.cache.Set(key, tables, gocache.NoExpiration)
	return tables, nil
}

// mergeGlyphs merges per-glyph text positions into word/cell-level runs.
func mergeGlyphs(texts []pdf.Text) []Fragment {
	if len(texts) == 0 {
		return nil
	}
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y // top first
		}
		return sorted[i].X < sorted[j].X
	})

	var frags []Fragment
	var sb strings.Builder
	cur := Fragment{X: sorted[0].X, Y: sorted[0].Y}
	end := sorted[0].X
	flush := func() {
		text := strings.TrimSpace(norm.NFC.String(sb.String()))
		if text != "" {
			cur.Text = text
			cur.W = end - cur.X
			frags = append(frags, cur)
		}
		sb.Reset()
	}
	for i, t := range sorted {
		if i == 0 {
			sb.WriteString(t.S)
			end = t.X + t.W
			continue
		}
		sameLine := abs(t.Y-cur.Y) < 0.5
		gap := t.X - end
		if !sameLine || gap > joinGap {
			flush()
			cur = Fragment{X: t.X, Y: t.Y}
		} else if gap > spaceGap {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.S)
		if t.X+t.W > end || !sameLine {
			end = t.X + t.W
		}
	}
	flush()
	return frags
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
