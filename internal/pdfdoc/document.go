// Package pdfdoc is the document access layer: page text, positioned text
// fragments, and table grids recovered from a proposal PDF. Everything above
// this package works against the Document interface so detection and
// extraction logic can be tested with fixed in-memory documents.
package pdfdoc

// Rect is a bounding box in PDF coordinates (origin bottom-left, Y grows
// upward).
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Empty reports whether the rect covers no area.
func (r Rect) Empty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Contains reports whether the point lies inside the rect. An empty rect
// contains everything, so "no region" means "whole page".
func (r Rect) Contains(x, y float64) bool {
	if r.Empty() {
		return true
	}
	return x >= r.X0 && x <= r.X1 && y >= r.Y0 && y <= r.Y1
}

// Fragment is one positioned text run on a page.
type Fragment struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"` // top edge
	W    float64 `json:"w"`
}

// Table is one recovered cell grid.
type Table struct {
	Page   int        `json:"page"`
	Index  int        `json:"index"`
	Rows   [][]string `json:"rows"`
	Bounds Rect       `json:"bounds"`
}

// Document is the read-only view of one open proposal PDF. Pages are
// 1-based. Implementations are not safe for concurrent use; the core
// processes one document synchronously.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int
	// PageText returns the plain text of a page, NFC-normalized.
	PageText(page int) (string, error)
	// PageTables returns the table grids recovered on a page, in reading
	// order.
	PageTables(page int) ([]Table, error)
	// PageFragments returns positioned text fragments on a page confined to
	// region (an empty region means the whole page), ordered top-to-bottom
	// then left-to-right.
	PageFragments(page int, region Rect) ([]Fragment, error)
	// Close releases the underlying file.
	Close() error
}
