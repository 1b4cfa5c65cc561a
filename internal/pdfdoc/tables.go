package pdfdoc

import "sort"

// Grid recovery thresholds, in points. No dependency in reach exposes PDF
// table cells, so grids are clustered from positioned fragments: fragments
// close in Y form a band (row), gaps wider than colGap split a band into
// cells, and contiguous bands form one table.
const (
	bandTolerance = 3.0
	colGap        = 12.0
	maxRowGap     = 28.0
	colAlign      = 10.0
)

type band struct {
	y     float64
	frags []Fragment
}

// RecoverTables clusters page fragments into cell grids.
func RecoverTables(page int, frags []Fragment) []Table {
	bands := clusterBands(frags)
	if len(bands) == 0 {
		return nil
	}

	var tables []Table
	run := []band{bands[0]}
	for i := 1; i < len(bands); i++ {
		if run[len(run)-1].y-bands[i].y > maxRowGap {
			if t, ok := buildTable(page, len(tables), run); ok {
				tables = append(tables, t)
			}
			run = run[:0]
		}
		run = append(run, bands[i])
	}
	if t, ok := buildTable(page, len(tables), run); ok {
		tables = append(tables, t)
	}
	return tables
}

// clusterBands groups fragments by top-edge proximity, top-to-bottom.
func clusterBands(frags []Fragment) []band {
	sorted := make([]Fragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var bands []band
	for _, f := range sorted {
		if n := len(bands); n > 0 && bands[n-1].y-f.Y <= bandTolerance {
			bands[n-1].frags = append(bands[n-1].frags, f)
			continue
		}
		bands = append(bands, band{y: f.Y, frags: []Fragment{f}})
	}
	for i := range bands {
		sort.SliceStable(bands[i].frags, func(a, b int) bool {
			return bands[i].frags[a].X < bands[i].frags[b].X
		})
	}
	return bands
}

// cell is a run of fragments within a band separated from neighbours by a
// column gap.
type cell struct {
	x    float64
	text string
}

func splitCells(b band) []cell {
	var cells []cell
	cur := cell{x: b.frags[0].X, text: b.frags[0].Text}
	end := b.frags[0].X + b.frags[0].W
	for _, f := range b.frags[1:] {
		if f.X-end > colGap {
			cells = append(cells, cur)
			cur = cell{x: f.X, text: f.Text}
		} else {
			cur.text += " " + f.Text
		}
		if f.X+f.W > end {
			end = f.X + f.W
		}
	}
	return append(cells, cur)
}

// buildTable aligns a run of bands into a rectangular grid. A run qualifies
// as a table when it has at least three bands and at least one band splits
// into two or more cells.
func buildTable(page, index int, run []band) (Table, bool) {
	if len(run) < 3 {
		return Table{}, false
	}
	rows := make([][]cell, len(run))
	maxCells := 0
	for i, b := range run {
		rows[i] = splitCells(b)
		if len(rows[i]) > maxCells {
			maxCells = len(rows[i])
		}
	}
	if maxCells < 2 {
		return Table{}, false
	}

	slots := columnSlots(rows)
	grid := make([][]string, len(rows))
	for i, cells := range rows {
		grid[i] = make([]string, len(slots))
		for _, c := range cells {
			j := nearestSlot(slots, c.x)
			if grid[i][j] != "" {
				grid[i][j] += " "
			}
			grid[i][j] += c.text
		}
	}

	bounds := runBounds(run)
	return Table{Page: page, Index: index, Rows: grid, Bounds: bounds}, true
}

// columnSlots clusters cell start positions across all rows into column
// anchors.
func columnSlots(rows [][]cell) []float64 {
	var xs []float64
	for _, cells := range rows {
		for _, c := range cells {
			xs = append(xs, c.x)
		}
	}
	sort.Float64s(xs)
	var slots []float64
	for _, x := range xs {
		if n := len(slots); n == 0 || x-slots[n-1] > colAlign {
			slots = append(slots, x)
		}
	}
	return slots
}

func nearestSlot(slots []float64, x float64) int {
	best, bestDist := 0, 0.0
	for i, s := range slots {
		d := x - s
		if d < 0 {
			d = -d
		}
		if i == 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func runBounds(run []band) Rect {
	r := Rect{X0: run[0].frags[0].X, Y0: run[0].y, X1: run[0].frags[0].X, Y1: run[0].y}
	for _, b := range run {
		if b.y < r.Y0 {
			r.Y0 = b.y
		}
		if b.y > r.Y1 {
			r.Y1 = b.y
		}
		for _, f := range b.frags {
			if f.X < r.X0 {
				r.X0 = f.X
			}
			if f.X+f.W > r.X1 {
				r.X1 = f.X + f.W
			}
		}
	}
	// Pad by one band so edge fragments stay inside.
	r.Y0 -= bandTolerance
	r.Y1 += bandTolerance
	return r
}
