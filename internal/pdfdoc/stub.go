package pdfdoc

// Stub is an in-memory Document for tests: fixed page text, tables, and
// fragments keyed by page number.
type Stub struct {
	NumPages  int
	Texts     map[int]string
	Tables    map[int][]Table
	Fragments map[int][]Fragment
}

// PageCount returns the declared page count, or the highest keyed page.
func (s *Stub) PageCount() int {
	if s.NumPages > 0 {
		return s.NumPages
	}
	max := 0
	for p := range s.Texts {
		if p > max {
			max = p
		}
	}
	for p := range s.Tables {
		if p > max {
			max = p
		}
	}
	return max
}

func (s *Stub) PageText(page int) (string, error) {
	return s.Texts[page], nil
}

func (s *Stub) PageTables(page int) ([]Table, error) {
	return s.Tables[page], nil
}

func (s *Stub) PageFragments(page int, region Rect) ([]Fragment, error) {
	var out []Fragment
	for _, f := range s.Fragments[page] {
		if region.Contains(f.X, f.Y) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *Stub) Close() error { return nil }
