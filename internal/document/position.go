package document

// Position points into the document by (row, col). Both are 0-based and
// columns count runes.
type Position struct {
	Row int
	Col int
}

// Range is half-open: [Start, End).
type Range struct {
	Start Position
	End   Position
}

// RowRange returns a range covering rows start..end inclusive.
func RowRange(start, end int) Range {
	return Range{Start: Position{Row: start}, End: Position{Row: end}}
}

func ComparePos(a, b Position) int {
	if a.Row < b.Row {
		return -1
	}
	if a.Row > b.Row {
		return 1
	}
	if a.Col < b.Col {
		return -1
	}
	if a.Col > b.Col {
		return 1
	}
	return 0
}

func NormalizeRange(r Range) Range {
	if ComparePos(r.Start, r.End) <= 0 {
		return r
	}
	return Range{Start: r.End, End: r.Start}
}

func (r Range) IsEmpty() bool {
	return r.Start == r.End
}
