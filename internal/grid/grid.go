package grid

// Grid is the decoded, normalized rectangular view of one sheet. Row 0 is the
// header row by convention; data rows are read padded or truncated to the
// header width.
type Grid struct {
	rows [][]string
}

func New(rows [][]string) *Grid {
	return &Grid{rows: rows}
}

// Empty reports whether the sheet produced no rows at all, i.e. there is no
// usable header.
func (g *Grid) Empty() bool {
	return g == nil || len(g.rows) == 0
}

func (g *Grid) Header() []string {
	if g.Empty() {
		return nil
	}
	return g.rows[0]
}

// Width is the column count of the header row.
func (g *Grid) Width() int {
	return len(g.Header())
}

// DataRows returns the rows below the header in storage order. Rows keep
// their decoded length; use Cell for padded access.
func (g *Grid) DataRows() [][]string {
	if g.Empty() {
		return nil
	}
	return g.rows[1:]
}

func (g *Grid) RowCount() int {
	return len(g.DataRows())
}

// Cell reads column col (0-based) of data row i, returning "" for cells the
// stored row does not reach.
func (g *Grid) Cell(i, col int) string {
	rows := g.DataRows()
	if i < 0 || i >= len(rows) {
		return ""
	}
	if col < 0 || col >= len(rows[i]) {
		return ""
	}
	return rows[i][col]
}
