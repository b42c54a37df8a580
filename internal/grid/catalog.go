package grid

import "fmt"

// Column describes one header position for presentation. Index is 1-based,
// matching what the user picks from.
type Column struct {
	Index int
	Label string
}

// Columns derives one descriptor per header cell. Empty header cells get a
// positional placeholder label.
func Columns(g *Grid) []Column {
	header := g.Header()
	cols := make([]Column, len(header))
	for i, label := range header {
		if label == "" {
			label = fmt.Sprintf("Column %d", i+1)
		}
		cols[i] = Column{Index: i + 1, Label: label}
	}
	return cols
}
