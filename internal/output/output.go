package output

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joelprem743/telegram-excel-bot/internal/grid"
)

const sheetName = "Filtered"

// Column widths stay inside a readable band regardless of content.
const (
	minColWidth = 8
	maxColWidth = 60
	widthPad    = 2
)

// Build selects the data rows whose cell in column col (0-based) equals
// chosen — trimmed and case-insensitive, exact rather than substring, since
// disambiguation already narrowed the user to one canonical form — and
// serializes header plus matches into a new workbook.
//
// A zero count means no rows matched; no bytes are produced for it.
func Build(g *grid.Grid, col int, chosen string) ([]byte, int, error) {
	want := strings.ToLower(strings.TrimSpace(chosen))

	var matched [][]string
	for i := 0; i < g.RowCount(); i++ {
		v := strings.ToLower(strings.TrimSpace(g.Cell(i, col)))
		if v == want {
			matched = append(matched, padded(g, i))
		}
	}
	if len(matched) == 0 {
		return nil, 0, nil
	}

	data, err := write(g.Header(), matched)
	if err != nil {
		return nil, 0, err
	}
	return data, len(matched), nil
}

// padded returns data row i stretched to the header width.
func padded(g *grid.Grid, i int) []string {
	row := make([]string, g.Width())
	for c := range row {
		row[c] = g.Cell(i, c)
	}
	return row
}

func write(header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	widths := make([]int, len(header))
	all := append([][]string{header}, rows...)
	for r, row := range all {
		rec := make([]interface{}, len(row))
		for c, v := range row {
			rec[c] = v
			if c < len(widths) && len(v) > widths[c] {
				widths[c] = len(v)
			}
		}
		addr, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return nil, fmt.Errorf("failed to address row %d: %w", r+1, err)
		}
		if err := f.SetSheetRow(sheetName, addr, &rec); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	for c := range header {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to size column %d: %w", c+1, err)
		}
		w := clamp(widths[c]+widthPad, minColWidth, maxColWidth)
		if err := f.SetColWidth(sheetName, name, name, float64(w)); err != nil {
			return nil, fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
