package decoder

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/joelprem743/telegram-excel-bot/internal/cell"
	"github.com/joelprem743/telegram-excel-bot/internal/grid"
)

// decodeXLSX reads the active sheet of a modern zip container. Cells are read
// as raw stored values, not formulas and not display formatting, then pushed
// through the normalizer so candidates and output agree on one surface form.
func decodeXLSX(data []byte) (*grid.Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	rows := make([][]string, len(raw))
	for i, r := range raw {
		row := make([]string, len(r))
		for j, v := range r {
			if v == "" {
				continue
			}
			row[j] = cell.Normalize(cell.Text(v))
		}
		rows[i] = row
	}
	return grid.New(rows), nil
}
