package decoder

import (
	"errors"
	"fmt"
	"os"

	"github.com/yamitzky/xlrd-go/xlrd"

	"github.com/joelprem743/telegram-excel-bot/internal/cell"
	"github.com/joelprem743/telegram-excel-bot/internal/grid"
)

// decodeXLS reads the first sheet of a legacy BIFF container by row/column
// index, mapping the reader's typed cells onto the normalizer's variant.
// The reader sniffs the container by path, so the bytes are staged in a
// temporary file for the duration of the decode.
func decodeXLS(data []byte, fileName string) (*grid.Grid, error) {
	tmp, err := os.CreateTemp("", "upload-*.xls")
	if err != nil {
		return nil, fmt.Errorf("failed to stage workbook: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to stage workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to stage workbook: %w", err)
	}

	book, err := xlrd.OpenWorkbook(tmp.Name(), &xlrd.OpenWorkbookOptions{
		FileContents: data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy workbook: %w", err)
	}
	defer book.ReleaseResources()

	if book.NSheets == 0 {
		return grid.New(nil), nil
	}
	sheet, err := book.SheetByIndex(0)
	if err != nil {
		return nil, fmt.Errorf("failed to read first sheet: %w", err)
	}

	rows := make([][]string, 0, sheet.NRows)
	for r := 0; r < sheet.NRows; r++ {
		row := make([]string, sheet.NCols)
		for c := 0; c < sheet.NCols; c++ {
			row[c] = cell.Normalize(legacyCell(book, sheet, r, c))
		}
		rows = append(rows, row)
	}
	return grid.New(rows), nil
}

// legacyCell converts one xlrd cell into the normalizer's tagged variant.
func legacyCell(book *xlrd.Book, sheet *xlrd.Sheet, r, c int) cell.Value {
	value := sheet.CellValue(r, c)
	switch sheet.CellType(r, c) {
	case xlrd.XL_CELL_TEXT:
		return cell.Text(asString(value))
	case xlrd.XL_CELL_NUMBER:
		if f, ok := asFloat(value); ok {
			return cell.Number(f)
		}
		return cell.Text(asString(value))
	case xlrd.XL_CELL_DATE:
		if f, ok := asFloat(value); ok {
			if t, err := xlrd.XldateAsDatetime(f, book.Datemode); err == nil {
				return cell.Date(t)
			}
			return cell.Number(f)
		}
		return cell.Text(asString(value))
	case xlrd.XL_CELL_BOOLEAN:
		if truthy(value) {
			return cell.Text("TRUE")
		}
		return cell.Text("FALSE")
	case xlrd.XL_CELL_ERROR:
		return cell.Text(errorText(value))
	default: // XL_CELL_EMPTY, XL_CELL_BLANK
		return cell.Empty()
	}
}

// isNotBIFF reports whether the legacy reader failed because the bytes are
// not a BIFF stream at all, which is the cue to retry as the modern container.
func isNotBIFF(err error) bool {
	var xe *xlrd.XLRDError
	return errors.As(err, &xe)
}

func asString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func truthy(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int:
		return b != 0
	default:
		return false
	}
}

func errorText(v interface{}) string {
	switch code := v.(type) {
	case byte:
		if text, ok := xlrd.ErrorTextFromCode[code]; ok {
			return text
		}
	case int:
		if text, ok := xlrd.ErrorTextFromCode[byte(code)]; ok {
			return text
		}
	}
	return "#ERROR"
}
