package decoder

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joelprem743/telegram-excel-bot/internal/grid"
)

var (
	// ErrUnsupportedFormat rejects file names outside the two supported
	// container extensions before any decoding is attempted.
	ErrUnsupportedFormat = errors.New("unsupported file type, use .xls or .xlsx")

	// ErrEmptyWorkbook marks a sheet with zero rows: no usable header.
	ErrEmptyWorkbook = errors.New("workbook has no rows")

	// ErrTooManyRows marks an upload over the configured data-row ceiling.
	ErrTooManyRows = errors.New("workbook exceeds the row limit")
)

// Options bound what Decode is willing to load.
type Options struct {
	// MaxRows caps the number of data rows; 0 means no cap.
	MaxRows int
}

// Decode turns raw file bytes into a normalized grid. The container family is
// selected by the declared file name's extension: .xlsx is read as the modern
// zip container, .xls as the legacy BIFF container. A file named .xls that the
// legacy reader rejects as structurally not BIFF is re-read as the modern
// container before the error surfaces, since xlsx files disguised with an .xls
// suffix are common in the wild.
func Decode(data []byte, fileName string, opts Options) (*grid.Grid, error) {
	var g *grid.Grid
	var err error

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		g, err = decodeXLSX(data)
	case ".xls":
		g, err = decodeXLS(data, fileName)
		if err != nil && isNotBIFF(err) {
			if modern, retryErr := decodeXLSX(data); retryErr == nil {
				g, err = modern, nil
			}
		}
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}

	if g.Empty() {
		return nil, ErrEmptyWorkbook
	}
	if opts.MaxRows > 0 && g.RowCount() > opts.MaxRows {
		return nil, fmt.Errorf("%w: %d data rows, limit %d", ErrTooManyRows, g.RowCount(), opts.MaxRows)
	}
	return g, nil
}
