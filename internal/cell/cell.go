package cell

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags the decoded type of a spreadsheet cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindDate
)

// Value is one decoded cell before normalization. Decoders produce typed
// values where the container carries type information (xls) and plain text
// where it does not (raw xlsx values).
type Value struct {
	Kind   Kind
	Text   string
	Number float64
	Date   time.Time
}

func Empty() Value           { return Value{Kind: KindEmpty} }
func Text(s string) Value    { return Value{Kind: KindText, Text: s} }
func Number(f float64) Value { return Value{Kind: KindNumber, Number: f} }
func Date(t time.Time) Value { return Value{Kind: KindDate, Date: t} }

const dateLayout = "02-01-2006"

// Legacy workbooks count days from 1899-12-30 (day 0), which absorbs the
// Lotus 1-2-3 leap-year bug.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Serial values in this range are read as calendar dates rather than plain
// numbers. Zero and negatives never qualify.
const (
	serialMin = 1000
	serialMax = 100000
)

// Normalize converts a decoded cell value into its canonical display string.
// It is total: every input yields a string, never an error.
func Normalize(v Value) string {
	switch v.Kind {
	case KindEmpty:
		return ""
	case KindDate:
		return v.Date.Format(dateLayout)
	case KindNumber:
		return formatNumber(v.Number)
	case KindText:
		s := strings.TrimSpace(v.Text)
		if f, ok := parseNumeric(s); ok {
			return formatNumber(f)
		}
		return s
	default:
		return strings.TrimSpace(v.Text)
	}
}

// formatNumber renders a numeric value without scientific notation. Values
// that plausibly encode a legacy date serial become calendar dates first.
func formatNumber(f float64) string {
	if t, ok := SerialDate(f); ok {
		return t.Format(dateLayout)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Sprint(f)
	}
	// 'f' never produces an exponent; -1 keeps the shortest representation,
	// so integral floats render as plain integers and fractions carry no
	// trailing zeros.
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// SerialDate converts a legacy spreadsheet day serial to a calendar date.
// Only serials inside the heuristic window convert; everything else is
// reported as a plain number.
func SerialDate(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	if f < serialMin || f >= serialMax {
		return time.Time{}, false
	}
	days := int(math.Floor(f))
	return serialEpoch.AddDate(0, 0, days), true
}

// parseNumeric reports whether s is a numeric-looking string. Leading zeros
// and spreadsheet-style raw decimals parse; empty strings and text do not.
func parseNumeric(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
