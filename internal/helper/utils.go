package helper

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// OutputFileName suggests a delivery name for the filtered workbook. The
// result is always an xlsx, whatever container the upload arrived in.
func OutputFileName(original string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	if base == "" {
		base = "filtered"
	}
	return base + "_filtered.xlsx"
}

// SanitizeValue makes a chosen value safe to embed in messages and captions,
// collapsing control characters and runaway length.
func SanitizeValue(v string) string {
	v = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, v)
	v = strings.TrimSpace(v)
	const maxLen = 80
	if utf8.RuneCountInString(v) > maxLen {
		runes := []rune(v)
		return string(runes[:maxLen]) + "..."
	}
	return v
}
