package output

import (
	"reflect"
	"testing"

	"github.com/joelprem743/telegram-excel-bot/internal/decoder"
	"github.com/joelprem743/telegram-excel-bot/internal/grid"
)

func cityGrid() *grid.Grid {
	return grid.New([][]string{
		{"Name", "City"},
		{"Ann", "NY"},
		{"ann", "la"},
		{"Bo", "NY"},
	})
}

func TestBuildExactMatch(t *testing.T) {
	data, count, err := Build(cityGrid(), 1, "NY")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if len(data) == 0 {
		t.Fatal("no bytes produced for a nonempty result")
	}
}

// Matching is trimmed and case-insensitive but never substring.
func TestBuildNoSubstringMatch(t *testing.T) {
	g := grid.New([][]string{
		{"City"},
		{"NY"},
		{"NYC"},
		{" ny "},
	})
	_, count, err := Build(g, 0, "NY")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2 (NY and ' ny ', not NYC)", count)
	}
}

func TestBuildNoRows(t *testing.T) {
	data, count, err := Build(cityGrid(), 1, "tokyo")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if count != 0 || data != nil {
		t.Errorf("got count %d, %d bytes; want the distinct no-rows outcome", count, len(data))
	}
}

// Serializing and re-decoding yields exactly the filtered row set, header
// first, order preserved.
func TestBuildRoundTrip(t *testing.T) {
	g := grid.New([][]string{
		{"Name", "City", "Ref"},
		{"Ann", "NY", "7"},
		{"Cat", "la"},
		{"Bo", "NY", "9"},
	})
	data, count, err := Build(g, 1, "ny")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	out, err := decoder.Decode(data, "roundtrip.xlsx", decoder.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(out.Header(), g.Header()) {
		t.Errorf("header = %v, want %v", out.Header(), g.Header())
	}
	want := [][]string{
		{"Ann", "NY", "7"},
		{"Bo", "NY", "9"},
	}
	if out.RowCount() != len(want) {
		t.Fatalf("RowCount = %d, want %d", out.RowCount(), len(want))
	}
	for i, row := range want {
		for c, v := range row {
			if got := out.Cell(i, c); got != v {
				t.Errorf("cell(%d,%d) = %q, want %q", i, c, got, v)
			}
		}
	}
}

// Short rows are padded to the header width in the output file.
func TestBuildPadsShortRows(t *testing.T) {
	g := grid.New([][]string{
		{"Name", "City", "Ref"},
		{"Cat", "la"},
	})
	data, count, err := Build(g, 1, "la")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	out, err := decoder.Decode(data, "padded.xlsx", decoder.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := out.Cell(0, 2); got != "" {
		t.Errorf("cell(0,2) = %q, want empty pad", got)
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(3, 8, 60); got != 8 {
		t.Errorf("clamp(3) = %d, want 8", got)
	}
	if got := clamp(100, 8, 60); got != 60 {
		t.Errorf("clamp(100) = %d, want 60", got)
	}
	if got := clamp(20, 8, 60); got != 20 {
		t.Errorf("clamp(20) = %d, want 20", got)
	}
}
