package extractor

import (
	"reflect"
	"strings"
	"testing"
)

func statementGlyphs() []glyph {
	return []glyph{
		{x: 50, y: 720, w: 30, s: "Account"},
		{x: 300, y: 720, w: 40, s: "12345678"},

		{x: 50, y: 700, w: 20, s: "Date"},
		{x: 120, y: 700, w: 50, s: "Description"},
		{x: 300, y: 700, w: 30, s: "Amount"},

		{x: 50, y: 688.4, w: 45, s: "11/01/2024"},
		{x: 150, y: 688, w: 20, s: "Shop"}, // out of order on purpose
		{x: 120, y: 687.8, w: 28, s: "Coffee"},
		{x: 305, y: 688, w: 22, s: "-6.50"},

		{x: 50, y: 676, w: 45, s: "11/02/2024"},
		{x: 305, y: 676, w: 22, s: "-1.00"},

		{x: 50, y: 600, w: 40, s: "Page 1 of 2"},
	}
}

func TestBuildRows(t *testing.T) {
	rows := buildRows(statementGlyphs())
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}

	want := []string{"11/01/2024", "Coffee Shop", "-6.50"}
	if got := rows[2].texts(); !reflect.DeepEqual(got, want) {
		t.Errorf("row 2: got %q, want %q", got, want)
	}
	if got := rows[4].String(); got != "Page 1 of 2" {
		t.Errorf("row 4: got %q", got)
	}
}

func TestBuildRows_CharacterRuns(t *testing.T) {
	var glyphs []glyph
	x := 10.0
	for _, r := range "PAYROLL" {
		glyphs = append(glyphs, glyph{x: x, y: 500, w: 5, s: string(r)})
		x += 5
	}
	x += 3 // word space
	for _, r := range "ACME" {
		glyphs = append(glyphs, glyph{x: x, y: 500, w: 5, s: string(r)})
		x += 5
	}

	rows := buildRows(glyphs)
	if len(rows) != 1 || len(rows[0].cells) != 1 {
		t.Fatalf("expected a single cell, got %+v", rows)
	}
	if got := rows[0].cells[0].text; got != "PAYROLL ACME" {
		t.Errorf("got %q, want %q", got, "PAYROLL ACME")
	}
}

func TestSegmentTables(t *testing.T) {
	isHeader := func(cells []string) bool {
		return strings.EqualFold(cells[0], "date")
	}
	tables := segmentTables(buildRows(statementGlyphs()), 3, isHeader)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}

	want := [][]string{
		{"Date", "Description", "Amount"},
		{"11/01/2024", "Coffee Shop", "-6.50"},
		{"11/02/2024", "", "-1.00"},
	}
	if !reflect.DeepEqual(tables[0].Rows, want) {
		t.Errorf("rows: got %q, want %q", tables[0].Rows, want)
	}
	if tables[0].Page != 3 {
		t.Errorf("page: got %d, want 3", tables[0].Page)
	}
}

func TestSegmentTables_NoHeaderHint(t *testing.T) {
	tables := segmentTables(buildRows(statementGlyphs()), 1, nil)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if got := tables[0].Rows[0]; got[0] != "Account" {
		t.Errorf("expected the grid to start at its first row, got %q", got)
	}
}

func TestSegmentTables_HeaderNeverFound(t *testing.T) {
	never := func([]string) bool { return false }
	if tables := segmentTables(buildRows(statementGlyphs()), 1, never); len(tables) != 0 {
		t.Errorf("expected no tables, got %d", len(tables))
	}
}

func TestSegmentTables_SingleRowIsNotATable(t *testing.T) {
	rows := buildRows([]glyph{
		{x: 50, y: 700, w: 20, s: "Date"},
		{x: 300, y: 700, w: 30, s: "Amount"},
	})
	if tables := segmentTables(rows, 1, nil); len(tables) != 0 {
		t.Errorf("expected no tables, got %d", len(tables))
	}
}
