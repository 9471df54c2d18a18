package extractor

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

const (
	// Horizontal gap (in points) that separates two cells of a row.
	cellGap = 12.0
	// Smaller gap that separates two words within a cell.
	wordGap = 1.5
	// Width assumed per rune when the PDF reports none.
	fallbackRuneWidth = 5.0
	// A grid needs a header plus at least one data row.
	minTableRows = 2
	minTableCols = 2
)

// glyph is one positioned text run from a PDF page.
type glyph struct {
	x, y, w float64
	s       string
}

func (g glyph) end() float64 {
	if g.w > 0 {
		return g.x + g.w
	}
	return g.x + float64(utf8.RuneCountInString(g.s))*fallbackRuneWidth
}

type cellSpan struct {
	x0, x1 float64
	text   string
}

func (c cellSpan) center() float64 {
	return (c.x0 + c.x1) / 2
}

// textRow is a visual line of a page split into cells.
type textRow struct {
	y     float64
	cells []cellSpan
}

func (r textRow) texts() []string {
	out := make([]string, len(r.cells))
	for i, c := range r.cells {
		out[i] = c.text
	}
	return out
}

func (r textRow) String() string {
	return strings.Join(r.texts(), "  ")
}

// buildRows groups glyphs into rows by Y coordinate (top to bottom) and
// splits each row into cells wherever the horizontal gap exceeds cellGap.
func buildRows(glyphs []glyph) []textRow {
	rowMap := make(map[int][]glyph)
	for _, g := range glyphs {
		if strings.TrimSpace(g.s) == "" {
			continue
		}
		// Round Y to the nearest point to group into rows
		yKey := int(math.Round(g.y))
		rowMap[yKey] = append(rowMap[yKey], g)
	}

	// PDF Y grows bottom-to-top
	yKeys := make([]int, 0, len(rowMap))
	for y := range rowMap {
		yKeys = append(yKeys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

	rows := make([]textRow, 0, len(yKeys))
	for _, y := range yKeys {
		items := rowMap[y]
		sort.SliceStable(items, func(a, b int) bool {
			return items[a].x < items[b].x
		})

		var cells []cellSpan
		var b strings.Builder
		var cur cellSpan
		flush := func() {
			if text := strings.TrimSpace(b.String()); text != "" {
				cur.text = strings.Join(strings.Fields(text), " ")
				cells = append(cells, cur)
			}
			b.Reset()
		}

		for i, g := range items {
			gap := g.x - cur.x1
			switch {
			case i == 0:
				cur = cellSpan{x0: g.x, x1: g.end()}
			case gap > cellGap:
				flush()
				cur = cellSpan{x0: g.x, x1: g.end()}
			case gap > wordGap:
				b.WriteByte(' ')
			}
			b.WriteString(g.s)
			cur.x1 = math.Max(cur.x1, g.end())
		}
		flush()

		if len(cells) > 0 {
			rows = append(rows, textRow{y: float64(y), cells: cells})
		}
	}
	return rows
}

// segmentTables finds runs of consecutive multi-cell rows and turns each run
// into a table. Data cells are assigned to the header column whose center is
// closest, so a blank cell doesn't shift the columns after it.
func segmentTables(rows []textRow, page int, isHeader func([]string) bool) []models.Table {
	var tables []models.Table
	var run []textRow

	emit := func() {
		defer func() { run = nil }()
		if isHeader != nil {
			start := -1
			for i, r := range run {
				if isHeader(r.texts()) {
					start = i
					break
				}
			}
			if start < 0 {
				return
			}
			run = run[start:]
		}
		if len(run) < minTableRows {
			return
		}
		tables = append(tables, alignRun(run, page))
	}

	for _, r := range rows {
		if len(r.cells) >= minTableCols {
			run = append(run, r)
			continue
		}
		emit()
	}
	emit()
	return tables
}

func alignRun(run []textRow, page int) models.Table {
	header := run[0]
	table := models.Table{Page: page, Rows: [][]string{header.texts()}}

	for _, r := range run[1:] {
		out := make([]string, len(header.cells))
		for _, c := range r.cells {
			col := nearestColumn(header.cells, c.center())
			if out[col] != "" {
				out[col] += " "
			}
			out[col] += c.text
		}
		table.Rows = append(table.Rows, out)
	}
	return table
}

func nearestColumn(header []cellSpan, x float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, h := range header {
		if d := math.Abs(h.center() - x); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
