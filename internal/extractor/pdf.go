package extractor

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// pdfSource reads a PDF through the ledongthuc/pdf library.
type pdfSource struct {
	path   string
	file   *os.File
	reader *pdf.Reader
	opts   Reader
}

// openPDF owns the file handle until a pdfSource is returned. Any error or
// library panic on the way closes it.
func openPDF(path string, opts Reader) (src Source, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF %s: %w", path, err)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed opening %s: %v", path, r)
		}
		if err != nil {
			f.Close()
			src = nil
		}
	}()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat PDF %s: %w", path, err)
	}
	r, err := pdf.NewReader(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("open PDF %s: %w", path, err)
	}
	// The page tree is resolved lazily; malformed trees panic here.
	if r.NumPage() == 0 {
		return nil, fmt.Errorf("PDF %s has no pages", path)
	}
	return &pdfSource{path: path, file: f, reader: r, opts: opts}, nil
}

func (s *pdfSource) Close() error {
	return s.file.Close()
}

// Tables rebuilds grids from the positioned text of every page.
func (s *pdfSource) Tables() (tables []models.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed reading tables: %v", r)
		}
	}()

	for i := 1; i <= s.reader.NumPage(); i++ {
		rows := s.pageRows(i)
		tables = append(tables, segmentTables(rows, i, s.opts.IsHeader)...)
	}
	return tables, nil
}

// Text tries the library methods in order of layout fidelity, then falls
// back to pdftotext. It fails rather than return unreadable text.
func (s *pdfSource) Text() (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed reading text: %v", r)
		}
	}()

	if pages := s.extractByRow(); isReadableText(pages) {
		return strings.Join(pages, "\n"), nil
	}
	if pages := s.extractByContent(); isReadableText(pages) {
		return strings.Join(pages, "\n"), nil
	}
	if plain := s.extractPlainText(); isReadableText([]string{plain}) {
		return plain, nil
	}
	if !s.opts.DisablePdftotext {
		pages, popplerErr := extractWithPdftotext(s.path)
		if popplerErr == nil && isReadableText(pages) {
			return strings.Join(pages, "\n"), nil
		}
	}
	return "", fmt.Errorf("no readable text could be extracted from %s; it may be image-based or use custom font encodings", s.path)
}

// extractByRow uses GetTextByRow, which keeps the visual line layout.
func (s *pdfSource) extractByRow() []string {
	var pages []string
	for i := 1; i <= s.reader.NumPage(); i++ {
		page := s.reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// extractByContent reconstructs lines from positioned text runs.
func (s *pdfSource) extractByContent() []string {
	var pages []string
	for i := 1; i <= s.reader.NumPage(); i++ {
		var lines []string
		for _, row := range s.pageRows(i) {
			lines = append(lines, row.String())
		}
		if len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}
	return pages
}

func (s *pdfSource) extractPlainText() string {
	r, err := s.reader.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s *pdfSource) pageRows(n int) []textRow {
	page := s.reader.Page(n)
	if page.V.IsNull() {
		return nil
	}
	content := page.Content()
	glyphs := make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, glyph{x: t.X, y: t.Y, w: t.W, s: t.S})
	}
	return buildRows(glyphs)
}
