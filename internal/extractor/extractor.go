package extractor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// ErrUnsupportedFormat is returned by Open for file types it cannot read.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Source is an opened document. Callers must Close it.
type Source interface {
	// Tables returns the tabular grids found in the document, header row first.
	Tables() ([]models.Table, error)
	// Text returns the full raw text, pages separated by newlines.
	Text() (string, error)
	Close() error
}

// Reader opens statement documents by file extension: .pdf, .csv and .txt.
type Reader struct {
	// IsHeader, when set, marks the row a PDF table starts at. Rows of a
	// grid above the first header row are dropped. When nil, every grid
	// starts at its first row.
	IsHeader func(cells []string) bool

	// DisablePdftotext turns off the poppler-utils fallback for PDF text.
	DisablePdftotext bool
}

// SupportedExtensions lists the file extensions Open accepts.
var SupportedExtensions = []string{".pdf", ".csv", ".txt"}

// Supported reports whether Open accepts the file at path.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Open acquires the document at path.
func (r Reader) Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return openPDF(path, r)
	case ".csv":
		return openCSV(path)
	case ".txt":
		return openText(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
