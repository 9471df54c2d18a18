package extractor

import (
	"fmt"
	"os/exec"
	"strings"
)

// extractWithPdftotext shells out to pdftotext from poppler-utils for PDFs
// the Go library cannot decode. Pages come back separated by form feeds.
func extractWithPdftotext(filePath string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	out, err := exec.Command("pdftotext", "-layout", filePath, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	var pages []string
	for _, page := range strings.Split(string(out), "\f") {
		if page = strings.TrimSpace(page); page != "" {
			pages = append(pages, page)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdftotext produced no output")
	}
	return pages, nil
}
