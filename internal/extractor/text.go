package extractor

import (
	"fmt"
	"io"
	"os"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// textSource is a plain-text statement, e.g. one copied out of a browser.
// It has no tables.
type textSource struct {
	path string
	file *os.File
}

func openText(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open text %s: %w", path, err)
	}
	return &textSource{path: path, file: f}, nil
}

func (s *textSource) Tables() ([]models.Table, error) { return nil, nil }

func (s *textSource) Text() (string, error) {
	data, err := io.ReadAll(s.file)
	if err != nil {
		return "", fmt.Errorf("read text %s: %w", s.path, err)
	}
	return string(data), nil
}

func (s *textSource) Close() error {
	return s.file.Close()
}
