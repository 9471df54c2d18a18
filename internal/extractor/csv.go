package extractor

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// csvSource treats a CSV export as a single table.
type csvSource struct {
	path    string
	file    *os.File
	records [][]string
	read    bool
}

func openCSV(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV %s: %w", path, err)
	}
	return &csvSource{path: path, file: f}, nil
}

func (s *csvSource) Close() error {
	return s.file.Close()
}

func (s *csvSource) load() ([][]string, error) {
	if s.read {
		return s.records, nil
	}
	r := csv.NewReader(s.file)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV %s: %w", s.path, err)
		}
		if isBlankRecord(rec) {
			continue
		}
		records = append(records, rec)
	}
	s.records, s.read = records, true
	return records, nil
}

func (s *csvSource) Tables() ([]models.Table, error) {
	records, err := s.load()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return []models.Table{{Page: 1, Rows: records}}, nil
}

// Text renders every record as one line with cells two spaces apart.
func (s *csvSource) Text() (string, error) {
	records, err := s.load()
	if err != nil {
		return "", err
	}
	lines := make([]string, len(records))
	for i, rec := range records {
		lines[i] = strings.Join(rec, "  ")
	}
	return strings.Join(lines, "\n"), nil
}

func isBlankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
