package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

func sampleResult() models.ExtractionResult {
	coffee := models.NewTransaction("2024-11-01", "STARBUCKS #1234", -6.5, "abcd1234")
	coffee.Category = "dining"
	txns := []models.Transaction{
		coffee,
		models.NewTransaction("2024-11-02", "DIRECT DEPOSIT, ACME", 5000, "abcd1234"),
	}
	return models.ExtractionResult{
		SourceFileID: "abcd1234",
		DocumentName: "November.pdf",
		Transactions: txns,
		Count:        len(txns),
		Succeeded:    true,
		Method:       models.MethodLine,
	}
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	if err := w.Write(&buf, sampleResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "# Document,November.pdf") {
		t.Error("expected document metadata header")
	}
	if !strings.Contains(output, "# Method,line") {
		t.Error("expected method metadata")
	}
	if !strings.Contains(output, "Date,Description,Direction,Amount,Category,SourceFileID") {
		t.Error("expected column headers")
	}
	if !strings.Contains(output, "2024-11-01,STARBUCKS #1234,debit,-6.50,dining,abcd1234") {
		t.Errorf("expected first transaction row, got:\n%s", output)
	}
	if !strings.Contains(output, `"DIRECT DEPOSIT, ACME",credit,5000.00`) {
		t.Errorf("expected quoted description, got:\n%s", output)
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	// 4 metadata lines + 1 header + 2 transactions = 7
	if len(lines) != 7 {
		t.Errorf("expected 7 lines, got %d", len(lines))
	}
}

func TestCSVWriter_WriteNoHeader(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: false}
	if err := w.Write(&buf, sampleResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "# Document") {
		t.Error("should not have metadata when header=false")
	}
	if !strings.HasPrefix(output, "Date,Description,Direction,Amount,Category,SourceFileID") {
		t.Error("expected column headers first")
	}
}

func TestCSVWriter_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w := &CSVWriter{}
	if err := w.WriteToFile(path, sampleResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "\n"); got != 3 {
		t.Errorf("expected 3 lines, got %d", got)
	}
}

func TestCSVWriter_WriteToFileReleasesFile(t *testing.T) {
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skipf("cannot count open files: %v", err)
	}
	before := len(entries)

	dir := t.TempDir()
	w := &CSVWriter{IncludeHeader: true}
	for i := 0; i < 10; i++ {
		if err := w.WriteToFile(filepath.Join(dir, "out.csv"), sampleResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := w.WriteToFile(filepath.Join(dir, "missing", "out.csv"), sampleResult()); err == nil {
		t.Error("expected error for missing directory")
	}

	entries, _ = os.ReadDir("/proc/self/fd")
	if after := len(entries); after > before {
		t.Errorf("leaked %d file descriptors", after-before)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{25.99, "25.99"},
		{-6.5, "-6.50"},
		{1234.56, "1234.56"},
		{2500, "2500.00"},
	}

	for _, tt := range tests {
		if got := formatAmount(tt.input); got != tt.expected {
			t.Errorf("formatAmount(%f): got %q, want %q", tt.input, got, tt.expected)
		}
	}
}
