package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// CSVWriter writes extraction results in CSV format.
type CSVWriter struct {
	// IncludeHeader adds "# key,value" metadata rows before the column header.
	IncludeHeader bool
}

// WriteToFile writes the result to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, result models.ExtractionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}

	if err := w.Write(f, result); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file %q: %w", path, err)
	}
	return nil
}

// Write writes the result in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, result models.ExtractionResult) error {
	writer := csv.NewWriter(out)

	if w.IncludeHeader {
		meta := [][]string{
			{"# Document", result.DocumentName},
			{"# Source File ID", result.SourceFileID},
			{"# Method", result.Method},
			{"# Transactions", strconv.Itoa(result.Count)},
		}
		for _, row := range meta {
			if row[1] == "" {
				continue
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
		}
	}

	header := []string{"Date", "Description", "Direction", "Amount", "Category", "SourceFileID"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range result.Transactions {
		row := []string{
			txn.Date,
			txn.Description,
			string(txn.Direction),
			formatAmount(txn.Amount),
			txn.Category,
			txn.SourceFileID,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
