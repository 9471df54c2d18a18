package parser

import (
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Header keywords identifying each column role. Matching is a
// case-insensitive substring test against the header cell.
var (
	DateKeywords        = []string{"date", "trans date", "posted"}
	DescriptionKeywords = []string{"description", "details", "transaction"}
	AmountKeywords      = []string{"amount", "debit", "credit", "value"}
)

// Columns holds the resolved column indexes of a table. HasDescription is
// false when no header matched DescriptionKeywords.
type Columns struct {
	Date           int
	Description    int
	HasDescription bool
	Amount         int
}

// ResolveColumn returns the index of the first header, left to right, that
// contains any of keywords.
func ResolveColumn(headers []string, keywords []string) (int, bool) {
	for i, h := range headers {
		h = strings.ToLower(h)
		for _, kw := range keywords {
			if strings.Contains(h, kw) {
				return i, true
			}
		}
	}
	return -1, false
}

// ResolveColumns locates the date, description and amount columns. ok is
// false when the date or amount column is missing.
func ResolveColumns(headers []string) (Columns, bool) {
	var cols Columns
	var ok bool

	if cols.Date, ok = ResolveColumn(headers, DateKeywords); !ok {
		return Columns{}, false
	}
	if cols.Amount, ok = ResolveColumn(headers, AmountKeywords); !ok {
		return Columns{}, false
	}
	cols.Description, cols.HasDescription = ResolveColumn(headers, DescriptionKeywords)
	return cols, true
}

// ExtractTables emits one transaction per data row across all tables whose
// headers resolve. Tables without a date or amount column are skipped.
func ExtractTables(tables []models.Table, sourceFileID string) []models.Transaction {
	var transactions []models.Transaction
	for _, table := range tables {
		cols, ok := ResolveColumns(table.Header())
		if !ok {
			continue
		}
		for _, row := range table.DataRows() {
			txn, ok := parseRow(row, cols, sourceFileID)
			if !ok {
				continue
			}
			transactions = append(transactions, txn)
		}
	}
	return transactions
}

// parseRow reads one data row. Rows too short to hold a resolved column are
// skipped.
func parseRow(row []string, cols Columns, sourceFileID string) (models.Transaction, bool) {
	date, ok := cell(row, cols.Date)
	if !ok {
		return models.Transaction{}, false
	}
	amountText, ok := cell(row, cols.Amount)
	if !ok {
		return models.Transaction{}, false
	}
	var description string
	if cols.HasDescription {
		if description, ok = cell(row, cols.Description); !ok {
			return models.Transaction{}, false
		}
	}

	amount := NormalizeAmount(amountText)
	if amount == 0 {
		return models.Transaction{}, false
	}
	return models.NewTransaction(NormalizeDate(strings.TrimSpace(date)), CleanDescription(description), amount, sourceFileID), true
}

func cell(row []string, i int) (string, bool) {
	if i < 0 || i >= len(row) {
		return "", false
	}
	return row[i], true
}

// IsHeaderRow reports whether cells look like a transaction table header,
// i.e. they resolve a date and an amount column.
func IsHeaderRow(cells []string) bool {
	_, ok := ResolveColumns(cells)
	return ok
}
