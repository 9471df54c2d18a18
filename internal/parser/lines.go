package parser

import (
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// ExtractLines scans free text line by line and returns one transaction per
// line that carries a date, a non-zero amount and a description between them.
// Lines that don't fit are skipped silently.
func ExtractLines(text, sourceFileID string) []models.Transaction {
	var transactions []models.Transaction
	for _, line := range strings.Split(text, "\n") {
		txn, ok := ParseLine(line, sourceFileID)
		if !ok {
			continue
		}
		transactions = append(transactions, txn)
	}
	return transactions
}

// ParseLine extracts a transaction from a single statement line.
func ParseLine(line, sourceFileID string) (models.Transaction, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return models.Transaction{}, false
	}

	dateLoc := findDate(line)
	if dateLoc == nil {
		return models.Transaction{}, false
	}

	amountLoc := SelectAmount(AmountPattern.FindAllStringIndex(line, -1))
	if amountLoc == nil {
		return models.Transaction{}, false
	}
	// The last amount-shaped token can be part of the date itself
	// (e.g. the year), in which case there is no amount on the line.
	if amountLoc[0] < dateLoc[1] {
		return models.Transaction{}, false
	}

	description := CleanDescription(line[dateLoc[1]:amountLoc[0]])
	amount := NormalizeAmount(line[amountLoc[0]:amountLoc[1]])
	if description == "" || amount == 0 {
		return models.Transaction{}, false
	}

	txn := models.NewTransaction(NormalizeDate(line[dateLoc[0]:dateLoc[1]]), description, amount, sourceFileID)
	txn.RawLine = line
	return txn, true
}
