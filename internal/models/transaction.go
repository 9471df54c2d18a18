package models

// Direction tags a transaction as money in or money out.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// DirectionOf derives the direction from the sign of amount.
func DirectionOf(amount float64) Direction {
	if amount > 0 {
		return DirectionCredit
	}
	return DirectionDebit
}

// Transaction represents a single normalized statement transaction.
// Amount is positive for inflows and negative for outflows; it is never 0.
type Transaction struct {
	Date               string    `json:"date"` // YYYY-MM-DD, or the original token if unparseable
	Description        string    `json:"description"`
	Amount             float64   `json:"amount"`
	Direction          Direction `json:"direction"`
	SourceFileID       string    `json:"source_file_id"`
	RawLine            string    `json:"raw_line,omitempty"` // line extractor only
	Category           string    `json:"category,omitempty"`
	Icon               string    `json:"icon,omitempty"`
	CategoryConfidence string    `json:"category_confidence,omitempty"`
}

// NewTransaction builds a Transaction whose Direction always agrees with amount.
func NewTransaction(date, description string, amount float64, sourceFileID string) Transaction {
	return Transaction{
		Date:         date,
		Description:  description,
		Amount:       amount,
		Direction:    DirectionOf(amount),
		SourceFileID: sourceFileID,
	}
}

// Table is a grid of cell strings as segmented by a document reader.
// Rows[0] holds the header labels.
type Table struct {
	Page int        `json:"page,omitempty"`
	Rows [][]string `json:"rows"`
}

// Header returns the header row, or nil for an empty table.
func (t Table) Header() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// DataRows returns every row after the header.
func (t Table) DataRows() [][]string {
	if len(t.Rows) < 2 {
		return nil
	}
	return t.Rows[1:]
}

// Extraction methods recorded on ExtractionResult.
const (
	MethodTable = "table"
	MethodLine  = "line"
)

// ExtractionResult wraps everything extracted from one document.
type ExtractionResult struct {
	SourceFileID string        `json:"source_file_id"`
	DocumentName string        `json:"document_name"`
	Transactions []Transaction `json:"transactions"`
	Count        int           `json:"count"`
	Succeeded    bool          `json:"succeeded"`
	Method       string        `json:"method,omitempty"`
	Error        string        `json:"error,omitempty"`
}
