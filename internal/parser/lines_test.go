package parser

import (
	"testing"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantOK      bool
		date        string
		description string
		amount      float64
	}{
		{
			name:        "debit with dollar sign",
			line:        "11/01/24    STARBUCKS #1234         -$6.50",
			wantOK:      true,
			date:        "2024-11-01",
			description: "STARBUCKS #1234",
			amount:      -6.50,
		},
		{
			name:        "credit with grouping",
			line:        "11/01/2024 DIRECT DEPOSIT +$5,000.00",
			wantOK:      true,
			date:        "2024-11-01",
			description: "DIRECT DEPOSIT",
			amount:      5000.00,
		},
		{
			name:        "last amount wins over balance",
			line:        "11/01/24 STARBUCKS #1234 BAL 500.00 -6.50",
			wantOK:      true,
			date:        "2024-11-01",
			description: "STARBUCKS #1234 BAL 500.00",
			amount:      -6.50,
		},
		{
			name:        "iso date with dash noise",
			line:        "2024-03-05 - Grocery   Outlet - 42.10",
			wantOK:      true,
			date:        "2024-03-05",
			description: "GROCERY OUTLET",
			amount:      42.10,
		},
		{
			name:   "zero amount is dropped",
			line:   "11/01/24 SERVICE FEE $0.00",
			wantOK: false,
		},
		{
			name:   "no date",
			line:   "STARBUCKS #1234 -6.50",
			wantOK: false,
		},
		{
			name:   "only the date carries digits",
			line:   "11/01/2024 OPENING BALANCE",
			wantOK: false,
		},
		{
			name:   "empty description",
			line:   "11/01/2024 -6.50",
			wantOK: false,
		},
		{
			name:   "blank line",
			line:   "   ",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, ok := ParseLine(tt.line, "abcd1234")
			if ok != tt.wantOK {
				t.Fatalf("ParseLine(%q) ok: got %v, want %v (txn=%+v)", tt.line, ok, tt.wantOK, txn)
			}
			if !ok {
				return
			}
			if txn.Date != tt.date {
				t.Errorf("date: got %q, want %q", txn.Date, tt.date)
			}
			if txn.Description != tt.description {
				t.Errorf("description: got %q, want %q", txn.Description, tt.description)
			}
			if txn.Amount != tt.amount {
				t.Errorf("amount: got %f, want %f", txn.Amount, tt.amount)
			}
			if txn.Direction != models.DirectionOf(tt.amount) {
				t.Errorf("direction: got %q for amount %f", txn.Direction, tt.amount)
			}
			if txn.SourceFileID != "abcd1234" {
				t.Errorf("source file id: got %q", txn.SourceFileID)
			}
			if txn.RawLine == "" {
				t.Error("expected raw line to be kept")
			}
		})
	}
}

func TestExtractLines(t *testing.T) {
	text := `FIRST NATIONAL BANK
Statement Period: November 1 - November 30, 2024

Date        Description              Amount
11/01/24    STARBUCKS #1234         -$6.50
11/01/24    DIRECT DEPOSIT        +$5,000.00
11/02/24    SERVICE FEE              $0.00
11/03/24    AMAZON MKTP US          -$23.99

Page 1 of 2`

	txns := ExtractLines(text, "f00dcafe")
	if len(txns) != 3 {
		for i, txn := range txns {
			t.Logf("  [%d] %s | %s | %.2f", i, txn.Date, txn.Description, txn.Amount)
		}
		t.Fatalf("expected 3 transactions, got %d", len(txns))
	}

	if txns[0].Description != "STARBUCKS #1234" || txns[0].Direction != models.DirectionDebit {
		t.Errorf("unexpected first transaction: %+v", txns[0])
	}
	if txns[1].Amount != 5000 || txns[1].Direction != models.DirectionCredit {
		t.Errorf("unexpected second transaction: %+v", txns[1])
	}
	if txns[2].Date != "2024-11-03" {
		t.Errorf("unexpected third date: %q", txns[2].Date)
	}
	for _, txn := range txns {
		if txn.Amount == 0 {
			t.Errorf("zero-amount transaction emitted: %+v", txn)
		}
	}
}

func TestExtractLines_Empty(t *testing.T) {
	if txns := ExtractLines("", "x"); len(txns) != 0 {
		t.Errorf("expected no transactions, got %d", len(txns))
	}
}
