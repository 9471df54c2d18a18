package parser

import (
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantOK   bool
	}{
		{"25.99", 25.99, true},
		{"1,234.56", 1234.56, true},
		{"$25.99", 25.99, true},
		{"-6.50", -6.50, true},
		{"-$6.50", -6.50, true},
		{"+$5,000.00", 5000.00, true},
		{"$1,234,567.89", 1234567.89, true},
		{"1234.", 1234, true},
		{"0.00", 0, true},
		{" 25.99 ", 25.99, true},
		{"", 0, false},
		{"$", 0, false},
		{",", 0, false},
		{"12a", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseAmount(%q) ok: got %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.expected {
				t.Errorf("ParseAmount(%q): got %f, want %f", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeAmount_Reparse(t *testing.T) {
	first := NormalizeAmount("-6.50")
	if first != -6.50 {
		t.Fatalf("got %f, want -6.50", first)
	}
	if again := NormalizeAmount("-6.50"); again != first {
		t.Errorf("re-parse: got %f, want %f", again, first)
	}
}

func TestNormalizeAmount_MalformedIsZero(t *testing.T) {
	for _, input := range []string{"abc", "--5", "1.2.3", "$$"} {
		if got := NormalizeAmount(input); got != 0 {
			t.Errorf("NormalizeAmount(%q): got %f, want 0", input, got)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"03/05/2024", "2024-03-05"}, // MM/DD/YYYY
		{"11/01/24", "2024-11-01"},   // MM/DD/YY
		{"2024-03-05", "2024-03-05"}, // YYYY-MM-DD
		{"03-05-2024", "2024-03-05"}, // MM-DD-YYYY
		{"12/31/99", "1999-12-31"},
		{"Mar 5th", "Mar 5th"},
		{"13/01/2024", "13/01/2024"},
		{"02/30/2024", "02/30/2024"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeDate(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeDate(%q): got %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeDate_RoundTrip(t *testing.T) {
	dates := []string{"2024-03-05", "2023-12-31", "2001-01-09", "2024-02-29"}
	formats := map[string]string{
		"MM/DD/YYYY": "01/02/2006",
		"MM/DD/YY":   "01/02/06",
		"YYYY-MM-DD": "2006-01-02",
		"MM-DD-YYYY": "01-02-2006",
	}

	for name, layout := range formats {
		for _, d := range dates {
			t.Run(name+"/"+d, func(t *testing.T) {
				tm, ok := ParseDate(d)
				if !ok {
					t.Fatalf("ParseDate(%q) failed", d)
				}
				token := tm.Format(layout)
				if got := NormalizeDate(token); got != d {
					t.Errorf("NormalizeDate(%q): got %q, want %q", token, got, d)
				}
			})
		}
	}
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  Coffee   Shop ", "COFFEE SHOP"},
		{" - STARBUCKS #1234 - ", "STARBUCKS #1234"},
		{"line\nbreak\tcell", "LINE BREAK CELL"},
		{" -- ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := CleanDescription(tt.input)
			if got != tt.expected {
				t.Errorf("CleanDescription(%q): got %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSelectAmount(t *testing.T) {
	if got := SelectAmount(nil); got != nil {
		t.Errorf("expected nil for no matches, got %v", got)
	}

	matches := [][]int{{0, 2}, {10, 16}, {17, 22}}
	got := SelectAmount(matches)
	if got[0] != 17 || got[1] != 22 {
		t.Errorf("expected last match [17 22], got %v", got)
	}
}

func TestFindDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"11/01/2024 CARD PAYMENT", "11/01/2024"},
		{"11/01/24 CARD PAYMENT", "11/01/24"},
		{"POSTED 2024-11-01 PAYMENT", "2024-11-01"},
		{"11-01-2024 PAYMENT", "11-01-2024"},
		{"no date here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got string
			if loc := findDate(tt.input); loc != nil {
				got = tt.input[loc[0]:loc[1]]
			}
			if got != tt.expected {
				t.Errorf("findDate(%q): got %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
