package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date shapes recognized on statement lines, tried in order. The first
// pattern that matches anywhere in the line wins.
var DatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{2}/\d{2}/\d{4}`), // MM/DD/YYYY
	regexp.MustCompile(`\d{2}/\d{2}/\d{2}`), // MM/DD/YY
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`), // YYYY-MM-DD
	regexp.MustCompile(`\d{2}-\d{2}-\d{4}`), // MM-DD-YYYY
}

// DateLayouts are the strict layouts NormalizeDate tries, in order.
// They mirror DatePatterns: MM/DD/YYYY, MM/DD/YY, YYYY-MM-DD, MM-DD-YYYY.
var DateLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"2006-1-2",
	"1-2-2006",
}

// CanonicalDateLayout is the form every parsed date is re-emitted in.
const CanonicalDateLayout = "2006-01-02"

// AmountPattern matches a generic monetary token: optional sign, optional
// dollar sign, digit groups with optional commas, optional fraction.
var AmountPattern = regexp.MustCompile(`[-+]?\$?\d[\d,]*\.?\d*`)

// numericPattern is what a token must look like once $ and , are gone.
var numericPattern = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)$`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ParseAmount converts a token like "-$1,234.56" to a float64.
// ok is false when the token is not a number.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")

	if !numericPattern.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// NormalizeAmount is ParseAmount with failures collapsed to 0. Callers treat
// 0 as "no valid amount" and drop the candidate.
func NormalizeAmount(s string) float64 {
	v, _ := ParseAmount(s)
	return v
}

// ParseDate parses token against DateLayouts in order.
func ParseDate(token string) (time.Time, bool) {
	token = strings.TrimSpace(token)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate re-emits a recognized date as YYYY-MM-DD. Unrecognized
// tokens are returned unchanged.
func NormalizeDate(token string) string {
	t, ok := ParseDate(token)
	if !ok {
		return token
	}
	return t.Format(CanonicalDateLayout)
}

// CleanDescription collapses whitespace, strips leading and trailing dashes
// and spaces, and upper-cases the result.
func CleanDescription(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.Trim(s, "- ")
	return strings.ToUpper(s)
}

// findDate returns the location of the first date in line, trying
// DatePatterns in order.
func findDate(line string) []int {
	for _, p := range DatePatterns {
		if loc := p.FindStringIndex(line); loc != nil {
			return loc
		}
	}
	return nil
}

// SelectAmount picks the transaction amount among every monetary match on a
// line: the last one, i.e. the rightmost column.
func SelectAmount(matches [][]int) []int {
	if len(matches) == 0 {
		return nil
	}
	return matches[len(matches)-1]
}
