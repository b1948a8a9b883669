package catalog

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NA is the sentinel shown for absent or unparsable fields.
const NA = "N/A"

// moneyPrinter formats currency amounts with English thousands grouping.
var moneyPrinter = message.NewPrinter(language.English)

// nullTokens are cell values treated as absent, compared lowercase.
// The source spreadsheets mix blank cells, pandas NaN dumps and manual
// placeholders.
var nullTokens = map[string]bool{
	"":     true,
	"n/a":  true,
	"na":   true,
	"nan":  true,
	"none": true,
	"null": true,
	"-":    true,
}

// ParseNullableString returns a trimmed string value, or nil for any
// absent-equivalent token.
func ParseNullableString(raw string) *string {
	v := strings.TrimSpace(raw)
	if nullTokens[strings.ToLower(v)] {
		return nil
	}
	return &v
}

// ParseNullableFloat parses a numeric cell, tolerating currency symbols,
// thousands separators and surrounding whitespace. Returns nil for absent,
// non-numeric or NaN-equivalent values; it never fails.
func ParseNullableFloat(raw string) *float64 {
	v := strings.TrimSpace(raw)
	if nullTokens[strings.ToLower(v)] {
		return nil
	}

	v = strings.TrimPrefix(v, "$")
	v = strings.ReplaceAll(v, ",", "")
	v = strings.TrimSpace(v)

	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// TextOrNA returns the string value, or NA when absent.
func TextOrNA(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return NA
	}
	return strings.TrimSpace(*s)
}

// FormatMoney renders a fee as a dollar amount with thousands separators
// ("$12,500"). Absent or non-positive values render as NA; the catalogue
// uses zero as another "unknown" marker.
func FormatMoney(v *float64) string {
	if v == nil || *v <= 0 {
		return NA
	}
	return moneyPrinter.Sprintf("$%.0f", *v)
}

// PositiveScore returns the score value and true only when present and > 0.
// Zero scores mean "not collected" in the source data, not a real result.
func PositiveScore(v *float64) (float64, bool) {
	if v == nil || *v <= 0 {
		return 0, false
	}
	return *v, true
}
