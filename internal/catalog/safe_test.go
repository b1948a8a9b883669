package catalog

import "testing"

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }

func TestParseNullableString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want *string
	}{
		{"plain value", "MSc Data Science", strPtr("MSc Data Science")},
		{"trims whitespace", "  Oxford  ", strPtr("Oxford")},
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
		{"nan token", "NaN", nil},
		{"na token", "N/A", nil},
		{"none token", "None", nil},
		{"null token", "null", nil},
		{"dash token", "-", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseNullableString(tt.raw)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("ParseNullableString(%q) = %q, want nil", tt.raw, *got)
			case tt.want != nil && got == nil:
				t.Errorf("ParseNullableString(%q) = nil, want %q", tt.raw, *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("ParseNullableString(%q) = %q, want %q", tt.raw, *got, *tt.want)
			}
		})
	}
}

func TestParseNullableFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{"integer", "40000", f64Ptr(40000)},
		{"decimal", "6.5", f64Ptr(6.5)},
		{"currency symbol", "$40000", f64Ptr(40000)},
		{"thousands separators", "40,000", f64Ptr(40000)},
		{"currency and separators", "$1,250,000", f64Ptr(1250000)},
		{"whitespace", "  90  ", f64Ptr(90)},
		{"empty", "", nil},
		{"nan token", "nan", nil},
		{"non numeric", "twelve", nil},
		{"infinity rejected", "Inf", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseNullableFloat(tt.raw)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("ParseNullableFloat(%q) = %v, want nil", tt.raw, *got)
			case tt.want != nil && got == nil:
				t.Errorf("ParseNullableFloat(%q) = nil, want %v", tt.raw, *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("ParseNullableFloat(%q) = %v, want %v", tt.raw, *got, *tt.want)
			}
		})
	}
}

func TestTextOrNA(t *testing.T) {
	t.Parallel()

	if got := TextOrNA(nil); got != NA {
		t.Errorf("TextOrNA(nil) = %q, want %q", got, NA)
	}
	if got := TextOrNA(strPtr("  ")); got != NA {
		t.Errorf("TextOrNA(blank) = %q, want %q", got, NA)
	}
	if got := TextOrNA(strPtr(" Oxford ")); got != "Oxford" {
		t.Errorf("TextOrNA = %q, want %q", got, "Oxford")
	}
}

func TestFormatMoney(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fees *float64
		want string
	}{
		{"nil", nil, NA},
		{"zero is unknown", f64Ptr(0), NA},
		{"negative is unknown", f64Ptr(-100), NA},
		{"thousands grouping", f64Ptr(40000), "$40,000"},
		{"millions grouping", f64Ptr(1250000), "$1,250,000"},
		{"small amount", f64Ptr(900), "$900"},
		{"rounds to whole dollars", f64Ptr(12500.75), "$12,501"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatMoney(tt.fees); got != tt.want {
				t.Errorf("FormatMoney = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPositiveScore(t *testing.T) {
	t.Parallel()

	if _, ok := PositiveScore(nil); ok {
		t.Error("PositiveScore(nil) reported present")
	}
	if _, ok := PositiveScore(f64Ptr(0)); ok {
		t.Error("PositiveScore(0) reported present")
	}
	if v, ok := PositiveScore(f64Ptr(6.5)); !ok || v != 6.5 {
		t.Errorf("PositiveScore(6.5) = (%v, %v), want (6.5, true)", v, ok)
	}
}
