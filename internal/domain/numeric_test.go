package domain

import "testing"

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *float64
	}{
		{"integer", "42", ptr(42)},
		{"float", "3.14", ptr(3.14)},
		{"negative", "-7.5", ptr(-7.5)},
		{"thousands separator", "1,234.5", ptr(1234.5)},
		{"leading whitespace", "  12 ", ptr(12)},
		{"empty", "", nil},
		{"null-like", "null", nil},
		{"none", "None", nil},
		{"nan", "NaN", nil},
		{"n/a", "N/A", nil},
		{"currency glyph", "₹540", nil},
		{"unit suffix", "12 kg", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumber(tt.input)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, *got, *tt.want)
			}
		})
	}
}

func TestCanonicalNumeric(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"integral float", "540.0", "540"},
		{"integer", "540", "540"},
		{"fractional", "89.99", "89.99"},
		{"trims whitespace", "  0.12 ", "0.12"},
		{"currency glyph kept verbatim", "₹540", "₹540"},
		{"symbol and amount kept", " $12.50 ", "$12.50"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalNumeric(tt.input); got != tt.want {
				t.Errorf("CanonicalNumeric(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func ptr(f float64) *float64 { return &f }
