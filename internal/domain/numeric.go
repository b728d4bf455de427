package domain

import (
	"math"
	"strconv"
	"strings"
)

// nullLikes are string values coerced to a null number at the input
// boundary.
var nullLikes = map[string]bool{
	"":     true,
	"null": true,
	"none": true,
	"nan":  true,
	"n/a":  true,
}

// ParseNumber parses a free-form numeric string into a nullable float.
// Empty strings and null-likes become nil; strings that are not purely
// numeric (currency glyphs, units) also become nil. Thousands separators
// are tolerated.
func ParseNumber(v string) *float64 {
	s := strings.TrimSpace(v)
	if nullLikes[strings.ToLower(s)] {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// CanonicalNumeric returns the canonical form of a numeric string:
// integral values lose their fraction part ("540.0" → "540"), other
// numbers keep a minimal decimal representation. Strings that do not
// parse as a number are returned trimmed but otherwise verbatim, so
// scraped prices like "₹540" survive untouched.
func CanonicalNumeric(v string) string {
	s := strings.TrimSpace(v)
	f := ParseNumber(s)
	if f == nil {
		return s
	}
	if *f == math.Trunc(*f) && math.Abs(*f) < 1e15 {
		return strconv.FormatInt(int64(*f), 10)
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
