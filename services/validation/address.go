package validation

import (
	"errors"
	"regexp"
	"strings"
)

// ErrMalformedAddress is returned for input that cannot be an address; it is
// rejected before any geocoding call.
var ErrMalformedAddress = errors.New("malformed address")

var (
	zipPattern    = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
	streetPattern = regexp.MustCompile(`(?i)\b\d{1,6}[a-z]?\s+[a-z0-9.'-]+(?:\s+[a-z0-9.'-]+)*`)
	fiveDigits    = regexp.MustCompile(`\d{5}`)
)

// ValidateZIP finds a five-digit US ZIP in spoken or typed input, including
// dictated digits ("seven seven oh six three"). ZIP+4 input yields the first five.
func ValidateZIP(text string) (string, bool) {
	if m := zipPattern.FindString(text); m != "" {
		return m[:5], true
	}
	digits := ExtractDigits(text)
	if m := fiveDigits.FindString(digits); m != "" {
		return m, true
	}
	return "", false
}

// ParseAddressInput cleans a caller-supplied address and decides whether it
// is worth a geocoding lookup. It accepts a street number followed by a
// street name, or anything carrying a ZIP code.
func ParseAddressInput(raw string) (string, error) {
	s := collapseSpaces(NormalizeString(raw))
	s = strings.TrimSuffix(s, ".")
	if len([]rune(s)) < 5 {
		return "", ErrMalformedAddress
	}
	if zipPattern.MatchString(s) || streetPattern.MatchString(s) {
		return s, nil
	}
	if zip, ok := ValidateZIP(s); ok {
		return zip, nil
	}
	return "", ErrMalformedAddress
}
