// Package slug derives URL-safe household identifiers from free-form names.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxLength is the longest slug the schema accepts.
	MaxLength = 120
	// Fallback is used when slugification leaves nothing usable.
	Fallback = "tenant"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	stripMarks      = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Make slugifies a value: lowercase, diacritics stripped, runs of
// non-alphanumeric characters collapsed to single hyphens, leading and
// trailing hyphens trimmed, clamped to MaxLength. An empty result falls back
// to the fixed placeholder token.
func Make(value string) string {
	lowered := strings.ToLower(value)
	if stripped, _, err := transform.String(stripMarks, lowered); err == nil {
		lowered = stripped
	}

	s := nonAlphanumeric.ReplaceAllString(lowered, "-")
	s = strings.Trim(s, "-")
	return Clamp(s)
}

// Clamp truncates a slug to MaxLength and substitutes the fallback token for
// an empty result.
func Clamp(s string) string {
	if len(s) > MaxLength {
		s = s[:MaxLength]
	}
	if s == "" {
		return Fallback
	}
	return s
}
