package centroid

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalizer maps a raw term to the key used for centroid lookups.
//
// The same Normalizer must be applied when the table is built and when
// observations are looked up. Table binds one at build time for that reason.
type Normalizer func(term string) string

// Identity matches terms byte for byte.
func Identity(term string) string { return term }

// Fold trims surrounding whitespace, composes the term to Unicode NFC and
// applies full Unicode case folding. "  Café " and "CAFÉ" fold to the same key.
func Fold(term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return ""
	}
	// cases.Caser is stateful and not safe for concurrent use.
	return cases.Fold().String(norm.NFC.String(term))
}

// DefaultNormalizer is used by builders that do not set one explicitly.
var DefaultNormalizer Normalizer = Fold

// NormalizerByName resolves a built-in normalizer by its configuration name.
func NormalizerByName(name string) (Normalizer, bool) {
	switch name {
	case "", "fold":
		return Fold, true
	case "identity", "exact":
		return Identity, true
	default:
		return nil, false
	}
}
