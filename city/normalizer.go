// Package city implements the City Normalizer: canonicalizing arbitrary
// input labels into a stable city key, and deriving
// the deterministic identifiers used for virtual entities.
//
// The normalization rules are applied in a fixed order and are idempotent:
// normalize(normalize(x)) == normalize(x) for every input x, a property
// the tests pin down.
package city

import (
	"fmt"
	"strings"
)

// prefixes are stripped from the front of a normalized token before
// reference lookup.
var prefixes = []string{"г.", "город"}

// Normalizer canonicalizes city labels against a Reference.
type Normalizer struct {
	ref *Reference
}

// NewNormalizer builds a Normalizer over the given reference tables.
func NewNormalizer(ref *Reference) *Normalizer {
	return &Normalizer{ref: ref}
}

// Normalize applies the full rule cascade and returns the
// canonical city key. The returned key is not guaranteed to be Accepted; use
// Accept to check that separately.
func (n *Normalizer) Normalize(raw string) string {
	return n.normalizeOnce(raw)
}

// Accept normalizes raw and reports whether the result is a reference city.
func (n *Normalizer) Accept(raw string) (string, bool) {
	key := n.Normalize(raw)
	return key, n.ref.Accepted(key)
}

func (n *Normalizer) normalizeOnce(raw string) string {
	s := strings.ToLower(raw)
	s = foldYo(s)
	s = strings.TrimSpace(s)
	s = collapseWhitespace(s)
	s = stripPrefixes(s)
	s = collapseWhitespace(strings.TrimSpace(s))

	if city, ok := n.ref.Airport(s); ok {
		return n.renormalize(city)
	}
	if city, ok := n.ref.Suburb(s); ok {
		return n.renormalize(city)
	}
	return s
}

// renormalize re-applies lowercase/fold/trim/collapse to a resolved city
// name, since airport and suburb reference values are plain city names that
// still need the base normalization pass.
func (n *Normalizer) renormalize(resolved string) string {
	s := strings.ToLower(resolved)
	s = foldYo(s)
	s = strings.TrimSpace(s)
	s = collapseWhitespace(s)
	s = stripPrefixes(s)
	return collapseWhitespace(strings.TrimSpace(s))
}

func stripPrefixes(s string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimSpace(strings.TrimPrefix(s, p))
		}
	}
	return s
}

// foldYo folds Cyrillic "ё" to "е".
func foldYo(s string) string {
	return strings.ReplaceAll(s, "ё", "е")
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// VirtualStopID derives the stable virtual stop identifier for a normalized
// city key. Calling it twice with equivalent inputs (case, ё/е
// variants) yields the same id, since callers are expected to pass an
// already-normalized key.
func VirtualStopID(normalizedCityKey string) string {
	return fmt.Sprintf("virtual-stop-%s", normalizedCityKey)
}

// VirtualRouteID derives the stable virtual route identifier for an ordered
// pair of stop ids.
func VirtualRouteID(fromStopID, toStopID string) string {
	return fmt.Sprintf("virtual-route-%s-%s", fromStopID, toStopID)
}
