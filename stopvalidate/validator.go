// Package stopvalidate implements the Stop Validator: rejecting
// malformed stop records and service-word city keys before they enter a
// Dataset.
package stopvalidate

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/sakhatransit/routeengine/city"
	"github.com/sakhatransit/routeengine/dataset"
)

// serviceWords is the blocklist of generic transit nouns that must not stand
// in for a city name.
var serviceWords = map[string]struct{}{
	"центральная":    {},
	"главный":        {},
	"пассажирский":   {},
	"международный":  {},
	"внутренний":     {},
	"туймаада":       {},
	"туймада":        {},
	"аэропорт":       {},
	"вокзал":         {},
	"автостанция":    {},
	"станция":        {},
	"остановка":      {},
}

// Result is the outcome of validating a single stop record.
type Result struct {
	Valid  bool
	Errors []string
}

// Validator checks candidate stops before they enter a dataset.
type Validator struct {
	ref *city.Reference
}

// New builds a Validator against the unified reference.
func New(ref *city.Reference) *Validator {
	return &Validator{ref: ref}
}

// Validate applies every rule and collects every violation found,
// rather than stopping at the first failure, so callers can report a
// complete error list.
func (v *Validator) Validate(s dataset.Stop) Result {
	var errs []string

	if strings.TrimSpace(s.Name) == "" || utf8.RuneCountInString(strings.TrimSpace(s.Name)) < 3 {
		errs = append(errs, "name missing or shorter than 3 characters")
	}

	if s.HasCoords {
		if !isFinite(s.Latitude) || s.Latitude < -90 || s.Latitude > 90 {
			errs = append(errs, fmt.Sprintf("latitude %v out of range [-90,90]", s.Latitude))
		}
		if !isFinite(s.Longitude) || s.Longitude < -180 || s.Longitude > 180 {
			errs = append(errs, fmt.Sprintf("longitude %v out of range [-180,180]", s.Longitude))
		}
	}

	cityKey := strings.TrimSpace(s.CityKey)
	if cityKey == "" {
		errs = append(errs, "missing city key")
	} else {
		if _, blocked := serviceWords[cityKey]; blocked {
			errs = append(errs, fmt.Sprintf("city key %q is a service word", cityKey))
		} else if v.ref != nil && !v.ref.Accepted(cityKey) {
			errs = append(errs, fmt.Sprintf("city key %q is not in the unified reference", cityKey))
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsServiceWord reports whether key is one of the blocklisted service words.
func IsServiceWord(key string) bool {
	_, ok := serviceWords[strings.TrimSpace(key)]
	return ok
}
