// Package phone canonicalizes raw phone number strings so Synthesis CDR
// numbers and Capsule contact numbers compare equal.
package phone

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Normalizer strips formatting, country codes and dialling prefixes from
// phone numbers. Prefixes are injected so the GB defaults are configuration,
// not logic.
type Normalizer struct {
	// CountryCode is the bare country code, e.g. "44".
	CountryCode string
	// IntlPrefix is the international call prefix, e.g. "00".
	IntlPrefix string
	// TrunkPrefix is the domestic trunk prefix, e.g. "0".
	TrunkPrefix string
}

// NewNormalizer returns a Normalizer for GB numbers.
func NewNormalizer() Normalizer {
	return Normalizer{CountryCode: "44", IntlPrefix: "00", TrunkPrefix: "0"}
}

// Normalize strips every non-digit character and removes the country code,
// international prefix or trunk prefix, returning the national form. With
// toE164 the country code is prepended to the national form instead.
//
// The international branch assumes the country code following IntlPrefix is
// two digits; longer codes would be mis-stripped. Empty or non-numeric input
// is an error.
//
// Normalize is idempotent on its own national output.
func (n Normalizer) Normalize(raw string, toE164 bool) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	num := b.String()

	var national string
	switch {
	case num == "":
		return "", eris.Errorf("phone: no digits in %q", raw)
	case strings.HasPrefix(num, n.CountryCode):
		national = num[len(n.CountryCode):]
	case strings.HasPrefix(num, n.IntlPrefix):
		if len(num) <= len(n.IntlPrefix)+2 {
			return "", eris.Errorf("phone: %q too short for an international number", raw)
		}
		national = num[len(n.IntlPrefix)+2:]
	case strings.HasPrefix(num, n.TrunkPrefix):
		national = num[len(n.TrunkPrefix):]
	default:
		national = num
	}

	if national == "" {
		return "", eris.Errorf("phone: nothing left of %q after stripping", raw)
	}

	if toE164 {
		return n.CountryCode + national, nil
	}
	return national, nil
}
