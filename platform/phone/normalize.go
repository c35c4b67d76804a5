// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "BR"

// Normalizer formats contact numbers for a fixed default region.
type Normalizer struct {
	region string
}

// NewNormalizer returns a Normalizer for region (ISO 3166 alpha-2).
func NewNormalizer(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	return &Normalizer{region: region}
}

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func (n *Normalizer) NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, n.region)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// NormalizeE164 formats input using DefaultRegion.
func NormalizeE164(input string) string {
	return NewNormalizer(DefaultRegion).NormalizeE164(input)
}

// Digits returns the E.164 form without the leading plus, as used by wa.me links and gateways.
func Digits(input string) string {
	return strings.TrimPrefix(NormalizeE164(input), "+")
}
