package utils

import (
	"strings"

	"github.com/amitgupta-exe/microlearn-backend/internal/models"
)

// CountryCode is prefixed to local numbers so the same physical number always
// normalizes to one canonical store key.
const CountryCode = "91"

// NormalizePhoneNumber canonicalizes a raw WhatsApp number to digits with the
// country code and no separators ("91XXXXXXXXXX"). Every progress store
// lookup and write must go through this.
//
// Policy: strip non-digits; 10 digits is a local number (prefix country
// code); 11 digits starting with the trunk "0" drops the trunk digit first;
// 12 digits already carrying the country code pass through; anything longer
// keeps the last 10 digits as a fallback.
func NormalizePhoneNumber(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	number := digits.String()

	if len(number) == 11 && strings.HasPrefix(number, "0") {
		number = number[1:]
	}

	switch {
	case len(number) == 10:
		return CountryCode + number, nil
	case len(number) == 12 && strings.HasPrefix(number, CountryCode):
		return number, nil
	case len(number) > 10:
		return CountryCode + number[len(number)-10:], nil
	default:
		return "", models.ErrInvalidPhoneNumber
	}
}
