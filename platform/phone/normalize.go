// Package phone provides contact identifier utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "BR"

// NormalizeJID reduces a raw channel identifier to its canonical digits-only
// form. Provider identifiers arrive in several textual shapes: with a channel
// suffix ("5541999998888@s.whatsapp.net"), with punctuation ("+55 41 9999-8888"),
// or already bare. Everything from the first '@' on is dropped, then only
// digits are kept. Malformed input normalizes to whatever digits remain,
// possibly the empty string.
func NormalizeJID(raw string) string {
	if at := strings.IndexByte(raw, '@'); at >= 0 {
		raw = raw[:at]
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatDisplay renders a normalized digits-only identifier in international
// notation for the UI. If the digits do not parse as a valid number, the
// input is returned unchanged.
func FormatDisplay(digits string) string {
	if digits == "" {
		return digits
	}

	number, err := phonenumbers.Parse("+"+digits, defaultRegion)
	if err != nil {
		return digits
	}

	if !phonenumbers.IsValidNumber(number) {
		return digits
	}

	return phonenumbers.Format(number, phonenumbers.INTERNATIONAL)
}
