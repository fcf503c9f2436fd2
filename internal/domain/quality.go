package domain

import (
	"strconv"
	"strings"
)

const (
	DefaultQuality = 50
	MaxQuality     = 100
)

// ParseQuality applies the upload rules for the optional quality field.
// The value is read as a leading base-10 integer after trimming, so "40abc"
// is 40 and "12.5" is 12. A value with no leading digits falls back to
// DefaultQuality and reports defaulted=true; a number outside (0,100] is
// rejected.
func ParseQuality(raw string, present bool) (quality int, defaulted bool, err error) {
	raw = strings.TrimSpace(raw)
	if !present || raw == "" {
		return DefaultQuality, true, nil
	}

	digits := leadingInteger(raw)
	if digits == "" {
		return DefaultQuality, true, nil
	}

	parsed, convErr := strconv.Atoi(digits)
	if convErr != nil {
		// Only overflow is left; the sign decides which bound was crossed.
		if strings.HasPrefix(digits, "-") {
			return 0, false, QualityTooLow()
		}
		return 0, false, QualityTooHigh()
	}

	switch {
	case parsed <= 0:
		return 0, false, QualityTooLow()
	case parsed > MaxQuality:
		return 0, false, QualityTooHigh()
	}
	return parsed, false, nil
}

// leadingInteger returns the optional sign and the run of ASCII digits that
// open s, or "" when s does not start with a digit after the sign.
func leadingInteger(s string) string {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return ""
	}
	return s[:end]
}
