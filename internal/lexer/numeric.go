package lexer

import (
	"fmt"
	"strings"
	"unicode"
)

// NumericMode selects how fragments are recognised as numeric literals.
type NumericMode string

const (
	// NumericLoose accepts any all-digit fragment and any fragment that
	// contains a '.', so "1.2.3" and "a.b" both count as numbers.
	NumericLoose NumericMode = "loose"

	// NumericStrict accepts digit runs with at most one '.' between them.
	NumericStrict NumericMode = "strict"
)

// ParseNumericMode validates a mode name. Empty means NumericLoose.
func ParseNumericMode(s string) (NumericMode, error) {
	switch NumericMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", NumericLoose:
		return NumericLoose, nil
	case NumericStrict:
		return NumericStrict, nil
	default:
		return "", fmt.Errorf("invalid numeric mode %q (valid: loose, strict)", s)
	}
}

// IsNumeric reports whether fragment is a numeric literal under mode.
func (m NumericMode) IsNumeric(fragment string) bool {
	if m == NumericStrict {
		return isStrictNumber(fragment)
	}
	return strings.Contains(fragment, ".") || isAllNumber(fragment)
}

func isAllNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

func isStrictNumber(s string) bool {
	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if !hasDot {
		return isASCIIDigits(s)
	}
	return isASCIIDigits(intPart) && isASCIIDigits(fracPart)
}

func isASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
