// Package validate provides checksum validators for financial identifiers:
// IBAN account numbers (ISO 7064 MOD-97-10) and creditor references
// (Finnish domestic check digit and ISO 11649 "RF" references).
// Validators return a verdict, never an error: a rejected token is a normal
// outcome during heuristic extraction, not a failure.
package validate

import (
	"fmt"
	"strings"
)

// Verdict is the result of validating a candidate token.
type Verdict struct {
	Acceptable bool
	Reason     string
}

func acceptable() Verdict { return Verdict{Acceptable: true} }

func invalid(format string, args ...any) Verdict {
	return Verdict{Reason: fmt.Sprintf(format, args...)}
}

// IBAN validates an International Bank Account Number. Internal whitespace is
// ignored, so tokens recovered from layouts that split the number across
// word boxes still validate.
func IBAN(s string) Verdict {
	s = stripSpaces(s)

	if len(s) < 5 || len(s) > 34 {
		return invalid("length %d outside 5..34", len(s))
	}
	if !isUpperAlpha(s[0]) || !isUpperAlpha(s[1]) {
		return invalid("missing country code")
	}
	if !isDigit(s[2]) || !isDigit(s[3]) {
		return invalid("missing check digits")
	}
	for i := 4; i < len(s); i++ {
		if !isAlnum(s[i]) {
			return invalid("non-alphanumeric character %q", s[i])
		}
	}
	if mod97(s[4:] + s[:4]) != 1 {
		return invalid("MOD-97 checksum mismatch")
	}
	return acceptable()
}

// mod97 computes the ISO 7064 MOD-97-10 remainder of the rearranged string,
// mapping letters A..Z to 10..35. Characters outside [0-9A-Za-z] make the
// remainder unusable and yield 0 (never the valid remainder 1).
func mod97(s string) int {
	rem := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isDigit(c):
			rem = (rem*10 + int(c-'0')) % 97
		case isUpperAlpha(c):
			rem = (rem*100 + int(c-'A') + 10) % 97
		case c >= 'a' && c <= 'z':
			rem = (rem*100 + int(c-'a') + 10) % 97
		default:
			return 0
		}
	}
	return rem
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isUpperAlpha(c byte) bool { return c >= 'A' && c <= 'Z' }

func isAlnum(c byte) bool {
	return isDigit(c) || isUpperAlpha(c) || (c >= 'a' && c <= 'z')
}
