package validate

import "strings"

// Reference validates a creditor reference printed on an invoice or payment.
// Two formats are accepted: the Finnish domestic reference with a 7-3-1
// weighted check digit, and the international ISO 11649 reference
// ("RF" + two check digits + digits) verified with MOD-97-10.
func Reference(s string) Verdict {
	s = stripSpaces(s)
	if s == "" {
		return invalid("empty reference")
	}
	if strings.HasPrefix(s, "RF") {
		return isoReference(s)
	}
	return domesticReference(s)
}

func isoReference(s string) Verdict {
	if len(s) < 7 || len(s) > 25 {
		return invalid("length %d outside 7..25", len(s))
	}
	for i := 2; i < len(s); i++ {
		if !isDigit(s[i]) {
			return invalid("non-digit character %q", s[i])
		}
	}
	// Same rearrangement as IBAN: "RF" and the check digits move to the end.
	if mod97(s[4:]+s[:4]) != 1 {
		return invalid("MOD-97 checksum mismatch")
	}
	return acceptable()
}

// domesticReference checks the Finnish bank reference: weights 7, 3, 1
// cycle from the rightmost digit of the base number (check digit excluded),
// and the check digit must equal (10 - sum%10) % 10.
func domesticReference(s string) Verdict {
	if len(s) < 4 || len(s) > 20 {
		return invalid("length %d outside 4..20", len(s))
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return invalid("non-digit character %q", s[i])
		}
	}
	base := s[:len(s)-1]
	check := int(s[len(s)-1] - '0')

	weights := [3]int{7, 3, 1}
	sum := 0
	for i := 0; i < len(base); i++ {
		digit := int(base[len(base)-1-i] - '0')
		sum += digit * weights[i%3]
	}
	if (10-sum%10)%10 != check {
		return invalid("check digit mismatch")
	}
	return acceptable()
}
