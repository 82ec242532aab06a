// Package money converts printed monetary tokens into integer cents and
// formats cents for display. All financial amounts in this module are carried
// as int64 minor units; decimal arithmetic is used for the conversion so no
// precision is lost, and go-money handles display formatting.
package money

import (
	"regexp"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// centsRe matches an integer-and-fraction money token: an optional sign, an
// integer part that may use spaces or periods for digit grouping, a comma or
// period decimal separator, and exactly two fraction digits.
var centsRe = regexp.MustCompile(`^([+-]?)([0-9][0-9 .]*)[,.]([0-9]{2})$`)

// ParseCents converts a money token to integer cents. The second return
// value reports whether the token had a recognizable money shape: "0,00"
// parses to 0 with ok=true, which is distinct from "not found".
func ParseCents(s string) (int64, bool) {
	m := centsRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}

	var intPart strings.Builder
	for _, r := range m[2] {
		if r >= '0' && r <= '9' {
			intPart.WriteRune(r)
		}
	}
	if intPart.Len() == 0 {
		return 0, false
	}

	d, err := decimal.NewFromString(m[1] + intPart.String() + "." + m[3])
	if err != nil {
		return 0, false
	}
	return d.Mul(decimal.NewFromInt(100)).IntPart(), true
}

// FormatCents renders integer cents for display, e.g. 123456 -> "€1,234.56".
func FormatCents(cents int64) string {
	return gomoney.New(cents, gomoney.EUR).Display()
}
