// Package dates parses the date notations found in Finnish bank documents:
// day.month.year tokens with an optional or 2-digit year, and the yyMMdd
// form used by fixed-width statement records. Invalid calendar dates are
// rejected, never clamped.
package dates

import (
	"regexp"
	"strconv"
	"time"
)

var dmyRe = regexp.MustCompile(`^([0-9]{1,2})\.([0-9]{1,2})\.([0-9]{4}|[0-9]{2})?$`)

// ParseDMY parses a "day.month.year" token. A missing year is taken from
// refYear, a 2-digit year gets refYear's century; refYear 0 means "use the
// current date". The second return value is false for tokens that are not
// date-shaped or name an impossible calendar date.
func ParseDMY(s string, refYear int) (time.Time, bool) {
	m := dmyRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	if refYear == 0 {
		refYear = time.Now().Year()
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])

	year := refYear
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
		if year < 100 {
			year += refYear / 100 * 100
		}
	}
	return makeDate(year, month, day)
}

// ParseYYMMDD parses the 6-digit date of legacy fixed-width records.
// Two-digit years are normalized into the 2000s.
func ParseYYMMDD(s string) (time.Time, bool) {
	if len(s) != 6 {
		return time.Time{}, false
	}
	for i := 0; i < 6; i++ {
		if s[i] < '0' || s[i] > '9' {
			return time.Time{}, false
		}
	}
	year, _ := strconv.Atoi(s[:2])
	month, _ := strconv.Atoi(s[2:4])
	day, _ := strconv.Atoi(s[4:6])
	return makeDate(2000+year, month, day)
}

// makeDate builds a date and verifies the components survived, so that
// "31.4." does not normalize into the 1st of May.
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
