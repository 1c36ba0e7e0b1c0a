// Package normalize turns locale-variant dates and free text into canonical
// values. Everything here is pure: the current time is always passed in.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISOLayout is the canonical date layout used throughout the planner.
const ISOLayout = "2006-01-02"

// FallbackDays is how far ahead an unrecognised date is placed.
const FallbackDays = 7

const (
	minYear = 2020
	maxYear = 2030
)

var (
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4}|\d{2})\b`)
	isoDateRe     = regexp.MustCompile(`(?:^|\D)(\d{4})-(\d{1,2})-(\d{1,2})(?:\D|$)`)
	dayMonthRe    = regexp.MustCompile(`(?:^|[^/.\-\d])(\d{1,2})[/.\-](\d{1,2})(?:$|[^/.\-\d])`)
	longDateRe    = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(` + monthAlternation() + `)\.?(?:\s+(\d{4}))?\b`)
)

var italianMonths = map[string]time.Month{
	"gennaio": time.January, "gen": time.January,
	"febbraio": time.February, "feb": time.February,
	"marzo": time.March, "mar": time.March,
	"aprile": time.April, "apr": time.April,
	"maggio": time.May, "mag": time.May,
	"giugno": time.June, "giu": time.June,
	"luglio": time.July, "lug": time.July,
	"agosto": time.August, "ago": time.August,
	"settembre": time.September, "sett": time.September, "set": time.September,
	"ottobre": time.October, "ott": time.October,
	"novembre": time.November, "nov": time.November,
	"dicembre": time.December, "dic": time.December,
}

// monthAlternation lists full names before abbreviations so the regexp
// prefers "settembre" over "set".
func monthAlternation() string {
	return "gennaio|febbraio|marzo|aprile|maggio|giugno|luglio|agosto|settembre|ottobre|novembre|dicembre|" +
		"gen|feb|mar|apr|mag|giu|lug|ago|sett|set|ott|nov|dic"
}

// MonthByName resolves an Italian month name or abbreviation.
func MonthByName(name string) (time.Month, bool) {
	m, ok := italianMonths[strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))]
	return m, ok
}

// Date converts input to YYYY-MM-DD. Recognised shapes, in priority order:
// DD/MM/YYYY (also "-" or "." separated, 2-digit years allowed), YYYY-MM-DD,
// Italian long form ("lunedì 15 gennaio 2025"), and day/month only, which is
// placed in the current year or the next one if already past.
//
// When nothing matches it returns now+7 days and ok=false; callers are
// expected to report that so the source can be fixed.
func Date(input string, now time.Time) (iso string, ok bool) {
	s := strings.TrimSpace(input)
	today := startOfDay(now)

	if t, found := withYear(s, now.Location()); found {
		return t.Format(ISOLayout), true
	}

	if m := longDateRe.FindStringSubmatch(s); m != nil && m[3] == "" {
		month, _ := MonthByName(m[2])
		if t, valid := upcoming(atoi(m[1]), int(month), today); valid {
			return t.Format(ISOLayout), true
		}
	}

	if m := dayMonthRe.FindStringSubmatch(s); m != nil {
		if t, valid := upcoming(atoi(m[1]), atoi(m[2]), today); valid {
			return t.Format(ISOLayout), true
		}
	}

	return today.AddDate(0, 0, FallbackDays).Format(ISOLayout), false
}

// FullDate is Date restricted to shapes that carry an explicit year, so
// page numbers and other bare number pairs in free text are not taken
// for a day and month.
func FullDate(input string, now time.Time) (iso string, ok bool) {
	if t, found := withYear(strings.TrimSpace(input), now.Location()); found {
		return t.Format(ISOLayout), true
	}
	return "", false
}

func withYear(s string, loc *time.Location) (time.Time, bool) {
	for _, m := range numericDateRe.FindAllStringSubmatch(s, -1) {
		year := atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
		if year < minYear || year > maxYear {
			continue
		}
		if t, valid := civilDate(year, atoi(m[2]), atoi(m[1]), loc); valid {
			return t, true
		}
	}

	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		if t, valid := civilDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), loc); valid {
			return t, true
		}
	}

	if m := longDateRe.FindStringSubmatch(s); m != nil && m[3] != "" {
		month, _ := MonthByName(m[2])
		if t, valid := civilDate(atoi(m[3]), int(month), atoi(m[1]), loc); valid {
			return t, true
		}
	}
	return time.Time{}, false
}

// upcoming places day/month in today's year, rolling to next year when the
// date has already passed.
func upcoming(day, month int, today time.Time) (time.Time, bool) {
	t, valid := civilDate(today.Year(), month, day, today.Location())
	if valid && !t.Before(today) {
		return t, true
	}
	return civilDate(today.Year()+1, month, day, today.Location())
}

// civilDate builds a date and rejects overflow such as 31/02.
func civilDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
