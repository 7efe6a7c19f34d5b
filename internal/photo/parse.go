package photo

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	minYear = 1900
	maxYear = 2030

	// DefaultTitle is used when nothing remains of the stem after the date
	// prefix and separators are stripped.
	DefaultTitle = "Fotografía sin título"

	unknownDayMarker  = "XX"
	unknownDateMarker = "XXXX"
)

// Parse infers date, title and decade from a filename stem (the name
// without its extension). Three prefix patterns are tried in order:
//
//	YYYYMMDD    full calendar date
//	YYYYMMXX    year and month only
//	YYYYXXXX    year only
//
// The first pattern whose shape matches the start of the stem decides the
// outcome: if its values fail validation the whole stem is treated as
// undated, lower-precision patterns are not retried against the same
// prefix. Parse never fails; undated stems produce an unknown-precision
// record with the title derived from the whole stem.
func Parse(stem string) DateInfo {
	info := DateInfo{Precision: PrecisionUnknown}
	rest := stem

	switch {
	case len(stem) >= 8 && allDigits(stem[:8]):
		year := atoi(stem[:4])
		month := atoi(stem[4:6])
		day := atoi(stem[6:8])
		if yearInRange(year) && month >= 1 && month <= 12 && day >= 1 && day <= 31 &&
			isCalendarDate(year, month, day) {
			info.Year, info.Month, info.Day = year, month, day
			info.Precision = PrecisionFull
			rest = stem[8:]
		}

	case len(stem) >= 8 && allDigits(stem[:6]) && stem[6:8] == unknownDayMarker:
		year := atoi(stem[:4])
		month := atoi(stem[4:6])
		if yearInRange(year) && month >= 1 && month <= 12 {
			info.Year, info.Month = year, month
			info.Precision = PrecisionYearMonth
			rest = stem[8:]
		}

	case len(stem) >= 8 && allDigits(stem[:4]) && stem[4:8] == unknownDateMarker:
		year := atoi(stem[:4])
		if yearInRange(year) {
			info.Year = year
			info.Precision = PrecisionYear
			rest = stem[8:]
		}
	}

	info.Title = titleFrom(rest)
	info.Decade = decadeFor(info.Year)
	return info
}

// FormatDate renders the date at its known precision: "2006-01-02",
// "2006-01", "2006", or "" when nothing was parsed.
func (d DateInfo) FormatDate() string {
	switch d.Precision {
	case PrecisionFull:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	case PrecisionYearMonth:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	case PrecisionYear:
		return fmt.Sprintf("%04d", d.Year)
	default:
		return ""
	}
}

// titleFrom derives a display title from the remainder of a stem. A stem
// dated with the fully-unknown marker is also stripped.
func titleFrom(s string) string {
	s = strings.TrimPrefix(s, "XXXXXXXX")
	s = strings.TrimLeft(s, "-_ \t")
	title := TitleCase(s)
	if title == "" {
		return DefaultTitle
	}
	return title
}

// TitleCase turns a hyphen/underscore separated name into display form:
// separators become spaces, the first letter of each token is uppercased
// and runs of whitespace collapse.
func TitleCase(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// decadeFor maps a year to its display bucket. Buckets cover the 1950s
// through the 2010s; everything from 2020 on, and any year outside the
// buckets (including the unset zero value), lands in the newest bucket.
func decadeFor(year int) string {
	switch {
	case year >= 1950 && year < 1960:
		return "1950s"
	case year >= 1960 && year < 1970:
		return "1960s"
	case year >= 1970 && year < 1980:
		return "1970s"
	case year >= 1980 && year < 1990:
		return "1980s"
	case year >= 1990 && year < 2000:
		return "1990s"
	case year >= 2000 && year < 2010:
		return "2000s"
	case year >= 2010 && year < 2020:
		return "2010s"
	default:
		return "2020s"
	}
}

func yearInRange(year int) bool {
	return year >= minYear && year <= maxYear
}

// isCalendarDate reports whether the triple is a real date, rejecting
// combinations like February 30 or day 31 in a 30-day month.
func isCalendarDate(year, month, day int) bool {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return d.Year() == year && d.Month() == time.Month(month) && d.Day() == day
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// atoi converts a digit-only string; callers guarantee the input via
// allDigits.
func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
