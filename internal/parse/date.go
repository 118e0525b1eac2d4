package parse

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Date is a parsed date cell. Valid is false when the cell holds no date.
type Date struct {
	Time  time.Time
	Valid bool
}

// MarshalJSON encodes a missing date as null and a valid one as YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(time.DateOnly))
}

// String renders the date as YYYY-MM-DD, or "" when missing.
func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(time.DateOnly)
}

// Epoch is the earliest date accepted into chronological series. Anything
// older is treated as a spreadsheet placeholder rather than a real period.
var Epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// ptMonths is ordered so prefix matching is deterministic.
var ptMonths = []struct {
	prefix string
	month  time.Month
}{
	{"jan", time.January},
	{"fev", time.February},
	{"mar", time.March},
	{"abr", time.April},
	{"mai", time.May},
	{"jun", time.June},
	{"jul", time.July},
	{"ago", time.August},
	{"set", time.September},
	{"out", time.October},
	{"nov", time.November},
	{"dez", time.December},
}

// Dates parses a whole date column.
//
// Every cell is first read as a general date with the day before the month
// when the order is ambiguous. Only if that yields no date at all for the
// column are the cells retried as Portuguese month/year shorthand ("fev/25").
// The fallback is a column-level decision: one readable cell disables it for
// every other cell.
func Dates(cells []string) []Date {
	out := make([]Date, len(cells))
	found := false
	for i, c := range cells {
		out[i] = parseGeneral(c)
		if out[i].Valid {
			found = true
		}
	}
	if found {
		return out
	}

	for i, c := range cells {
		out[i] = parseMonthYear(c)
	}
	return out
}

// dottedDate matches "01.02.2024" and "1.2.24", optionally followed by a time.
var dottedDate = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{2}|\d{4})(\s|$)`)

func parseGeneral(cell string) Date {
	s := strings.TrimSpace(cell)
	if s == "" || isDigits(s) {
		// bare integers are spreadsheet serials, never epoch offsets
		return Date{}
	}
	// dateparse reads dotted dates month first whatever the preference.
	s = dottedDate.ReplaceAllString(s, "$1/$2/$3$4")

	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return Date{}
	}
	return Date{Time: t, Valid: true}
}

func parseMonthYear(cell string) Date {
	s := strings.ToLower(strings.TrimSpace(cell))
	if len(s) < 2 {
		return Date{}
	}
	for _, m := range ptMonths {
		if !strings.HasPrefix(s, m.prefix) {
			continue
		}
		yy := s[len(s)-2:]
		if !isDigits(yy) {
			return Date{}
		}
		year, err := strconv.Atoi("20" + yy)
		if err != nil {
			return Date{}
		}
		return Date{Time: time.Date(year, m.month, 1, 0, 0, 0, 0, time.UTC), Valid: true}
	}
	return Date{}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
