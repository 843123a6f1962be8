package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateKind selects the date granularity of a filter.
type DateKind int

const (
	DateNone DateKind = iota
	DateDay
	DateMonth
	DateYear
)

// DateFilter holds exactly one active date granularity. Build it with NoDate, ByDay,
// ByMonth or ByYear; replacing a DateFilter clears whichever granularity was set before.
type DateFilter struct {
	kind  DateKind
	day   time.Time
	year  int
	month time.Month
	// invalid marks a month key that could not be parsed. It matches nothing.
	invalid bool
}

// NoDate disables date filtering.
func NoDate() DateFilter {
	return DateFilter{}
}

// ByDay matches records created on the same calendar day as d. Only d's own year,
// month and day are used.
func ByDay(d time.Time) DateFilter {
	return DateFilter{kind: DateDay, day: d}
}

// ByMonth matches records created in the month named by a YYYY-MM key.
func ByMonth(key string) DateFilter {
	year, month, err := parseMonthKey(key)
	if err != nil {
		return DateFilter{kind: DateMonth, invalid: true}
	}
	return DateFilter{kind: DateMonth, year: year, month: month}
}

// ByYear matches records created in year.
func ByYear(year int) DateFilter {
	return DateFilter{kind: DateYear, year: year}
}

// Kind returns the active granularity.
func (f DateFilter) Kind() DateKind {
	return f.kind
}

// Active reports whether a granularity is set.
func (f DateFilter) Active() bool {
	return f.kind != DateNone
}

// Match compares calendar components of t, taken in loc, against the filter.
func (f DateFilter) Match(t time.Time, loc *time.Location) bool {
	if f.kind == DateNone {
		return true
	}
	if f.invalid || t.IsZero() {
		return false
	}
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()

	switch f.kind {
	case DateDay:
		fy, fm, fd := f.day.Date()
		return y == fy && m == fm && d == fd
	case DateMonth:
		return y == f.year && m == f.month
	case DateYear:
		return y == f.year
	}
	return false
}

// String renders the filter in the form accepted by the HTTP query parameters.
func (f DateFilter) String() string {
	switch f.kind {
	case DateDay:
		return "day=" + f.day.Format("2006-01-02")
	case DateMonth:
		if f.invalid {
			return "month=invalid"
		}
		return fmt.Sprintf("month=%04d-%02d", f.year, int(f.month))
	case DateYear:
		return "year=" + strconv.Itoa(f.year)
	}
	return "none"
}

// parseMonthKey splits YYYY-MM into a year and a calendar month. The month component is
// one-based in the key.
func parseMonthKey(key string) (int, time.Month, error) {
	parts := strings.Split(strings.TrimSpace(key), "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid month key: %q", key)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) != 4 {
		return 0, 0, fmt.Errorf("invalid year in month key: %q", key)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month in month key: %q", key)
	}
	return year, time.Month(month), nil
}

// ValidMonthKey reports whether key is a well-formed YYYY-MM key.
func ValidMonthKey(key string) bool {
	_, _, err := parseMonthKey(key)
	return err == nil
}
