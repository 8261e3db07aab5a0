// Package dates holds the ISO date helpers used by the task service.
// Dates are fixed-width YYYY-MM-DD strings throughout, which is what
// makes lexicographic comparison of stored due dates valid.
package dates

import "time"

const Layout = "2006-01-02"

// Valid reports whether s parses as a real calendar date.
func Valid(s string) bool {
	_, err := time.Parse(Layout, s)
	return err == nil
}

// Today formats the given time as an ISO date.
func Today(now time.Time) string {
	return now.Format(Layout)
}

// Future returns the ISO date the given number of days after now.
func Future(now time.Time, days int) string {
	return now.AddDate(0, 0, days).Format(Layout)
}

// InRange reports whether s falls within [start, end] inclusive.
// Returns false if any of the three fails to parse.
func InRange(s, start, end string) bool {
	d, err := time.Parse(Layout, s)
	if err != nil {
		return false
	}
	lo, err := time.Parse(Layout, start)
	if err != nil {
		return false
	}
	hi, err := time.Parse(Layout, end)
	if err != nil {
		return false
	}
	return !d.Before(lo) && !d.After(hi)
}

// DaysRemaining returns the whole days between now's date and the due
// date. The second return is false if the due date does not parse.
func DaysRemaining(due string, now time.Time) (int, bool) {
	d, err := time.Parse(Layout, due)
	if err != nil {
		return 0, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(today).Hours() / 24), true
}
