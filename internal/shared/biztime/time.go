// Package biztime keeps every timestamp in UTC.
package biztime

import "time"

// Clock returns the current instant. Services take one so tests can pin time.
type Clock func() time.Time

// NowUTC returns the current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// AddDays returns t moved forward by n whole 24-hour days.
func AddDays(t time.Time, n int) time.Time {
	return t.Add(time.Duration(n) * 24 * time.Hour)
}
