package utils

import "time"

// Clock returns the current time. Handlers take one so tests can pin it.
type Clock func() time.Time

// SystemClock returns the current UTC time truncated to milliseconds, the
// precision stored in the tables.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NowRFC3339 returns the current time in RFC3339 format
func NowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
