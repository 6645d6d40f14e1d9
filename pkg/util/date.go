package util

import (
	"strconv"
	"time"
)

const DateLayout = "2006-01-02"

// ParseTime tries RFC3339, RFC3339Nano, a plain date, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// CalendarDate truncates t to midnight of its own calendar day, keeping t's location.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDate reports whether a and b fall on the same calendar day in a's location.
func SameDate(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// NextDates returns n consecutive calendar dates starting the day after last.
func NextDates(last time.Time, n int) []time.Time {
	base := CalendarDate(last)
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = base.AddDate(0, 0, i+1)
	}
	return out
}

// UnixMillis converts epoch milliseconds to UTC time.
func UnixMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
