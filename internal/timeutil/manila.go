package timeutil

import (
	"time"
)

// Manila is the campus timezone (UTC+8, no DST)
var Manila *time.Location

func init() {
	var err error
	Manila, err = time.LoadLocation("Asia/Manila")
	if err != nil {
		// Fallback: create fixed zone if Asia/Manila not available
		Manila = time.FixedZone("PHT", 8*60*60)
	}
}

// Now returns the current time in campus local time
func Now() time.Time {
	return time.Now().In(Manila)
}

// ToLocal converts any time to campus local time
func ToLocal(t time.Time) time.Time {
	return t.In(Manila)
}

// StartOfDay returns the start of day (00:00:00) in campus local time
func StartOfDay(t time.Time) time.Time {
	local := t.In(Manila)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Manila)
}

// EndOfDay returns the end of day (23:59:59.999...) in campus local time
func EndOfDay(t time.Time) time.Time {
	local := t.In(Manila)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, Manila)
}

// Common layouts for display formatting
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)
