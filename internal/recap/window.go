package recap

import "time"

// Daily recaps cut at this wall clock time, the same for every server
const (
	CutoffHour   = 6
	CutoffMinute = 33
)

// Anything below this is a timestamp in seconds rather than milliseconds
const millisecondsThreshold = 1_000_000_000_000

// Start of the current daily window: today's cutoff, or yesterday's
// when the cutoff has not been reached yet
func WindowStart(now time.Time) time.Time {
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), CutoffHour, CutoffMinute, 0, 0, now.Location())
	if now.Before(cutoff) {
		cutoff = cutoff.AddDate(0, 0, -1)
	}
	return cutoff
}

// Next time a daily window opens after now
func NextCutoff(now time.Time) time.Time {
	return WindowStart(now).AddDate(0, 0, 1)
}

// Report if a game that ended at the provided timestamp counts for the current window
func InWindow(timestamp int64, now time.Time) bool {
	if timestamp < millisecondsThreshold {
		timestamp *= 1000
	}
	return timestamp >= WindowStart(now).UnixMilli()
}

// The calendar month before the one now falls in
func PreviousMonth(now time.Time) (time.Time, time.Time) {
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return end.AddDate(0, -1, 0), end
}

// Monthly recaps go out once the month has rolled over
func NextMonth(now time.Time) time.Time {
	_, end := PreviousMonth(now)
	return end.AddDate(0, 1, 0)
}
