package task

import "time"

// Timing is the coarse scheduling bucket emitted by the model and accepted
// on approval.
type Timing string

const (
	TimingImmediate Timing = "immediate"
	TimingEndOfDay  Timing = "end_of_day"
	TimingTomorrow  Timing = "tomorrow"
	TimingNextWeek  Timing = "next_week"
)

// endOfDayHour and morningHour anchor the concrete send times.
const (
	endOfDayHour = 17
	morningHour  = 9
)

// ParseTiming validates a timing string.
func ParseTiming(s string) (Timing, bool) {
	switch Timing(s) {
	case TimingImmediate, TimingEndOfDay, TimingTomorrow, TimingNextWeek:
		return Timing(s), true
	}
	return "", false
}

// ResolveTiming converts a timing bucket into a concrete send time relative
// to now. The rules are deterministic so tests can pin a reference time:
//
//	immediate  → now
//	end_of_day → today 17:00, rolling to tomorrow 17:00 once 17:00 has passed
//	tomorrow   → next calendar day 09:00
//	next_week  → +7 days 09:00
func ResolveTiming(tm Timing, now time.Time) time.Time {
	switch tm {
	case TimingEndOfDay:
		eod := time.Date(now.Year(), now.Month(), now.Day(), endOfDayHour, 0, 0, 0, now.Location())
		if !now.Before(eod) {
			eod = eod.AddDate(0, 0, 1)
		}
		return eod
	case TimingTomorrow:
		d := now.AddDate(0, 0, 1)
		return time.Date(d.Year(), d.Month(), d.Day(), morningHour, 0, 0, 0, now.Location())
	case TimingNextWeek:
		d := now.AddDate(0, 0, 7)
		return time.Date(d.Year(), d.Month(), d.Day(), morningHour, 0, 0, 0, now.Location())
	default:
		return now
	}
}
