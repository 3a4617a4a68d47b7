package levels

import (
	"time"

	"github.com/CrispyBacon228/sb-watchbot/internal/signal"
)

// SessionWindows defines the clock ranges the builder scans for each level
// pair. Overnight may cross midnight; it is anchored to end on the given day.
type SessionWindows struct {
	PriorDayStart  string
	PriorDayEnd    string
	OvernightStart string
	OvernightEnd   string
	SecondaryStart string
	SecondaryEnd   string
}

// DefaultSessions covers the prior regular session, the 20:00-00:00
// overnight range, and the 02:00-05:00 secondary range.
func DefaultSessions() SessionWindows {
	return SessionWindows{
		PriorDayStart:  "09:30",
		PriorDayEnd:    "16:00",
		OvernightStart: "20:00",
		OvernightEnd:   "00:00",
		SecondaryStart: "02:00",
		SecondaryEnd:   "05:00",
	}
}

// Build derives the day's level set from an ordered historical bar slice.
// Windows with no bars simply leave their levels absent.
func Build(bars []signal.Bar, day time.Time, sw SessionWindows, loc *time.Location) signal.LevelSet {
	day = day.In(loc)

	prior := day.AddDate(0, 0, -1)
	for prior.Weekday() == time.Saturday || prior.Weekday() == time.Sunday {
		prior = prior.AddDate(0, 0, -1)
	}

	var ls signal.LevelSet
	pdStart, pdEnd := window(prior, sw.PriorDayStart, sw.PriorDayEnd, loc, false)
	ls.PriorDayHigh, ls.PriorDayLow = extremes(bars, pdStart, pdEnd)

	onStart, onEnd := window(day, sw.OvernightStart, sw.OvernightEnd, loc, true)
	ls.OvernightHigh, ls.OvernightLow = extremes(bars, onStart, onEnd)

	secStart, secEnd := window(day, sw.SecondaryStart, sw.SecondaryEnd, loc, false)
	ls.SecondaryHigh, ls.SecondaryLow = extremes(bars, secStart, secEnd)

	return ls
}

// window resolves clock bounds on the given day. When prevDayStart is set
// and the range crosses midnight, the start is moved to the previous day.
func window(day time.Time, startHM, endHM string, loc *time.Location, prevDayStart bool) (time.Time, time.Time) {
	start := atClock(day, startHM, loc)
	end := atClock(day, endHM, loc)
	if prevDayStart && !end.After(start) {
		start = start.AddDate(0, 0, -1)
	}
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}

func atClock(day time.Time, hm string, loc *time.Location) time.Time {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		t = time.Time{}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}

// extremes scans [from, to) and returns the highest high and lowest low, or
// nils when no bar falls inside the window.
func extremes(bars []signal.Bar, from, to time.Time) (*float64, *float64) {
	var hi, lo *float64
	fromMs, toMs := from.UnixMilli(), to.UnixMilli()
	for _, b := range bars {
		if b.Ts < fromMs || b.Ts >= toMs {
			continue
		}
		if hi == nil || b.High > *hi {
			v := b.High
			hi = &v
		}
		if lo == nil || b.Low < *lo {
			v := b.Low
			lo = &v
		}
	}
	return hi, lo
}
