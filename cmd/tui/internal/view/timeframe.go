package view

import (
	"time"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
)

// Timeframe filters the payment history by paid date.
type Timeframe int

const (
	TimeframeAll Timeframe = iota
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeThisYear
)

var timeframes = []Timeframe{TimeframeAll, TimeframeThisMonth, TimeframeLastMonth, TimeframeThisYear}

func (t Timeframe) String() string {
	switch t {
	case TimeframeAll:
		return "All Time"
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeThisYear:
		return "This Year"
	}

	return "Unknown"
}

// Next cycles to the following timeframe.
func (t Timeframe) Next() Timeframe {
	return timeframes[(int(t)+1)%len(timeframes)]
}

// Range returns the inclusive date bounds of t relative to now. ok is false for TimeframeAll.
func (t Timeframe) Range(now time.Time) (start, end time.Time, ok bool) {
	today := bill.DateOf(now)

	switch t {
	case TimeframeThisMonth:
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, -1)
	case TimeframeLastMonth:
		start = time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, -1)
	case TimeframeThisYear:
		start = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}

// Filter keeps the payments whose paid date falls inside t.
func (t Timeframe) Filter(payments []*bill.Payment, now time.Time) []*bill.Payment {
	start, end, ok := t.Range(now)
	if !ok {
		return payments
	}

	out := make([]*bill.Payment, 0, len(payments))

	for _, p := range payments {
		d := bill.DateOf(p.PaidDate)
		if d.Before(start) || d.After(end) {
			continue
		}

		out = append(out, p)
	}

	return out
}
