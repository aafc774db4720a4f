package bill

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateOf drops the time-of-day, keeping the calendar date as seen in t's location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}

	return t, nil
}

// ComputeStatus derives a bill's status. Time of day is ignored on both sides.
func ComputeStatus(dueDate time.Time, _ Recurrence, paid bool, now time.Time) Status {
	if paid {
		return StatusPaid
	}

	if DateOf(dueDate).Before(DateOf(now)) {
		return StatusOverdue
	}

	return StatusUpcoming
}

// AdvanceDueDate returns the due date of the next occurrence.
//
// Monthly and yearly steps keep the day of month and clamp to the last day of
// the target month: Jan 31 becomes Feb 28 (Feb 29 in leap years) and Feb 29
// becomes Feb 28 the following year.
func AdvanceDueDate(due time.Time, r Recurrence) (time.Time, error) {
	d := DateOf(due)

	switch r {
	case RecurWeekly:
		return d.AddDate(0, 0, 7), nil
	case RecurMonthly:
		return addMonthsClamped(d, 1), nil
	case RecurYearly:
		return addMonthsClamped(d, 12), nil
	}

	return time.Time{}, fmt.Errorf("advance %q due date: %w", r, ErrNotRecurring)
}

func addMonthsClamped(d time.Time, months int) time.Time {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	day := min(d.Day(), daysIn(first.Year(), first.Month()))

	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Settlement is the outcome of paying one bill instance. Exactly one of Paid or
// the Retired/Successor pair is set.
type Settlement struct {
	Payment *Payment

	// Paid is the one-time bill, kept in place with status paid.
	Paid *Bill

	// Retired is the recurring instance leaving the active collection and
	// Successor the freshly born next occurrence.
	Retired   *Bill
	Successor *Bill
}

// Rolled reports whether the settlement replaced the bill with its next occurrence.
func (s *Settlement) Rolled() bool {
	return s.Successor != nil
}

// Settle computes the transition for paying b on paidDate. The input bill is
// not modified. newID supplies the payment id and, for recurring bills, the
// successor id.
//
// The successor always starts upcoming, even when its due date is already in
// the past; the next status sweep is what moves it to overdue.
func Settle(b *Bill, paidDate time.Time, newID func() uuid.UUID) (*Settlement, error) {
	if b.Status == StatusPaid {
		return nil, fmt.Errorf("settle bill %s: %w", b.ID, ErrAlreadyPaid)
	}

	paid := DateOf(paidDate)

	s := &Settlement{
		Payment: &Payment{
			ID:              newID(),
			BillID:          b.ID,
			BillName:        b.Name,
			Amount:          b.Amount,
			Category:        b.Category,
			PaidDate:        paid,
			OriginalDueDate: b.DueDate,
		},
	}

	if !b.Recurrence.IsRecurring() {
		one := b.Clone()
		one.Status = StatusPaid
		one.PaidDate = &paid
		s.Paid = one

		return s, nil
	}

	next, err := AdvanceDueDate(b.DueDate, b.Recurrence)
	if err != nil {
		return nil, fmt.Errorf("settle bill %s: %w", b.ID, err)
	}

	s.Retired = b.Clone()
	s.Successor = &Bill{
		ID:         newID(),
		Name:       b.Name,
		Amount:     b.Amount,
		Category:   b.Category,
		DueDate:    next,
		Recurrence: b.Recurrence,
		Status:     StatusUpcoming,
	}

	return s, nil
}
