package bill

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentSummary aggregates a payment history.
type PaymentSummary struct {
	Count   int
	Total   decimal.Decimal
	Late    int
	Average decimal.Decimal
}

func SummarizePayments(payments []*Payment) PaymentSummary {
	sum := PaymentSummary{Total: decimal.Zero, Average: decimal.Zero}

	for _, p := range payments {
		sum.Count++
		sum.Total = sum.Total.Add(p.Amount)

		if p.Late() {
			sum.Late++
		}
	}

	if sum.Count > 0 {
		sum.Average = sum.Total.Div(decimal.NewFromInt(int64(sum.Count))).Round(2)
	}

	return sum
}

// Recent returns the last n payments of an insertion-ordered history, most recent first.
func Recent(payments []*Payment, n int) []*Payment {
	if n <= 0 {
		return nil
	}

	start := max(len(payments)-n, 0)

	out := slices.Clone(payments[start:])
	slices.Reverse(out)

	return out
}

// Overview is the bills block of the dashboard.
type Overview struct {
	OverdueCount   int
	OverdueAmount  decimal.Decimal
	UpcomingCount  int
	UpcomingAmount decimal.Decimal
	UnpaidTotal    decimal.Decimal
	Overdue        []*Bill
	Upcoming       []*Bill
}

// Summarize derives the dashboard overview from due dates rather than stored
// status, so it is correct even between status sweeps. Upcoming only counts
// bills due within window days from now.
func Summarize(bills []*Bill, now time.Time, window int) Overview {
	today := DateOf(now)
	horizon := today.AddDate(0, 0, window)

	o := Overview{
		OverdueAmount:  decimal.Zero,
		UpcomingAmount: decimal.Zero,
		UnpaidTotal:    decimal.Zero,
	}

	for _, b := range bills {
		if b.Status == StatusPaid {
			continue
		}

		o.UnpaidTotal = o.UnpaidTotal.Add(b.Amount)

		switch ComputeStatus(b.DueDate, b.Recurrence, false, now) {
		case StatusOverdue:
			o.OverdueCount++
			o.OverdueAmount = o.OverdueAmount.Add(b.Amount)
			o.Overdue = append(o.Overdue, b)
		case StatusUpcoming:
			if DateOf(b.DueDate).After(horizon) {
				continue
			}

			o.UpcomingCount++
			o.UpcomingAmount = o.UpcomingAmount.Add(b.Amount)
			o.Upcoming = append(o.Upcoming, b)
		}
	}

	sortByDue := func(a, b *Bill) int { return a.DueDate.Compare(b.DueDate) }
	slices.SortStableFunc(o.Overdue, sortByDue)
	slices.SortStableFunc(o.Upcoming, sortByDue)

	return o
}
