package bill_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestComputeStatus(t *testing.T) {
	type args struct {
		due  time.Time
		paid bool
		now  time.Time
	}

	type testCase struct {
		name string
		args args
		want bill.Status
	}

	tests := []testCase{
		{
			name: "PaidWinsOverPastDue",
			args: args{due: date(2025, 6, 1), paid: true, now: date(2025, 6, 26)},
			want: bill.StatusPaid,
		},
		{
			name: "YesterdayIsOverdue",
			args: args{due: date(2025, 6, 25), now: date(2025, 6, 26)},
			want: bill.StatusOverdue,
		},
		{
			name: "TodayIsUpcoming",
			args: args{due: date(2025, 6, 26), now: date(2025, 6, 26)},
			want: bill.StatusUpcoming,
		},
		{
			name: "TimeOfDayIgnored",
			args: args{due: date(2025, 6, 26), now: time.Date(2025, 6, 26, 23, 59, 0, 0, time.UTC)},
			want: bill.StatusUpcoming,
		},
		{
			name: "FutureIsUpcoming",
			args: args{due: date(2025, 7, 1), now: date(2025, 6, 26)},
			want: bill.StatusUpcoming,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bill.ComputeStatus(tt.args.due, bill.RecurMonthly, tt.args.paid, tt.args.now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdvanceDueDate(t *testing.T) {
	type testCase struct {
		name       string
		due        time.Time
		recurrence bill.Recurrence
		want       time.Time
	}

	tests := []testCase{
		{name: "WeeklyAcrossMonthEnd", due: date(2025, 6, 28), recurrence: bill.RecurWeekly, want: date(2025, 7, 5)},
		{name: "MonthlySameDay", due: date(2025, 6, 25), recurrence: bill.RecurMonthly, want: date(2025, 7, 25)},
		{name: "MonthlyClampsToFebruaryEnd", due: date(2025, 1, 31), recurrence: bill.RecurMonthly, want: date(2025, 2, 28)},
		{name: "MonthlyClampsToLeapDay", due: date(2024, 1, 31), recurrence: bill.RecurMonthly, want: date(2024, 2, 29)},
		{name: "MonthlyClampsTo30th", due: date(2025, 3, 31), recurrence: bill.RecurMonthly, want: date(2025, 4, 30)},
		{name: "MonthlyAcrossYearEnd", due: date(2025, 12, 15), recurrence: bill.RecurMonthly, want: date(2026, 1, 15)},
		{name: "YearlySameDay", due: date(2025, 3, 10), recurrence: bill.RecurYearly, want: date(2026, 3, 10)},
		{name: "YearlyLeapDayClampsToFeb28", due: date(2024, 2, 29), recurrence: bill.RecurYearly, want: date(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bill.AdvanceDueDate(tt.due, tt.recurrence)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdvanceDueDate_OneTime(t *testing.T) {
	_, err := bill.AdvanceDueDate(date(2025, 6, 20), bill.RecurOneTime)
	assert.ErrorIs(t, err, bill.ErrNotRecurring)
}

func TestNewBill_PastDueIsOverdueImmediately(t *testing.T) {
	now := date(2025, 6, 26)

	b := bill.NewBill(uuid.New(), bill.Draft{
		Name:       "Water",
		Amount:     decimal.NewFromInt(40),
		DueDate:    now.AddDate(0, 0, -1),
		Recurrence: bill.RecurMonthly,
	}, now)

	assert.Equal(t, bill.StatusOverdue, b.Status)
	assert.Nil(t, b.PaidDate)
}

func sequentialIDs() (func() uuid.UUID, []uuid.UUID) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	i := 0

	return func() uuid.UUID {
		id := ids[i]
		i++

		return id
	}, ids
}

func TestSettle_RecurringRollsForward(t *testing.T) {
	internet := &bill.Bill{
		ID:         uuid.New(),
		Name:       "Internet",
		Amount:     decimal.NewFromInt(60),
		Category:   "Utilities",
		DueDate:    date(2025, 6, 25),
		Recurrence: bill.RecurMonthly,
		Status:     bill.StatusOverdue,
	}

	newID, ids := sequentialIDs()

	s, err := bill.Settle(internet, date(2025, 6, 26), newID)
	require.NoError(t, err)

	assert.True(t, s.Rolled())
	assert.Nil(t, s.Paid)

	assert.Equal(t, ids[0], s.Payment.ID)
	assert.Equal(t, internet.ID, s.Payment.BillID)
	assert.Equal(t, "Internet", s.Payment.BillName)
	assert.True(t, decimal.NewFromInt(60).Equal(s.Payment.Amount))
	assert.Equal(t, date(2025, 6, 26), s.Payment.PaidDate)
	assert.Equal(t, date(2025, 6, 25), s.Payment.OriginalDueDate)
	assert.True(t, s.Payment.Late())

	assert.Equal(t, internet.ID, s.Retired.ID)
	assert.Equal(t, ids[1], s.Successor.ID)
	assert.Equal(t, date(2025, 7, 25), s.Successor.DueDate)
	assert.Equal(t, bill.StatusUpcoming, s.Successor.Status)
	assert.Nil(t, s.Successor.PaidDate)

	assert.Equal(t, bill.StatusOverdue, internet.Status, "input bill must not be mutated")
}

func TestSettle_SuccessorInThePastStillUpcoming(t *testing.T) {
	weekly := &bill.Bill{
		ID:         uuid.New(),
		Name:       "Cleaner",
		Amount:     decimal.NewFromInt(25),
		DueDate:    date(2025, 5, 1),
		Recurrence: bill.RecurWeekly,
		Status:     bill.StatusOverdue,
	}

	s, err := bill.Settle(weekly, date(2025, 6, 26), uuid.New)
	require.NoError(t, err)

	assert.Equal(t, date(2025, 5, 8), s.Successor.DueDate)
	assert.Equal(t, bill.StatusUpcoming, s.Successor.Status)
}

func TestSettle_OneTimeMarkedPaid(t *testing.T) {
	repair := &bill.Bill{
		ID:         uuid.New(),
		Name:       "Car Repair",
		Amount:     decimal.NewFromInt(300),
		DueDate:    date(2025, 6, 20),
		Recurrence: bill.RecurOneTime,
		Status:     bill.StatusOverdue,
	}

	s, err := bill.Settle(repair, date(2025, 6, 26), uuid.New)
	require.NoError(t, err)

	assert.False(t, s.Rolled())
	require.NotNil(t, s.Paid)
	assert.Equal(t, repair.ID, s.Paid.ID)
	assert.Equal(t, bill.StatusPaid, s.Paid.Status)
	require.NotNil(t, s.Paid.PaidDate)
	assert.Equal(t, date(2025, 6, 26), *s.Paid.PaidDate)
	assert.Equal(t, date(2025, 6, 20), s.Payment.OriginalDueDate)

	_, err = bill.Settle(s.Paid, date(2025, 6, 27), uuid.New)
	assert.ErrorIs(t, err, bill.ErrAlreadyPaid)
}

func TestBill_Apply(t *testing.T) {
	now := date(2025, 6, 26)
	b := &bill.Bill{
		ID:         uuid.New(),
		Name:       "Gym",
		Amount:     decimal.NewFromInt(30),
		DueDate:    date(2025, 7, 1),
		Recurrence: bill.RecurMonthly,
		Status:     bill.StatusUpcoming,
	}

	err := b.Apply(bill.Patch{DueDate: new(date(2025, 6, 1))}, now)
	require.NoError(t, err)
	assert.Equal(t, bill.StatusOverdue, b.Status)

	err = b.Apply(bill.Patch{Amount: new(decimal.NewFromInt(-1))}, now)
	assert.ErrorIs(t, err, bill.ErrValidation)
	assert.True(t, decimal.NewFromInt(30).Equal(b.Amount))

	b.Status = bill.StatusPaid
	err = b.Apply(bill.Patch{Recurrence: new(bill.RecurWeekly)}, now)
	assert.ErrorIs(t, err, bill.ErrAlreadyPaid)
}

func TestDraft_Validate(t *testing.T) {
	valid := bill.Draft{
		Name:       "Rent",
		Amount:     decimal.NewFromInt(1200),
		DueDate:    date(2025, 7, 1),
		Recurrence: bill.RecurMonthly,
	}

	tests := []struct {
		name   string
		mutate func(d *bill.Draft)
		field  string
	}{
		{name: "Valid"},
		{name: "BlankName", mutate: func(d *bill.Draft) { d.Name = "  " }, field: "name"},
		{name: "ZeroAmount", mutate: func(d *bill.Draft) { d.Amount = decimal.Zero }, field: "amount"},
		{name: "MissingDueDate", mutate: func(d *bill.Draft) { d.DueDate = time.Time{} }, field: "due_date"},
		{name: "UnknownRecurrence", mutate: func(d *bill.Draft) { d.Recurrence = "daily" }, field: "recurring"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			if tt.mutate != nil {
				tt.mutate(&d)
			}

			err := d.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var verr *bill.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.ErrorIs(t, err, bill.ErrValidation)
		})
	}
}

func TestParseRecurrence(t *testing.T) {
	for in, want := range map[string]bill.Recurrence{
		"weekly":   bill.RecurWeekly,
		"Monthly":  bill.RecurMonthly,
		"":         bill.RecurMonthly,
		"annual":   bill.RecurYearly,
		"one-time": bill.RecurOneTime,
		"once":     bill.RecurOneTime,
	} {
		got, err := bill.ParseRecurrence(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := bill.ParseRecurrence("fortnightly")
	assert.Error(t, err)
}
