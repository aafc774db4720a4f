package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
	"github.com/MrJamesThe3rd/budgetwise/internal/engine/memory"
)

var now = time.Date(2025, 6, 26, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func TestDemo(t *testing.T) {
	b := memory.Demo(memory.WithClock(clock))

	bills, err := b.List(context.Background())
	require.NoError(t, err)
	require.Len(t, bills, 3)

	want := map[string]bill.Status{
		"Rent":        bill.StatusUpcoming,
		"Electricity": bill.StatusUpcoming,
		"Internet":    bill.StatusOverdue,
	}

	for _, got := range bills {
		assert.Equal(t, want[got.Name], got.Status, got.Name)
		assert.Equal(t, bill.RecurMonthly, got.Recurrence)
	}
}

func TestBackend_Pay(t *testing.T) {
	type testCase struct {
		name       string
		recurrence bill.Recurrence
		wantBills  int
		check      func(t *testing.T, original uuid.UUID, bills []*bill.Bill)
	}

	tests := []testCase{
		{
			name:       "RecurringRollsToEnd",
			recurrence: bill.RecurWeekly,
			wantBills:  2,
			check: func(t *testing.T, original uuid.UUID, bills []*bill.Bill) {
				assert.Equal(t, "Other", bills[0].Name)
				assert.NotEqual(t, original, bills[1].ID)
				assert.Equal(t, time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC), bills[1].DueDate)
			},
		},
		{
			name:       "OneTimeStaysInPlace",
			recurrence: bill.RecurOneTime,
			wantBills:  2,
			check: func(t *testing.T, original uuid.UUID, bills []*bill.Bill) {
				assert.Equal(t, original, bills[0].ID)
				assert.Equal(t, bill.StatusPaid, bills[0].Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			b := memory.New(memory.WithClock(clock))

			created, err := b.Create(ctx, bill.Draft{
				Name:       "Cleaner",
				Amount:     decimal.NewFromInt(25),
				DueDate:    time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
				Recurrence: tt.recurrence,
			})
			require.NoError(t, err)

			_, err = b.Create(ctx, bill.Draft{
				Name:       "Other",
				Amount:     decimal.NewFromInt(1),
				DueDate:    time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
				Recurrence: bill.RecurMonthly,
			})
			require.NoError(t, err)

			p, err := b.Pay(ctx, created.ID, nil)
			require.NoError(t, err)
			assert.Equal(t, time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC), p.PaidDate)
			assert.True(t, p.Late())

			bills, err := b.List(ctx)
			require.NoError(t, err)
			require.Len(t, bills, tt.wantBills)
			tt.check(t, created.ID, bills)

			payments, err := b.ListPayments(ctx)
			require.NoError(t, err)
			assert.Len(t, payments, 1)
		})
	}
}

func TestBackend_Update(t *testing.T) {
	ctx := context.Background()
	b := memory.New(memory.WithClock(clock))

	created, err := b.Create(ctx, bill.Draft{
		Name:       "Gym",
		Amount:     decimal.NewFromInt(30),
		DueDate:    time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Recurrence: bill.RecurMonthly,
	})
	require.NoError(t, err)

	_, err = b.Update(ctx, created.ID, bill.Patch{Amount: new(decimal.NewFromInt(-5))})
	assert.ErrorIs(t, err, bill.ErrValidation)

	updated, err := b.Update(ctx, created.ID, bill.Patch{Name: new("Climbing"), DueDate: new(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))})
	require.NoError(t, err)
	assert.Equal(t, "Climbing", updated.Name)
	assert.Equal(t, bill.StatusOverdue, updated.Status)
	assert.NotNil(t, updated.UpdatedAt)

	_, err = b.Update(ctx, uuid.New(), bill.Patch{Name: new("x")})
	assert.ErrorIs(t, err, bill.ErrNotFound)
}

func TestBackend_ListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	b := memory.Demo(memory.WithClock(clock))

	bills, err := b.List(ctx)
	require.NoError(t, err)

	bills[0].Name = "changed"

	again, err := b.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Rent", again[0].Name)
}
