package view

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
	"github.com/MrJamesThe3rd/budgetwise/internal/engine"
	"github.com/MrJamesThe3rd/budgetwise/internal/engine/memory"
)

func demoEngine(t *testing.T) *engine.Engine {
	t.Helper()

	now := func() time.Time { return date(2025, 6, 26).Add(9 * time.Hour) }

	e := engine.New(memory.Demo(memory.WithClock(now)), engine.WithClock(now))
	require.NoError(t, e.Load(context.Background()))

	return e
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBillsModel_StatusFilter(t *testing.T) {
	m := NewBillsModel(demoEngine(t))
	assert.Len(t, m.visible, 3)

	next, _ := m.Update(key("s"))
	m = next.(BillsModel)

	if assert.Len(t, m.visible, 1) {
		assert.Equal(t, "Internet", m.visible[0].Name)
	}

	next, _ = m.Update(key("s"))
	m = next.(BillsModel)
	assert.Len(t, m.visible, 2)

	next, _ = m.Update(key("s"))
	m = next.(BillsModel)
	assert.Empty(t, m.visible)
	assert.Contains(t, m.View(), "Paid")

	next, _ = m.Update(key("s"))
	m = next.(BillsModel)
	assert.Len(t, m.visible, 3)
}

func TestBillsModel_PaidFilterShowsSettledOneTime(t *testing.T) {
	e := demoEngine(t)

	b, err := e.AddBill(context.Background(), bill.Draft{
		Name:       "Car Repair",
		Amount:     decimal.NewFromInt(300),
		DueDate:    date(2025, 6, 20),
		Recurrence: bill.RecurOneTime,
	})
	require.NoError(t, err)

	_, err = e.MarkAsPaid(context.Background(), b.ID, nil)
	require.NoError(t, err)

	m := NewBillsModel(e)
	for range 3 {
		next, _ := m.Update(key("s"))
		m = next.(BillsModel)
	}

	require.Len(t, m.visible, 1)
	assert.Equal(t, b.ID, m.visible[0].ID)
}

func TestBillsModel_EditUpdatesBill(t *testing.T) {
	e := demoEngine(t)
	m := NewBillsModel(e)

	orig, ok := m.selected()
	require.True(t, ok)

	next, _ := m.Update(key("e"))
	m = next.(BillsModel)
	assert.Equal(t, billsStateEdit, m.state)
	assert.Equal(t, orig.ID, m.editing.ID)
	assert.Equal(t, orig.Name, m.fields.name)

	m.fields.amount = "1250.00"
	m.fields.category = "Home"

	msg, ok := m.editCmd(m.editing)().(opMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.Contains(t, msg.status, "Updated "+orig.Name)

	got := e.Bills()[0]
	assert.Equal(t, orig.ID, got.ID)
	assert.Equal(t, "1250", got.Amount.String())
	assert.Equal(t, "Home", got.Category)
	assert.Equal(t, orig.DueDate, got.DueDate)

	msg, ok = m.editCmd(got)().(opMsg)
	require.True(t, ok)
	assert.Contains(t, msg.status, "No changes")
}

func TestBillsModel_RecentPayments(t *testing.T) {
	e := demoEngine(t)
	m := NewBillsModel(e)
	assert.NotContains(t, m.View(), "Recent payments")

	next, _ := m.Update(key("s"))
	m = next.(BillsModel)

	msg, ok := m.payCmd()().(opMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)

	view := m.View()
	assert.Contains(t, view, "Recent payments")
	assert.Contains(t, view, "Internet")
	assert.Contains(t, view, "late")
}

func TestBillsModel_PayRollsForward(t *testing.T) {
	e := demoEngine(t)
	m := NewBillsModel(e)

	next, _ := m.Update(key("s"))
	m = next.(BillsModel)

	cmd := m.payCmd()
	require.NotNil(t, cmd)

	msg, ok := cmd().(opMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.Contains(t, msg.status, "Paid Internet")
	assert.Contains(t, msg.status, "late")

	next, _ = m.Update(SnapshotMsg{Snapshot: e.Snapshot()})
	m = next.(BillsModel)
	assert.Empty(t, m.visible)

	var found bool
	for _, b := range e.Bills() {
		if b.Name == "Internet" {
			found = true
			assert.Equal(t, date(2025, 7, 25), b.DueDate)
			assert.Equal(t, bill.StatusUpcoming, b.Status)
		}
	}

	assert.True(t, found)
	assert.Len(t, e.Payments(), 1)
}

func TestBillFields_Draft(t *testing.T) {
	f := billFields{
		name:       " Gym ",
		amount:     "29.90",
		category:   "Health",
		dueDate:    "2025-07-05",
		recurrence: bill.RecurMonthly,
	}

	d, err := f.draft()
	require.NoError(t, err)
	assert.Equal(t, "Gym", d.Name)
	assert.Equal(t, "29.9", d.Amount.String())
	assert.Equal(t, date(2025, 7, 5), d.DueDate)

	b := bill.NewBill(uuid.New(), d, date(2025, 6, 26))
	p, err := f.patch(b)
	require.NoError(t, err)
	assert.True(t, p.Empty())

	f.amount = "35"
	p, err = f.patch(b)
	require.NoError(t, err)
	require.NotNil(t, p.Amount)
	assert.Equal(t, "35", p.Amount.String())
	assert.Nil(t, p.Name)
	assert.Nil(t, p.DueDate)

	f.dueDate = "05/07/2025"
	_, err = f.draft()
	assert.Error(t, err)

	assert.Error(t, validateAmount("-3"))
	assert.Error(t, validateAmount("abc"))
	assert.NoError(t, validateAmount("12.50"))
}
