// Package memory is an in-process engine backend for local and demo use.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
)

type Backend struct {
	now   func() time.Time
	newID func() uuid.UUID

	mu       sync.Mutex
	bills    []*bill.Bill
	payments []*bill.Payment
}

type Option func(*Backend)

func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// WithIDs replaces uuid.New, mainly so tests get predictable ids.
func WithIDs(newID func() uuid.UUID) Option {
	return func(b *Backend) { b.newID = newID }
}

func New(opts ...Option) *Backend {
	b := &Backend{now: time.Now, newID: uuid.New}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Demo returns a backend seeded with a few monthly household bills.
func Demo(opts ...Option) *Backend {
	b := New(opts...)

	seed := []bill.Draft{
		{Name: "Rent", Amount: decimal.NewFromInt(1200), Category: "Housing", DueDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), Recurrence: bill.RecurMonthly},
		{Name: "Electricity", Amount: decimal.NewFromInt(150), Category: "Utilities", DueDate: time.Date(2025, 6, 28, 0, 0, 0, 0, time.UTC), Recurrence: bill.RecurMonthly},
		{Name: "Internet", Amount: decimal.NewFromInt(60), Category: "Utilities", DueDate: time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC), Recurrence: bill.RecurMonthly},
	}

	now := b.now()
	for _, d := range seed {
		b.bills = append(b.bills, bill.NewBill(b.newID(), d, now))
	}

	return b
}

func (m *Backend) List(_ context.Context) ([]*bill.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*bill.Bill, len(m.bills))
	for i, b := range m.bills {
		out[i] = b.Clone()
	}

	return out, nil
}

func (m *Backend) ListPayments(_ context.Context) ([]*bill.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*bill.Payment, len(m.payments))
	for i, p := range m.payments {
		out[i] = p.Clone()
	}

	return out, nil
}

func (m *Backend) Create(_ context.Context, d bill.Draft) (*bill.Bill, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	b := bill.NewBill(m.newID(), d, m.now())
	m.bills = append(m.bills, b)

	return b.Clone(), nil
}

func (m *Backend) Update(_ context.Context, id uuid.UUID, p bill.Patch) (*bill.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return nil, bill.ErrNotFound
	}

	next := m.bills[i].Clone()
	if err := next.Apply(p, m.now()); err != nil {
		return nil, err
	}

	now := m.now()
	next.UpdatedAt = &now
	m.bills[i] = next

	return next.Clone(), nil
}

func (m *Backend) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return bill.ErrNotFound
	}

	m.bills = slices.Delete(m.bills, i, i+1)

	return nil
}

// Pay settles the bill. The successor of a recurring bill is appended at the
// end of the list, after the retired instance is removed.
func (m *Backend) Pay(_ context.Context, id uuid.UUID, paidDate *time.Time) (*bill.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return nil, bill.ErrNotFound
	}

	date := m.now()
	if paidDate != nil {
		date = *paidDate
	}

	s, err := bill.Settle(m.bills[i], date, m.newID)
	if err != nil {
		return nil, err
	}

	s.Payment.CreatedAt = m.now()
	m.payments = append(m.payments, s.Payment)

	if s.Rolled() {
		s.Successor.CreatedAt = m.now()
		m.bills = slices.Delete(m.bills, i, i+1)
		m.bills = append(m.bills, s.Successor)
	} else {
		m.bills[i] = s.Paid
	}

	return s.Payment.Clone(), nil
}

// Refresh recomputes the status of every unpaid bill.
func (m *Backend) Refresh(_ context.Context, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.bills {
		b.Refresh(now)
	}

	return nil
}

func (m *Backend) index(id uuid.UUID) int {
	return slices.IndexFunc(m.bills, func(b *bill.Bill) bool { return b.ID == id })
}
