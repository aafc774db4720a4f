// Package engine holds the client-side view of a user's bills and payments.
//
// The Engine owns an in-memory snapshot of both collections, applies the
// lifecycle rules through a Backend and notifies subscribers whenever the
// snapshot changes. After every successful mutation the snapshot is replaced
// by a full reload from the backend, so local state never drifts from what
// the backend holds. When a backend call fails the previous snapshot stays in
// place. When the backend commits but the reload fails, the committed change
// is patched into the snapshot and ErrStale is returned with the result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
)

// DefaultRecent is how many payments the recent payments panel shows.
const DefaultRecent = 5

var (
	// ErrInFlight is returned when a pay or delete for the same bill is still pending.
	ErrInFlight = errors.New("operation already in progress for bill")

	// ErrStale is returned alongside the result when a change was committed by
	// the backend but the follow-up reload failed. The change must not be retried.
	ErrStale = errors.New("change saved but reload failed")
)

//go:generate mockgen -source=engine.go -destination=backend_mock.go -package=engine
type Backend interface {
	List(ctx context.Context) ([]*bill.Bill, error)
	Create(ctx context.Context, d bill.Draft) (*bill.Bill, error)
	Update(ctx context.Context, id uuid.UUID, p bill.Patch) (*bill.Bill, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Pay(ctx context.Context, id uuid.UUID, paidDate *time.Time) (*bill.Payment, error)

	// ListPayments returns the payment log in insertion order, oldest first.
	ListPayments(ctx context.Context) ([]*bill.Payment, error)
}

// Refresher is implemented by backends that can run a status sweep themselves.
type Refresher interface {
	Refresh(ctx context.Context, now time.Time) error
}

// Snapshot is an immutable copy of the engine state handed to subscribers.
type Snapshot struct {
	Bills    []*bill.Bill
	Payments []*bill.Payment
}

// Total is the sum of all unpaid bill amounts.
func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero

	for _, b := range s.Bills {
		if b.Status != bill.StatusPaid {
			total = total.Add(b.Amount)
		}
	}

	return total
}

type Engine struct {
	backend Backend
	now     func() time.Time

	mu       sync.RWMutex
	bills    []*bill.Bill
	payments []*bill.Payment

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int

	flightMu sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

type Option func(*Engine)

// WithClock replaces time.Now as the source of "now".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(backend Backend, opts ...Option) *Engine {
	e := &Engine{
		backend:  backend,
		now:      time.Now,
		subs:     make(map[int]func(Snapshot)),
		inFlight: make(map[uuid.UUID]struct{}),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Load replaces the snapshot with the backend's current state.
func (e *Engine) Load(ctx context.Context) error {
	bills, err := e.backend.List(ctx)
	if err != nil {
		return fmt.Errorf("loading bills: %w", err)
	}

	payments, err := e.backend.ListPayments(ctx)
	if err != nil {
		return fmt.Errorf("loading payments: %w", err)
	}

	e.mu.Lock()
	e.bills = bills
	e.payments = payments
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.publish(snap)

	return nil
}

// Refresh runs a status sweep and reloads. Backends without a sweep of
// their own get statuses recomputed locally on the loaded snapshot.
func (e *Engine) Refresh(ctx context.Context) error {
	now := e.now()

	r, ok := e.backend.(Refresher)
	if ok {
		if err := r.Refresh(ctx, now); err != nil {
			return fmt.Errorf("refreshing statuses: %w", err)
		}

		return e.Load(ctx)
	}

	if err := e.Load(ctx); err != nil {
		return err
	}

	e.mu.Lock()

	changed := false

	for _, b := range e.bills {
		if b.Refresh(now) {
			changed = true
		}
	}

	snap := e.snapshotLocked()
	e.mu.Unlock()

	if changed {
		e.publish(snap)
	}

	return nil
}

// AddBill creates a bill; its initial status is derived from the due date.
func (e *Engine) AddBill(ctx context.Context, d bill.Draft) (*bill.Bill, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	b, err := e.backend.Create(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("adding bill: %w", err)
	}

	err = e.reload(ctx, func() {
		e.bills = append(e.bills, b.Clone())
	})

	return b.Clone(), err
}

// UpdateBill applies a partial edit to an active bill.
func (e *Engine) UpdateBill(ctx context.Context, id uuid.UUID, p bill.Patch) (*bill.Bill, error) {
	b, err := e.backend.Update(ctx, id, p)
	if err != nil {
		return nil, fmt.Errorf("updating bill: %w", err)
	}

	err = e.reload(ctx, func() {
		if i := e.indexLocked(id); i >= 0 {
			e.bills[i] = b.Clone()
		}
	})

	return b.Clone(), err
}

// MarkAsPaid records a payment for the bill. A nil paidDate means today.
// Recurring bills are replaced by their next occurrence; one-time bills stay
// in the list as paid.
func (e *Engine) MarkAsPaid(ctx context.Context, id uuid.UUID, paidDate *time.Time) (*bill.Payment, error) {
	release, err := e.acquire(id)
	if err != nil {
		return nil, err
	}
	defer release()

	date := bill.DateOf(e.now())
	if paidDate != nil {
		date = bill.DateOf(*paidDate)
	}

	p, err := e.backend.Pay(ctx, id, &date)
	if err != nil {
		return nil, fmt.Errorf("paying bill %s: %w", id, err)
	}

	slog.Debug("bill marked as paid", "bill_id", id, "paid_date", date.Format(time.DateOnly))

	// The successor of a recurring bill is only known to the backend, so a
	// stale snapshot drops the paid occurrence until the next Load.
	err = e.reload(ctx, func() {
		e.payments = append(e.payments, p.Clone())

		i := e.indexLocked(id)
		if i < 0 {
			return
		}

		if e.bills[i].Recurrence.IsRecurring() {
			e.bills = slices.Delete(e.bills, i, i+1)
			return
		}

		paid := e.bills[i].Clone()
		paid.Status = bill.StatusPaid
		paid.PaidDate = new(date)
		e.bills[i] = paid
	})

	return p.Clone(), err
}

func (e *Engine) DeleteBill(ctx context.Context, id uuid.UUID) error {
	release, err := e.acquire(id)
	if err != nil {
		return err
	}
	defer release()

	if err := e.backend.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting bill %s: %w", id, err)
	}

	return e.reload(ctx, func() {
		if i := e.indexLocked(id); i >= 0 {
			e.bills = slices.Delete(e.bills, i, i+1)
		}
	})
}

// reload runs after a committed mutation. If the reload fails, patch is
// applied to the current snapshot under the write lock and ErrStale is
// returned alongside the load error.
func (e *Engine) reload(ctx context.Context, patch func()) error {
	err := e.Load(ctx)
	if err == nil {
		return nil
	}

	slog.Warn("reload after change failed", "error", err)

	e.mu.Lock()
	patch()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.publish(snap)

	return fmt.Errorf("%w: %w", ErrStale, err)
}

func (e *Engine) indexLocked(id uuid.UUID) int {
	return slices.IndexFunc(e.bills, func(b *bill.Bill) bool { return b.ID == id })
}

func (e *Engine) acquire(id uuid.UUID) (func(), error) {
	e.flightMu.Lock()
	defer e.flightMu.Unlock()

	if _, busy := e.inFlight[id]; busy {
		return nil, fmt.Errorf("bill %s: %w", id, ErrInFlight)
	}

	e.inFlight[id] = struct{}{}

	return func() {
		e.flightMu.Lock()
		delete(e.inFlight, id)
		e.flightMu.Unlock()
	}, nil
}

// Bills returns a copy of the active bills in backend order.
func (e *Engine) Bills() []*bill.Bill {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return cloneBills(e.bills)
}

// Payments returns a copy of the payment log, oldest first.
func (e *Engine) Payments() []*bill.Payment {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return clonePayments(e.payments)
}

// RecentPayments returns the last n payments, most recent first. n <= 0 means DefaultRecent.
func (e *Engine) RecentPayments(n int) []*bill.Payment {
	if n <= 0 {
		n = DefaultRecent
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	return clonePayments(bill.Recent(e.payments, n))
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.snapshotLocked()
}

// Subscribe registers fn to receive every new snapshot. The returned func removes it.
func (e *Engine) Subscribe(fn func(Snapshot)) func() {
	e.subMu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	e.subMu.Unlock()

	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Bills:    cloneBills(e.bills),
		Payments: clonePayments(e.payments),
	}
}

func (e *Engine) publish(snap Snapshot) {
	e.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(e.subs))

	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func cloneBills(in []*bill.Bill) []*bill.Bill {
	out := make([]*bill.Bill, len(in))
	for i, b := range in {
		out[i] = b.Clone()
	}

	return out
}

func clonePayments(in []*bill.Payment) []*bill.Payment {
	out := make([]*bill.Payment, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}

	return out
}
