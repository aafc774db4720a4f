package bill

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recurrence is the cadence at which a bill regenerates after payment.
type Recurrence string

const (
	RecurWeekly  Recurrence = "weekly"
	RecurMonthly Recurrence = "monthly"
	RecurYearly  Recurrence = "yearly"
	RecurOneTime Recurrence = "one-time"
)

// Recurrences lists every recurrence in form display order.
var Recurrences = []Recurrence{RecurMonthly, RecurWeekly, RecurYearly, RecurOneTime}

// IsRecurring reports whether a paid bill rolls forward to a new instance.
func (r Recurrence) IsRecurring() bool {
	return r == RecurWeekly || r == RecurMonthly || r == RecurYearly
}

func (r Recurrence) Valid() bool {
	return r.IsRecurring() || r == RecurOneTime
}

// ParseRecurrence accepts the canonical names plus a few spellings seen in imports.
func ParseRecurrence(s string) (Recurrence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly", "week":
		return RecurWeekly, nil
	case "monthly", "month", "":
		return RecurMonthly, nil
	case "yearly", "annual", "annually", "year":
		return RecurYearly, nil
	case "one-time", "onetime", "one time", "once":
		return RecurOneTime, nil
	}

	return "", fmt.Errorf("unknown recurrence %q", s)
}

// Status is derived from the due date and payment state; it is never set directly by users.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusOverdue  Status = "overdue"
	StatusPaid     Status = "paid"
)

func (s Status) Valid() bool {
	return s == StatusUpcoming || s == StatusOverdue || s == StatusPaid
}

// Bill is a single instance of a payment obligation.
type Bill struct {
	ID         uuid.UUID
	Name       string
	Amount     decimal.Decimal
	Category   string
	DueDate    time.Time
	Recurrence Recurrence
	Status     Status
	PaidDate   *time.Time // one-time bills only, set once paid
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// Clone returns a deep copy so snapshots handed to renderers cannot alias live state.
func (b *Bill) Clone() *Bill {
	c := *b
	if b.PaidDate != nil {
		paid := *b.PaidDate
		c.PaidDate = &paid
	}

	if b.UpdatedAt != nil {
		updated := *b.UpdatedAt
		c.UpdatedAt = &updated
	}

	return &c
}

// Refresh recomputes the status of an unpaid bill against now and reports whether it changed.
func (b *Bill) Refresh(now time.Time) bool {
	if b.Status == StatusPaid {
		return false
	}

	next := ComputeStatus(b.DueDate, b.Recurrence, false, now)
	if next == b.Status {
		return false
	}

	b.Status = next

	return true
}

// Payment is an immutable record of a settled bill instance. Name, amount and
// category are snapshots so history survives later edits or rollovers.
type Payment struct {
	ID              uuid.UUID
	BillID          uuid.UUID
	BillName        string
	Amount          decimal.Decimal
	Category        string
	PaidDate        time.Time
	OriginalDueDate time.Time
	CreatedAt       time.Time
}

// Late reports whether the payment happened after the instance's due date.
func (p *Payment) Late() bool {
	return DateOf(p.PaidDate).After(DateOf(p.OriginalDueDate))
}

func (p *Payment) Clone() *Payment {
	c := *p
	return &c
}

// Draft carries user input for a new bill.
type Draft struct {
	Name       string
	Amount     decimal.Decimal
	Category   string
	DueDate    time.Time
	Recurrence Recurrence
}

// Validate checks the constraints the form layers enforce before a draft is committed.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}

	if !d.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	if d.DueDate.IsZero() {
		return &ValidationError{Field: "due_date", Reason: "is required"}
	}

	if !d.Recurrence.Valid() {
		return &ValidationError{Field: "recurring", Reason: fmt.Sprintf("unknown value %q", d.Recurrence)}
	}

	return nil
}

// NewBill builds an unpaid bill from a draft, deriving its initial status from now.
func NewBill(id uuid.UUID, d Draft, now time.Time) *Bill {
	due := DateOf(d.DueDate)

	return &Bill{
		ID:         id,
		Name:       strings.TrimSpace(d.Name),
		Amount:     d.Amount,
		Category:   strings.TrimSpace(d.Category),
		DueDate:    due,
		Recurrence: d.Recurrence,
		Status:     ComputeStatus(due, d.Recurrence, false, now),
		CreatedAt:  now,
	}
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Name       *string
	Amount     *decimal.Decimal
	Category   *string
	DueDate    *time.Time
	Recurrence *Recurrence
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Amount == nil && p.Category == nil && p.DueDate == nil && p.Recurrence == nil
}

// Apply validates and applies the patch, recomputing status for unpaid bills.
func (b *Bill) Apply(p Patch, now time.Time) error {
	if b.Status == StatusPaid && (p.DueDate != nil || p.Recurrence != nil) {
		return fmt.Errorf("changing schedule of bill %s: %w", b.ID, ErrAlreadyPaid)
	}

	next := Draft{
		Name:       b.Name,
		Amount:     b.Amount,
		Category:   b.Category,
		DueDate:    b.DueDate,
		Recurrence: b.Recurrence,
	}

	if p.Name != nil {
		next.Name = *p.Name
	}

	if p.Amount != nil {
		next.Amount = *p.Amount
	}

	if p.Category != nil {
		next.Category = *p.Category
	}

	if p.DueDate != nil {
		next.DueDate = *p.DueDate
	}

	if p.Recurrence != nil {
		next.Recurrence = *p.Recurrence
	}

	if err := next.Validate(); err != nil {
		return err
	}

	b.Name = strings.TrimSpace(next.Name)
	b.Amount = next.Amount
	b.Category = strings.TrimSpace(next.Category)
	b.DueDate = DateOf(next.DueDate)
	b.Recurrence = next.Recurrence
	b.Refresh(now)

	return nil
}
