package bill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetwise/internal/metrics"
)

// DashboardWindow is how many days ahead the dashboard looks for upcoming bills.
const DashboardWindow = 7

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=bill
type Repository interface {
	CreateBill(ctx context.Context, b *Bill) error
	CreateBills(ctx context.Context, bills []*Bill) error
	GetBill(ctx context.Context, id uuid.UUID) (*Bill, error)
	ListBills(ctx context.Context, filter ListFilter) ([]*Bill, error)
	UpdateBill(ctx context.Context, b *Bill) error
	DeleteBill(ctx context.Context, id uuid.UUID) error

	// PayBill settles the bill atomically: the payment, the retirement and the
	// successor (or the in-place paid mark) commit together or not at all.
	PayBill(ctx context.Context, id uuid.UUID, paidDate time.Time) (*Settlement, error)
	ListPayments(ctx context.Context) ([]*Payment, error)

	// RefreshStatuses recomputes upcoming/overdue for unpaid bills and returns how many changed.
	RefreshStatuses(ctx context.Context, today time.Time) (int, error)
}

// Categorizer suggests a category for a bill name. An empty result means no suggestion.
type Categorizer interface {
	Suggest(ctx context.Context, name string) (string, error)
}

type ListFilter struct {
	Status   *Status
	Category *string
}

type Service struct {
	repo       Repository
	now        func() time.Time
	metrics    *metrics.Metrics
	categories Categorizer
}

type Option func(*Service)

// WithClock replaces time.Now as the source of "now".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithCategorizer fills in missing categories on created and imported bills.
func WithCategorizer(c Categorizer) Option {
	return func(s *Service) { s.categories = c }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Create(ctx context.Context, d Draft) (*Bill, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	b := NewBill(uuid.Nil, s.categorize(ctx, d), s.now())
	if err := s.repo.CreateBill(ctx, b); err != nil {
		return nil, err
	}

	s.metrics.BillCreated(string(b.Recurrence))
	slog.Info("bill created", "id", b.ID, "name", b.Name, "status", b.Status)

	return b, nil
}

// Import validates every draft before creating any, so a bad row aborts the whole batch.
func (s *Service) Import(ctx context.Context, drafts []Draft) ([]*Bill, error) {
	if len(drafts) == 0 {
		return nil, nil
	}

	now := s.now()
	bills := make([]*Bill, len(drafts))

	for i, d := range drafts {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		bills[i] = NewBill(uuid.New(), s.categorize(ctx, d), now)
	}

	if err := s.repo.CreateBills(ctx, bills); err != nil {
		return nil, fmt.Errorf("create bills: %w", err)
	}

	s.metrics.BillsImported(len(bills))

	return bills, nil
}

// categorize never fails the caller; a broken lookup only leaves the category empty.
func (s *Service) categorize(ctx context.Context, d Draft) Draft {
	if s.categories == nil || strings.TrimSpace(d.Category) != "" {
		return d
	}

	category, err := s.categories.Suggest(ctx, d.Name)
	if err != nil {
		slog.Warn("category suggestion failed", "name", d.Name, "error", err)
		return d
	}

	d.Category = category

	return d
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Bill, error) {
	return s.repo.GetBill(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Bill, error) {
	return s.repo.ListBills(ctx, filter)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, p Patch) (*Bill, error) {
	b, err := s.repo.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Empty() {
		return b, nil
	}

	if err := b.Apply(p, s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateBill(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteBill(ctx, id); err != nil {
		return err
	}

	s.metrics.BillDeleted()

	return nil
}

// Pay records a payment for the bill. A nil paidDate means today.
func (s *Service) Pay(ctx context.Context, id uuid.UUID, paidDate *time.Time) (*Settlement, error) {
	date := s.now()
	if paidDate != nil {
		date = *paidDate
	}

	settlement, err := s.repo.PayBill(ctx, id, DateOf(date))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			s.metrics.PaymentRejected("not_found")
		case errors.Is(err, ErrAlreadyPaid):
			s.metrics.PaymentRejected("already_paid")
		}

		return nil, err
	}

	recurring := RecurOneTime
	if settlement.Rolled() {
		recurring = settlement.Retired.Recurrence
	}

	s.metrics.PaymentRecorded(string(recurring), settlement.Payment.Late(), settlement.Rolled())

	attrs := []any{"bill_id", id, "payment_id", settlement.Payment.ID, "paid_date", settlement.Payment.PaidDate.Format(time.DateOnly)}
	if settlement.Rolled() {
		attrs = append(attrs, "next_bill_id", settlement.Successor.ID, "next_due", settlement.Successor.DueDate.Format(time.DateOnly))
	}

	slog.Info("bill paid", attrs...)

	return settlement, nil
}

// History is the payment log, most recent first, with a summary over all of it.
type History struct {
	Payments []*Payment
	Summary  PaymentSummary
}

// PaymentHistory returns at most limit payments (all when limit <= 0); the summary always covers the full log.
func (s *Service) PaymentHistory(ctx context.Context, limit int) (*History, error) {
	payments, err := s.repo.ListPayments(ctx)
	if err != nil {
		return nil, err
	}

	h := &History{Summary: SummarizePayments(payments), Payments: payments}
	if limit > 0 && len(payments) > limit {
		h.Payments = payments[:limit]
	}

	return h, nil
}

func (s *Service) Dashboard(ctx context.Context) (Overview, error) {
	bills, err := s.repo.ListBills(ctx, ListFilter{})
	if err != nil {
		return Overview{}, err
	}

	return Summarize(bills, s.now(), DashboardWindow), nil
}

// Refresh runs one status sweep.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	changed, err := s.repo.RefreshStatuses(ctx, DateOf(s.now()))
	if err != nil {
		return 0, fmt.Errorf("refresh statuses: %w", err)
	}

	s.metrics.StatusSweep(changed)

	if changed > 0 {
		slog.Info("bill statuses refreshed", "changed", changed)
	}

	return changed, nil
}

// RunStatusSweeper refreshes statuses immediately and then every interval until ctx is done.
func (s *Service) RunStatusSweeper(ctx context.Context, interval time.Duration) {
	if _, err := s.Refresh(ctx); err != nil {
		slog.Error("status sweep failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				slog.Error("status sweep failed", "error", err)
			}
		}
	}
}
