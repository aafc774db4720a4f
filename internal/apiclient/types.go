package apiclient

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
)

// BillResponse is a bill as served by the REST API. Dates are YYYY-MM-DD.
type BillResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	DueDate   string          `json:"due_date"`
	Recurring string          `json:"recurring"`
	Status    string          `json:"status"`
	PaidDate  *string         `json:"paid_date"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at"`
}

// PaymentResponse is a payment record as served by the REST API.
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	BillID          uuid.UUID       `json:"bill_id"`
	BillName        string          `json:"bill_name"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	PaidDate        string          `json:"paid_date"`
	OriginalDueDate string          `json:"original_due_date"`
	WasPaidLate     bool            `json:"was_paid_late"`
	CreatedAt       time.Time       `json:"created_at"`
}

type PayResponse struct {
	PaidBill *BillResponse   `json:"paid_bill,omitempty"`
	Payment  PaymentResponse `json:"payment"`
	NextBill *BillResponse   `json:"next_bill,omitempty"`
}

type SummaryResponse struct {
	Count   int             `json:"count"`
	Total   decimal.Decimal `json:"total"`
	Late    int             `json:"late"`
	Average decimal.Decimal `json:"average"`
}

type PaymentsResponse struct {
	Payments []PaymentResponse `json:"payments"`
	Summary  SummaryResponse   `json:"summary"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type createRequest struct {
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	DueDate   string          `json:"due_date"`
	Recurring string          `json:"recurring"`
}

type patchRequest struct {
	Name      *string          `json:"name,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Category  *string          `json:"category,omitempty"`
	DueDate   *string          `json:"due_date,omitempty"`
	Recurring *string          `json:"recurring,omitempty"`
}

type payRequest struct {
	PaidDate *string `json:"paid_date,omitempty"`
}

func (r BillResponse) toBill() (*bill.Bill, error) {
	due, err := bill.ParseDate(r.DueDate)
	if err != nil {
		return nil, fmt.Errorf("bill %s: %w", r.ID, err)
	}

	b := &bill.Bill{
		ID:         r.ID,
		Name:       r.Name,
		Amount:     r.Amount,
		Category:   r.Category,
		DueDate:    due,
		Recurrence: bill.Recurrence(r.Recurring),
		Status:     bill.Status(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}

	if r.PaidDate != nil {
		paid, err := bill.ParseDate(*r.PaidDate)
		if err != nil {
			return nil, fmt.Errorf("bill %s: %w", r.ID, err)
		}

		b.PaidDate = &paid
	}

	return b, nil
}

func (r PaymentResponse) toPayment() (*bill.Payment, error) {
	paid, err := bill.ParseDate(r.PaidDate)
	if err != nil {
		return nil, fmt.Errorf("payment %s: %w", r.ID, err)
	}

	due, err := bill.ParseDate(r.OriginalDueDate)
	if err != nil {
		return nil, fmt.Errorf("payment %s: %w", r.ID, err)
	}

	return &bill.Payment{
		ID:              r.ID,
		BillID:          r.BillID,
		BillName:        r.BillName,
		Amount:          r.Amount,
		Category:        r.Category,
		PaidDate:        paid,
		OriginalDueDate: due,
		CreatedAt:       r.CreatedAt,
	}, nil
}

func dateString(t time.Time) string {
	return t.Format(time.DateOnly)
}
