package respond

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
)

type Bill struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	DueDate   string          `json:"due_date"`
	Recurring bill.Recurrence `json:"recurring"`
	Status    bill.Status     `json:"status"`
	PaidDate  *string         `json:"paid_date"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at"`
}

type Payment struct {
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

func ToBill(b *bill.Bill) Bill {
	resp := Bill{
		ID:        b.ID,
		Name:      b.Name,
		Amount:    b.Amount,
		Category:  b.Category,
		DueDate:   b.DueDate.Format(time.DateOnly),
		Recurring: b.Recurrence,
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}

	if b.PaidDate != nil {
		resp.PaidDate = new(b.PaidDate.Format(time.DateOnly))
	}

	return resp
}

func ToBills(bills []*bill.Bill) []Bill {
	resp := make([]Bill, len(bills))
	for i, b := range bills {
		resp[i] = ToBill(b)
	}

	return resp
}

func ToPayment(p *bill.Payment) Payment {
	return Payment{
		ID:              p.ID,
		BillID:          p.BillID,
		BillName:        p.BillName,
		Amount:          p.Amount,
		Category:        p.Category,
		PaidDate:        p.PaidDate.Format(time.DateOnly),
		OriginalDueDate: p.OriginalDueDate.Format(time.DateOnly),
		WasPaidLate:     p.Late(),
		CreatedAt:       p.CreatedAt,
	}
}

func ToPayments(payments []*bill.Payment) []Payment {
	resp := make([]Payment, len(payments))
	for i, p := range payments {
		resp[i] = ToPayment(p)
	}

	return resp
}
