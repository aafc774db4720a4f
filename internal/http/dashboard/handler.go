package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
	"github.com/MrJamesThe3rd/budgetwise/internal/http/respond"
)

type Handler struct {
	svc *bill.Service
}

func NewHandler(svc *bill.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
}

type overviewResponse struct {
	OverdueCount   int             `json:"overdue_count"`
	OverdueAmount  decimal.Decimal `json:"overdue_amount"`
	UpcomingCount  int             `json:"upcoming_count"`
	UpcomingAmount decimal.Decimal `json:"upcoming_amount"`
	UnpaidTotal    decimal.Decimal `json:"unpaid_total"`
	WindowDays     int             `json:"window_days"`
	Overdue        []respond.Bill  `json:"overdue"`
	Upcoming       []respond.Bill  `json:"upcoming"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Dashboard(r.Context())
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, overviewResponse{
		OverdueCount:   o.OverdueCount,
		OverdueAmount:  o.OverdueAmount,
		UpcomingCount:  o.UpcomingCount,
		UpcomingAmount: o.UpcomingAmount,
		UnpaidTotal:    o.UnpaidTotal,
		WindowDays:     bill.DashboardWindow,
		Overdue:        respond.ToBills(o.Overdue),
		Upcoming:       respond.ToBills(o.Upcoming),
	})
}
