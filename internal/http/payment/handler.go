package payment

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
	"github.com/MrJamesThe3rd/budgetwise/internal/export"
	"github.com/MrJamesThe3rd/budgetwise/internal/http/respond"
)

type Handler struct {
	svc *bill.Service
}

func NewHandler(svc *bill.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/export", h.export)
}

type summaryResponse struct {
	Count   int             `json:"count"`
	Total   decimal.Decimal `json:"total"`
	Late    int             `json:"late"`
	Average decimal.Decimal `json:"average"`
}

type listResponse struct {
	Payments []respond.Payment `json:"payments"`
	Summary  summaryResponse   `json:"summary"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0

	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			respond.Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}

		limit = n
	}

	history, err := h.svc.PaymentHistory(r.Context(), limit)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, listResponse{
		Payments: respond.ToPayments(history.Payments),
		Summary: summaryResponse{
			Count:   history.Summary.Count,
			Total:   history.Summary.Total,
			Late:    history.Summary.Late,
			Average: history.Summary.Average,
		},
	})
}

// export streams the payment log oldest first, optionally bounded by ?from and ?to.
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var from, to time.Time

	for name, dst := range map[string]*time.Time{"from": &from, "to": &to} {
		v := q.Get(name)
		if v == "" {
			continue
		}

		if *dst, err = time.Parse(time.DateOnly, v); err != nil {
			respond.Error(w, http.StatusBadRequest, name+" must be YYYY-MM-DD")
			return
		}
	}

	history, err := h.svc.PaymentHistory(r.Context(), 0)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	payments := export.Between(history.Payments, from, to)
	slices.Reverse(payments)

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", format.Filename(time.Now())))

	if err := export.Write(w, format, payments); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}
