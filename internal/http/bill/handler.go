package bill

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
	"github.com/MrJamesThe3rd/budgetwise/internal/http/auth"
	"github.com/MrJamesThe3rd/budgetwise/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetwise/internal/importer"
)

const maxUploadSize = 10 << 20

type Handler struct {
	svc      *bill.Service
	importer importer.Importer
}

func NewHandler(svc *bill.Service, imp importer.Importer) *Handler {
	return &Handler{svc: svc, importer: imp}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/import", h.importCSV)
	r.Post("/refresh", h.refresh)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/pay", h.pay)
}

type createBillRequest struct {
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	DueDate   string          `json:"due_date"`
	Recurring string          `json:"recurring"`
}

func (req createBillRequest) draft() (bill.Draft, error) {
	due, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return bill.Draft{}, err
	}

	recurrence, err := parseRecurrence(req.Recurring)
	if err != nil {
		return bill.Draft{}, err
	}

	return bill.Draft{
		Name:       req.Name,
		Amount:     req.Amount,
		Category:   req.Category,
		DueDate:    due,
		Recurrence: recurrence,
	}, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	draft, err := req.draft()
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	b, err := h.svc.Create(r.Context(), draft)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, respond.ToBill(b))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := bill.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := bill.Status(strings.ToLower(s))
		if !status.Valid() {
			respond.Error(w, http.StatusBadRequest, "invalid status filter")
			return
		}

		filter.Status = &status
	}

	if s := r.URL.Query().Get("category"); s != "" {
		filter.Category = new(s)
	}

	bills, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, respond.ToBills(bills))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := billID(w, r)
	if !ok {
		return
	}

	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, respond.ToBill(b))
}

type updateBillRequest struct {
	Name      *string          `json:"name,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Category  *string          `json:"category,omitempty"`
	DueDate   *string          `json:"due_date,omitempty"`
	Recurring *string          `json:"recurring,omitempty"`
}

func (req updateBillRequest) patch() (bill.Patch, error) {
	p := bill.Patch{
		Name:     req.Name,
		Amount:   req.Amount,
		Category: req.Category,
	}

	if req.DueDate != nil {
		due, err := parseDate("due_date", *req.DueDate)
		if err != nil {
			return bill.Patch{}, err
		}

		p.DueDate = &due
	}

	if req.Recurring != nil {
		recurrence, err := parseRecurrence(*req.Recurring)
		if err != nil {
			return bill.Patch{}, err
		}

		p.Recurrence = &recurrence
	}

	return p, nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := billID(w, r)
	if !ok {
		return
	}

	var req updateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	patch, err := req.patch()
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	b, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, respond.ToBill(b))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := billID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Err(w, r, err)
		return
	}

	slog.Info("bill deleted", "bill_id", id, "subject", auth.Subject(r.Context()))

	w.WriteHeader(http.StatusNoContent)
}

type payBillRequest struct {
	PaidDate *string `json:"paid_date,omitempty"`
}

type payBillResponse struct {
	PaidBill *respond.Bill   `json:"paid_bill,omitempty"`
	Payment  respond.Payment `json:"payment"`
	NextBill *respond.Bill   `json:"next_bill,omitempty"`
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	id, ok := billID(w, r)
	if !ok {
		return
	}

	// The body is optional: an empty POST pays today.
	var req payBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var paidDate *time.Time

	if req.PaidDate != nil && *req.PaidDate != "" {
		d, err := parseDate("paid_date", *req.PaidDate)
		if err != nil {
			respond.Err(w, r, err)
			return
		}

		paidDate = &d
	}

	s, err := h.svc.Pay(r.Context(), id, paidDate)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	slog.Info("bill paid", "bill_id", id, "payment_id", s.Payment.ID, "subject", auth.Subject(r.Context()))

	resp := payBillResponse{Payment: respond.ToPayment(s.Payment)}

	if s.Rolled() {
		resp.NextBill = new(respond.ToBill(s.Successor))
	} else {
		resp.PaidBill = new(respond.ToBill(s.Paid))
	}

	respond.JSON(w, http.StatusOK, resp)
}

type importResponse struct {
	Imported int            `json:"imported"`
	Bills    []respond.Bill `json:"bills"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	drafts, err := h.importer.Parse(file)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	bills, err := h.svc.Import(r.Context(), drafts)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, importResponse{Imported: len(bills), Bills: respond.ToBills(bills)})
}

type refreshResponse struct {
	Changed int `json:"changed"`
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	changed, err := h.svc.Refresh(r.Context())
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, refreshResponse{Changed: changed})
}

func billID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}

	return id, true
}

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, &bill.ValidationError{Field: field, Reason: "is required"}
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, &bill.ValidationError{Field: field, Reason: "must be YYYY-MM-DD"}
	}

	return t, nil
}

func parseRecurrence(s string) (bill.Recurrence, error) {
	r, err := bill.ParseRecurrence(s)
	if err != nil {
		return "", &bill.ValidationError{Field: "recurring", Reason: err.Error()}
	}

	return r, nil
}
