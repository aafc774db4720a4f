package bill_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
	billHandler "github.com/MrJamesThe3rd/budgetwise/internal/http/bill"
	"github.com/MrJamesThe3rd/budgetwise/internal/importer"
)

var today = time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC)

func newRouter(t *testing.T, setup func(m *bill.MockRepository)) http.Handler {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := bill.NewMockRepository(ctrl)

	if setup != nil {
		setup(repo)
	}

	svc := bill.NewService(repo, bill.WithClock(func() time.Time { return today }))
	h := billHandler.NewHandler(svc, importer.NewParser())

	r := chi.NewRouter()
	r.Route("/bills", h.Routes)

	return r
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Create(t *testing.T) {
	type testCase struct {
		name       string
		body       string
		setupMock  func(m *bill.MockRepository)
		wantStatus int
		wantBody   string
	}

	tests := []testCase{
		{
			name: "DefaultsToMonthly",
			body: `{"name":"Internet","amount":60,"category":"Utilities","due_date":"2025-06-25"}`,
			setupMock: func(m *bill.MockRepository) {
				m.EXPECT().
					CreateBill(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b *bill.Bill) error {
						assert.Equal(t, bill.RecurMonthly, b.Recurrence)
						b.ID = uuid.New()
						return nil
					})
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"status":"overdue"`,
		},
		{
			name:       "MissingName",
			body:       `{"amount":"60","due_date":"2025-06-25"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"name is required"}`,
		},
		{
			name:       "BadDate",
			body:       `{"name":"Rent","amount":"60","due_date":"25/06/2025"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"due_date must be YYYY-MM-DD"}`,
		},
		{
			name:       "BadRecurrence",
			body:       `{"name":"Rent","amount":"60","due_date":"2025-06-25","recurring":"daily"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `"error":"recurring unknown recurrence`,
		},
		{
			name:       "MalformedJSON",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newRouter(t, tt.setupMock)

			rec := serve(h, http.MethodPost, "/bills", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandler_Pay(t *testing.T) {
	internet := func() *bill.Bill {
		return &bill.Bill{
			ID:         uuid.New(),
			Name:       "Internet",
			Amount:     decimal.NewFromInt(60),
			Category:   "Utilities",
			DueDate:    time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC),
			Recurrence: bill.RecurMonthly,
			Status:     bill.StatusOverdue,
		}
	}

	t.Run("RecurringReturnsNextBill", func(t *testing.T) {
		b := internet()

		h := newRouter(t, func(m *bill.MockRepository) {
			m.EXPECT().
				PayBill(gomock.Any(), b.ID, today).
				DoAndReturn(func(_ context.Context, _ uuid.UUID, paid time.Time) (*bill.Settlement, error) {
					return bill.Settle(b, paid, uuid.New)
				})
		})

		rec := serve(h, http.MethodPost, "/bills/"+b.ID.String()+"/pay", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			PaidBill *map[string]any `json:"paid_bill"`
			Payment  map[string]any  `json:"payment"`
			NextBill map[string]any  `json:"next_bill"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		assert.Nil(t, resp.PaidBill)
		assert.Equal(t, "2025-06-26", resp.Payment["paid_date"])
		assert.Equal(t, "2025-06-25", resp.Payment["original_due_date"])
		assert.Equal(t, true, resp.Payment["was_paid_late"])
		assert.Equal(t, "2025-07-25", resp.NextBill["due_date"])
		assert.Equal(t, "upcoming", resp.NextBill["status"])
	})

	t.Run("ExplicitPaidDate", func(t *testing.T) {
		b := internet()

		h := newRouter(t, func(m *bill.MockRepository) {
			m.EXPECT().
				PayBill(gomock.Any(), b.ID, time.Date(2025, 6, 24, 0, 0, 0, 0, time.UTC)).
				DoAndReturn(func(_ context.Context, _ uuid.UUID, paid time.Time) (*bill.Settlement, error) {
					return bill.Settle(b, paid, uuid.New)
				})
		})

		rec := serve(h, http.MethodPost, "/bills/"+b.ID.String()+"/pay", `{"paid_date":"2025-06-24"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"was_paid_late":false`)
	})

	t.Run("AlreadyPaidIsConflict", func(t *testing.T) {
		id := uuid.New()

		h := newRouter(t, func(m *bill.MockRepository) {
			m.EXPECT().PayBill(gomock.Any(), id, gomock.Any()).Return(nil, bill.ErrAlreadyPaid)
		})

		rec := serve(h, http.MethodPost, "/bills/"+id.String()+"/pay", "")
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error":"bill already paid"}`, rec.Body.String())
	})

	t.Run("MissingIsNotFound", func(t *testing.T) {
		id := uuid.New()

		h := newRouter(t, func(m *bill.MockRepository) {
			m.EXPECT().PayBill(gomock.Any(), id, gomock.Any()).Return(nil, bill.ErrNotFound)
		})

		rec := serve(h, http.MethodPost, "/bills/"+id.String()+"/pay", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_List(t *testing.T) {
	h := newRouter(t, func(m *bill.MockRepository) {
		m.EXPECT().
			ListBills(gomock.Any(), bill.ListFilter{Status: new(bill.StatusOverdue), Category: new("Utilities")}).
			Return([]*bill.Bill{{ID: uuid.New(), Name: "Internet", Amount: decimal.NewFromInt(60), DueDate: today, Status: bill.StatusOverdue}}, nil)
	})

	rec := serve(h, http.MethodGet, "/bills?status=overdue&category=Utilities", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "60", resp[0]["amount"])

	rec = serve(newRouter(t, nil), http.MethodGet, "/bills?status=late", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Delete(t *testing.T) {
	id := uuid.New()

	h := newRouter(t, func(m *bill.MockRepository) {
		m.EXPECT().DeleteBill(gomock.Any(), id).Return(nil)
		m.EXPECT().DeleteBill(gomock.Any(), id).Return(bill.ErrNotFound)
	})

	assert.Equal(t, http.StatusNoContent, serve(h, http.MethodDelete, "/bills/"+id.String(), "").Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodDelete, "/bills/"+id.String(), "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodDelete, "/bills/not-a-uuid", "").Code)
}

func TestHandler_Update(t *testing.T) {
	id := uuid.New()
	paidOn := today

	h := newRouter(t, func(m *bill.MockRepository) {
		m.EXPECT().GetBill(gomock.Any(), id).Return(&bill.Bill{
			ID:         id,
			Name:       "Car Repair",
			Amount:     decimal.NewFromInt(300),
			DueDate:    today,
			Recurrence: bill.RecurOneTime,
			Status:     bill.StatusPaid,
			PaidDate:   &paidOn,
		}, nil)
	})

	rec := serve(h, http.MethodPatch, "/bills/"+id.String(), `{"due_date":"2025-08-01"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_Import(t *testing.T) {
	h := newRouter(t, func(m *bill.MockRepository) {
		m.EXPECT().CreateBills(gomock.Any(), gomock.Len(2)).Return(nil)
	})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "bills.csv")
	require.NoError(t, err)

	_, err = fw.Write([]byte("name,amount,category,due_date,recurring\nRent,1200,Housing,2025-07-01,monthly\nGym,30,,2025-07-03,weekly\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/bills/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"imported":2`)
}

func TestHandler_Refresh(t *testing.T) {
	h := newRouter(t, func(m *bill.MockRepository) {
		m.EXPECT().RefreshStatuses(gomock.Any(), today).Return(3, nil)
	})

	rec := serve(h, http.MethodPost, "/bills/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"changed":3}`, rec.Body.String())
}
