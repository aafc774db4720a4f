package payment_test

import (
	"encoding/json"
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
	"github.com/MrJamesThe3rd/budgetwise/internal/http/payment"
)

func TestHandler_List(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }

	payments := []*bill.Payment{
		{ID: uuid.New(), BillName: "Internet", Amount: decimal.NewFromInt(60), PaidDate: day(26), OriginalDueDate: day(25)},
		{ID: uuid.New(), BillName: "Water", Amount: decimal.NewFromInt(40), PaidDate: day(10), OriginalDueDate: day(12)},
		{ID: uuid.New(), BillName: "Gym", Amount: decimal.NewFromInt(30), PaidDate: day(1), OriginalDueDate: day(1)},
	}

	type testCase struct {
		name       string
		query      string
		wantStatus int
		wantLen    int
	}

	tests := []testCase{
		{name: "All", query: "", wantStatus: http.StatusOK, wantLen: 3},
		{name: "Limited", query: "?limit=2", wantStatus: http.StatusOK, wantLen: 2},
		{name: "BadLimit", query: "?limit=-1", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := bill.NewMockRepository(ctrl)

			if tt.wantStatus == http.StatusOK {
				repo.EXPECT().ListPayments(gomock.Any()).Return(payments, nil)
			}

			r := chi.NewRouter()
			r.Route("/payments", payment.NewHandler(bill.NewService(repo)).Routes)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments"+tt.query, nil))

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp struct {
				Payments []map[string]any `json:"payments"`
				Summary  struct {
					Count   int    `json:"count"`
					Total   string `json:"total"`
					Late    int    `json:"late"`
					Average string `json:"average"`
				} `json:"summary"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

			assert.Len(t, resp.Payments, tt.wantLen)
			assert.Equal(t, "Internet", resp.Payments[0]["bill_name"])
			assert.Equal(t, 3, resp.Summary.Count)
			assert.Equal(t, 1, resp.Summary.Late)
			assert.Equal(t, "130", resp.Summary.Total)
			assert.Equal(t, "43.33", resp.Summary.Average)
		})
	}
}

func TestHandler_Export(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }

	payments := []*bill.Payment{
		{ID: uuid.New(), BillName: "Internet", Category: "Utilities", Amount: decimal.NewFromInt(60), PaidDate: day(26), OriginalDueDate: day(25)},
		{ID: uuid.New(), BillName: "Water", Category: "Utilities", Amount: decimal.NewFromInt(40), PaidDate: day(10), OriginalDueDate: day(12)},
		{ID: uuid.New(), BillName: "Gym", Category: "Health", Amount: decimal.NewFromInt(30), PaidDate: day(1), OriginalDueDate: day(1)},
	}

	type testCase struct {
		name        string
		query       string
		wantStatus  int
		wantType    string
		wantContent []string
	}

	tests := []testCase{
		{
			name:       "CSVOldestFirst",
			query:      "",
			wantStatus: http.StatusOK,
			wantType:   "text/csv; charset=utf-8",
			wantContent: []string{
				"paid_date,due_date,name,category,amount,late\n" +
					"2025-06-01,2025-06-01,Gym,Health,30.00,false\n" +
					"2025-06-10,2025-06-12,Water,Utilities,40.00,false\n" +
					"2025-06-26,2025-06-25,Internet,Utilities,60.00,true\n",
			},
		},
		{
			name:        "TextWithRange",
			query:       "?format=txt&from=2025-06-05&to=2025-06-20",
			wantStatus:  http.StatusOK,
			wantType:    "text/plain; charset=utf-8",
			wantContent: []string{"* 2025-06-10 | Water | 40.00 | on time", "1 payments, total 40.00"},
		},
		{name: "BadFormat", query: "?format=pdf", wantStatus: http.StatusBadRequest},
		{name: "BadDate", query: "?from=06/01/2025", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := bill.NewMockRepository(ctrl)

			if tt.wantStatus == http.StatusOK {
				repo.EXPECT().ListPayments(gomock.Any()).Return(payments, nil)
			}

			r := chi.NewRouter()
			r.Route("/payments", payment.NewHandler(bill.NewService(repo)).Routes)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments/export"+tt.query, nil))

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				return
			}

			assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment; filename=\"payments_"))

			body := rec.Body.String()
			for _, want := range tt.wantContent {
				assert.Contains(t, body, want)
			}
		})
	}
}
