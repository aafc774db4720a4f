package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/budgetwise/internal/http/auth"
	"github.com/MrJamesThe3rd/budgetwise/internal/http/bill"
	"github.com/MrJamesThe3rd/budgetwise/internal/http/dashboard"
	"github.com/MrJamesThe3rd/budgetwise/internal/http/matching"
	"github.com/MrJamesThe3rd/budgetwise/internal/http/payment"
	"github.com/MrJamesThe3rd/budgetwise/internal/http/respond"
)

// Options configures the cross-cutting parts of the router. A nil Verifier
// disables authentication; a nil Metrics handler skips /metrics.
type Options struct {
	Verifier       *auth.Verifier
	AllowedOrigins []string
	Metrics        http.Handler
}

func New(
	billsV1 *bill.Handler,
	paymentsV1 *payment.Handler,
	dashboardV1 *dashboard.Handler,
	categoriesV1 *matching.Handler,
	opts Options,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics)
	}

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Verifier != nil {
			r.Use(auth.Middleware(opts.Verifier))
		}

		r.Route("/bills", billsV1.Routes)
		r.Route("/payments", paymentsV1.Routes)
		r.Route("/dashboard", dashboardV1.Routes)
		r.Route("/categories", categoriesV1.Routes)
	})

	return router
}
