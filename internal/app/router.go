package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/atithi-pms/atithi/internal/accounting/journals"
	"github.com/atithi-pms/atithi/internal/accounting/ledgers"
	"github.com/atithi-pms/atithi/internal/accounting/posting"
	"github.com/atithi-pms/atithi/internal/accounting/reports"
	"github.com/atithi-pms/atithi/internal/billing"
	"github.com/atithi-pms/atithi/internal/checkout"
	"github.com/atithi-pms/atithi/internal/observability"
	"github.com/atithi-pms/atithi/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	BillingHandler  *billing.Handler
	CheckoutHandler *checkout.Handler
	JournalHandler  *journals.Handler
	LedgerHandler   *ledgers.Handler
	PostingHandler  *posting.Handler
	ReportHandler   *reports.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/billing", params.BillingHandler.MountRoutes)
	r.Route("/checkout", params.CheckoutHandler.MountRoutes)
	r.Route("/accounting", func(r chi.Router) {
		r.Route("/journal-entries", params.JournalHandler.MountRoutes)
		r.Route("/ledgers", params.LedgerHandler.MountRoutes)
		r.Route("/postings", params.PostingHandler.MountRoutes)
		r.Route("/reports", params.ReportHandler.MountRoutes)
	})
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
