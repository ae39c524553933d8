package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	invoicehttp "github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice/http"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/observability"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	InvoiceHandler *invoicehttp.Handler
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with service defaults.
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
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	hash := ""
	if params.Config != nil {
		hash = params.Config.APITokenHash
	}
	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(hash, params.Logger))
		if params.InvoiceHandler != nil {
			params.InvoiceHandler.MountRoutes(r)
		}
		if params.JobHandler != nil {
			r.Route("/queue", params.JobHandler.MountRoutes)
		}
	})

	return r
}
