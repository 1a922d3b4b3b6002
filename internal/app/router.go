package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/folio-erp/folio-erp/internal/balance"
	"github.com/folio-erp/folio-erp/internal/invoices"
	"github.com/folio-erp/folio-erp/internal/ledger"
	"github.com/folio-erp/folio-erp/internal/masterdata"
	"github.com/folio-erp/folio-erp/internal/observability"
	"github.com/folio-erp/folio-erp/internal/orders"
	"github.com/folio-erp/folio-erp/internal/platform/httpx"
	"github.com/folio-erp/folio-erp/internal/reports"
	"github.com/folio-erp/folio-erp/internal/stock"
	"github.com/folio-erp/folio-erp/internal/tenant"
	"github.com/folio-erp/folio-erp/jobs"
)

// RouterParams aggregates every handler the router mounts.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Metrics           *observability.Metrics
	TenantMiddleware  func(http.Handler) http.Handler
	TenantHandler     *tenant.Handler
	LedgerHandler     *ledger.Handler
	MasterdataHandler *masterdata.Handler
	StockHandler      *stock.Handler
	OrdersHandler     *orders.Handler
	InvoicesHandler   *invoices.Handler
	BalanceHandler    *balance.Handler
	ReportsHandler    *reports.Handler
	JobHandler        *jobs.Handler
}

// NewRouter assembles the HTTP surface. Company administration mounts
// outside the tenant middleware; everything else requires an API key.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: p.Logger, Config: p.Config}) {
		r.Use(mw)
	}
	if p.Metrics != nil {
		r.Use(p.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if p.JobHandler != nil {
		r.Route("/jobs", p.JobHandler.MountRoutes)
	}
	if p.TenantHandler != nil {
		p.TenantHandler.MountRoutes(r)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if p.TenantMiddleware != nil {
			api.Use(p.TenantMiddleware)
		}
		if p.LedgerHandler != nil {
			p.LedgerHandler.MountRoutes(api)
		}
		if p.MasterdataHandler != nil {
			p.MasterdataHandler.MountRoutes(api)
		}
		if p.StockHandler != nil {
			p.StockHandler.MountRoutes(api)
		}
		if p.OrdersHandler != nil {
			p.OrdersHandler.MountRoutes(api)
		}
		if p.InvoicesHandler != nil {
			p.InvoicesHandler.MountRoutes(api)
		}
		if p.BalanceHandler != nil {
			p.BalanceHandler.MountRoutes(api)
		}
		if p.ReportsHandler != nil {
			p.ReportsHandler.MountRoutes(api)
		}
	})

	return r
}
