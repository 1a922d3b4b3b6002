package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/folio-erp/folio-erp/internal/platform/httpx"
	"github.com/folio-erp/folio-erp/internal/shared"
)

// Handler exposes the report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes wires the report endpoints under the supplied router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/trial-balance", h.TrialBalance)
	r.Get("/reports/balance-sheet", h.BalanceSheet)
	r.Get("/reports/income-statement", h.IncomeStatement)
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), companyID, from, to)
	if err != nil {
		h.logger.Error("trial balance failed", "error", err, "company_id", companyID)
		httpx.RespondError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="trial-balance.csv"`)
		if err := WriteTrialBalanceCSV(w, tb); err != nil {
			h.logger.Error("trial balance csv failed", "error", err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var asOf time.Time
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		asOf, err = time.Parse(time.DateOnly, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", "as_of must be YYYY-MM-DD")
			return
		}
	}
	bs, err := h.service.BalanceSheet(r.Context(), companyID, asOf)
	if err != nil {
		h.logger.Error("balance sheet failed", "error", err, "company_id", companyID)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func (h *Handler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	is, err := h.service.IncomeStatement(r.Context(), companyID, from, to)
	if err != nil {
		h.logger.Error("income statement failed", "error", err, "company_id", companyID)
		httpx.RespondError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="income-statement.csv"`)
		if err := WriteIncomeStatementCSV(w, is); err != nil {
			h.logger.Error("income statement csv failed", "error", err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, is)
}

func dateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	var from, to time.Time
	var err error
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err = time.Parse(time.DateOnly, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", "from must be YYYY-MM-DD")
			return from, to, false
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err = time.Parse(time.DateOnly, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", "to must be YYYY-MM-DD")
			return from, to, false
		}
	}
	return from, to, true
}
