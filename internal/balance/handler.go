package balance

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/folio-erp/folio-erp/internal/invoices"
	"github.com/folio-erp/folio-erp/internal/platform/httpx"
	"github.com/folio-erp/folio-erp/internal/shared"
)

// Handler exposes the due reconstruction endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes wires the balance endpoints under the supplied router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/balances/invoices/{id}", h.InvoiceDue)
	r.Get("/balances/customers/{id}", h.CustomerDue)
	r.Get("/balances/suppliers/{id}", h.SupplierDue)
}

func (h *Handler) InvoiceDue(w http.ResponseWriter, r *http.Request) {
	companyID, id, ok := h.tenantAndID(w, r)
	if !ok {
		return
	}
	due, err := h.service.ForInvoice(r.Context(), companyID, id)
	if err != nil {
		h.logger.Error("invoice due reconstruction failed", "error", err, "invoice_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, due)
}

func (h *Handler) CustomerDue(w http.ResponseWriter, r *http.Request) {
	h.partyDue(w, r, invoices.KindSale)
}

func (h *Handler) SupplierDue(w http.ResponseWriter, r *http.Request) {
	h.partyDue(w, r, invoices.KindPurchase)
}

func (h *Handler) partyDue(w http.ResponseWriter, r *http.Request, kind invoices.InvoiceKind) {
	companyID, id, ok := h.tenantAndID(w, r)
	if !ok {
		return
	}
	due, err := h.service.ForParty(r.Context(), companyID, id, kind)
	if err != nil {
		h.logger.Error("party due reconstruction failed", "error", err, "party_id", id, "kind", kind)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, due)
}

func (h *Handler) tenantAndID(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return 0, 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be numeric")
		return 0, 0, false
	}
	return companyID, id, true
}
