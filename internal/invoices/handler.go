package invoices

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/folio-erp/folio-erp/internal/platform/httpx"
	"github.com/folio-erp/folio-erp/internal/shared"
)

// Handler exposes the invoice API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, validate: validate}
}

func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, h.service.CreateSale, "create sale failed")
}

func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, h.service.CreatePurchase, "create purchase failed")
}

func (h *Handler) CreateChallan(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, h.service.CreateChallan, "create challan failed")
}

func (h *Handler) CreateSaleReturn(w http.ResponseWriter, r *http.Request) {
	h.createReturn(w, r, h.service.CreateSaleReturn, "create sale return failed")
}

func (h *Handler) CreatePurchaseReturn(w http.ResponseWriter, r *http.Request) {
	h.createReturn(w, r, h.service.CreatePurchaseReturn, "create purchase return failed")
}

func (h *Handler) ConvertChallan(w http.ResponseWriter, r *http.Request) {
	companyID, id, ok := h.tenantAndID(w, r)
	if !ok {
		return
	}
	var req convertChallanRequest
	if !h.decode(w, r, &req) {
		return
	}
	inv, err := h.service.ConvertChallan(r.Context(), companyID, id, req.PaidAmount, req.PaymentMethod)
	if err != nil {
		h.logger.Error("convert challan failed", "error", err, "challan_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	companyID, id, ok := h.tenantAndID(w, r)
	if !ok {
		return
	}
	var req paymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	txn, err := h.service.RecordPayment(r.Context(), companyID, id, req.Amount, req.PaymentMethod, req.ReferenceNumber)
	if err != nil {
		h.logger.Error("record payment failed", "error", err, "invoice_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, txn)
}

func (h *Handler) RecordDiscount(w http.ResponseWriter, r *http.Request) {
	companyID, id, ok := h.tenantAndID(w, r)
	if !ok {
		return
	}
	var req discountRequest
	if !h.decode(w, r, &req) {
		return
	}
	txn, err := h.service.RecordDiscount(r.Context(), companyID, id, req.Amount)
	if err != nil {
		h.logger.Error("record discount failed", "error", err, "invoice_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, txn)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	companyID, id, ok := h.tenantAndID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.Get(r.Context(), companyID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	kind := InvoiceKind(r.URL.Query().Get("kind"))
	invoices, err := h.service.List(r.Context(), companyID, kind)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	companyID, id, ok := h.tenantAndID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), companyID, id); err != nil {
		h.logger.Error("delete invoice failed", "error", err, "invoice_id", id)
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, fn func(context.Context, CreateInput) (Invoice, error), logMsg string) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createInvoiceRequest
	if !h.decode(w, r, &req) {
		return
	}
	inv, err := fn(r.Context(), req.toInput(companyID))
	if err != nil {
		h.logger.Error(logMsg, "error", err, "party_id", req.PartyID)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) createReturn(w http.ResponseWriter, r *http.Request, fn func(context.Context, ReturnInput) (Invoice, error), logMsg string) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createReturnRequest
	if !h.decode(w, r, &req) {
		return
	}
	inv, err := fn(r.Context(), req.toInput(companyID))
	if err != nil {
		h.logger.Error(logMsg, "error", err, "parent_invoice_id", req.ParentInvoiceID)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Request", err.Error())
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) tenantAndID(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return 0, 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "invoice id must be numeric")
		return 0, 0, false
	}
	return companyID, id, true
}
