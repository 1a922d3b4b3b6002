package orders

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/folio-erp/folio-erp/internal/platform/httpx"
	"github.com/folio-erp/folio-erp/internal/shared"
)

// Handler exposes the order API. Fulfillment has no endpoint of its own;
// it happens inside the invoice workflows.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, validate: validate}
}

// MountRoutes wires the order endpoints under the supplied router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
	r.Post("/orders", h.Create)
	r.Post("/orders/{id}/cancel", h.Cancel)
}

type orderLineRequest struct {
	ProductID  int64           `json:"product_id" validate:"required,gt=0"`
	OrderedQty float64         `json:"ordered_qty" validate:"gt=0"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

type createOrderRequest struct {
	Kind    string             `json:"kind" validate:"required,oneof=sale purchase"`
	PartyID int64              `json:"party_id" validate:"required,gt=0"`
	Date    time.Time          `json:"date"`
	Lines   []orderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	lines := make([]OrderLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = OrderLine{ProductID: l.ProductID, OrderedQty: l.OrderedQty, UnitPrice: l.UnitPrice}
	}
	order, err := h.service.Create(r.Context(), CreateInput{
		CompanyID: companyID,
		Kind:      OrderKind(req.Kind),
		PartyID:   req.PartyID,
		Date:      req.Date,
		Lines:     lines,
	})
	if err != nil {
		h.logger.Error("create order failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	companyID, id, ok := h.tenantAndID(w, r)
	if !ok {
		return
	}
	order, err := h.service.Get(r.Context(), companyID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	orders, err := h.service.List(r.Context(), companyID, OrderKind(r.URL.Query().Get("kind")))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	companyID, id, ok := h.tenantAndID(w, r)
	if !ok {
		return
	}
	order, err := h.service.Cancel(r.Context(), companyID, id)
	if err != nil {
		h.logger.Error("cancel order failed", "error", err, "order_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) tenantAndID(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return 0, 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "order id must be numeric")
		return 0, 0, false
	}
	return companyID, id, true
}
