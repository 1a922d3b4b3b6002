package ledger

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

// Handler exposes the chart of accounts and journal API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, validate: validate}
}

// MountRoutes wires the ledger endpoints under the supplied router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ledger/accounts", h.ListAccounts)
	r.Post("/ledger/accounts", h.CreateAccount)
	r.Get("/ledger/sub-accounts", h.ListSubAccounts)
	r.Post("/ledger/sub-accounts", h.CreateSubAccount)
	r.Get("/ledger/roles", h.Roles)
	r.Get("/ledger/transactions", h.ListTransactions)
	r.Post("/ledger/entries", h.PostEntry)
}

type createAccountRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	Type string `json:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
}

type createSubAccountRequest struct {
	AccountID int64  `json:"account_id" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required,max=200"`
}

type postEntryRequest struct {
	Date            time.Time       `json:"date"`
	SubDebitID      int64           `json:"sub_debit_id" validate:"required,gt=0"`
	SubCreditID     int64           `json:"sub_credit_id" validate:"required,gt=0"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	Particulars     string          `json:"particulars" validate:"required,max=500"`
	PaymentMethod   string          `json:"payment_method" validate:"omitempty,oneof=cash bank card cheque"`
	ReferenceNumber string          `json:"reference_number" validate:"omitempty,max=100"`
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	account, err := h.service.CreateAccount(r.Context(), companyID, req.Name, AccountType(req.Type))
	if err != nil {
		h.logger.Error("create account failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) CreateSubAccount(w http.ResponseWriter, r *http.Request) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createSubAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	sub, err := h.service.CreateSubAccount(r.Context(), companyID, req.AccountID, req.Name)
	if err != nil {
		h.logger.Error("create sub-account failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sub)
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	accounts, err := h.service.ListAccounts(r.Context(), companyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, accounts)
}

func (h *Handler) ListSubAccounts(w http.ResponseWriter, r *http.Request) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	subs, err := h.service.ListSubAccounts(r.Context(), companyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, subs)
}

func (h *Handler) Roles(w http.ResponseWriter, r *http.Request) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	roles, err := h.service.RoleMap(r.Context(), companyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, roles)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filter := TransactionFilter{CompanyID: companyID}
	q := r.URL.Query()
	filter.Type = q.Get("type")
	if raw := q.Get("related_id"); raw != "" {
		filter.RelatedID, _ = strconv.ParseInt(raw, 10, 64)
	}
	if raw := q.Get("from"); raw != "" {
		if filter.From, err = time.Parse(time.DateOnly, raw); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", "from must be YYYY-MM-DD")
			return
		}
	}
	if raw := q.Get("to"); raw != "" {
		if filter.To, err = time.Parse(time.DateOnly, raw); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", "to must be YYYY-MM-DD")
			return
		}
	}
	if raw := q.Get("limit"); raw != "" {
		filter.Limit, _ = strconv.Atoi(raw)
	}
	txns, err := h.service.ListTransactions(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, txns)
}

func (h *Handler) PostEntry(w http.ResponseWriter, r *http.Request) {
	companyID, err := shared.CompanyFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req postEntryRequest
	if !h.decode(w, r, &req) {
		return
	}
	txn, err := h.service.PostManual(r.Context(), PostingInput{
		Date:            req.Date,
		SubDebitID:      req.SubDebitID,
		SubCreditID:     req.SubCreditID,
		Amount:          req.Amount,
		Particulars:     req.Particulars,
		PaymentMethod:   req.PaymentMethod,
		ReferenceNumber: req.ReferenceNumber,
		CompanyID:       companyID,
	})
	if err != nil {
		h.logger.Error("manual entry failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, txn)
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
