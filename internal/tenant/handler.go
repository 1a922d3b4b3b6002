package tenant

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/folio-erp/folio-erp/internal/platform/httpx"
)

// Handler exposes company administration endpoints. These mount outside
// the tenant middleware; registration is how a company id comes to exist.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, validate: validate}
}

// MountRoutes wires the company endpoints under the supplied router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/companies", h.Create)
	r.Get("/companies", h.List)
	r.Get("/companies/{id}", h.Get)
	r.Post("/companies/{id}/api-keys", h.IssueKey)
}

type createCompanyRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"omitempty,max=500"`
	Phone   string `json:"phone" validate:"omitempty,max=50"`
}

type issueKeyRequest struct {
	Label string `json:"label" validate:"omitempty,max=100"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	company, rawKey, err := h.service.CreateCompany(r.Context(), req.Name, req.Address, req.Phone)
	if err != nil {
		h.logger.Error("create company failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"company": company,
		"api_key": rawKey,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "company id must be numeric")
		return
	}
	company, err := h.service.GetCompany(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.ListCompanies(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, companies)
}

func (h *Handler) IssueKey(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "company id must be numeric")
		return
	}
	var req issueKeyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Request", err.Error())
		return
	}
	label := req.Label
	if label == "" {
		label = "api"
	}
	rawKey, err := h.service.IssueAPIKey(r.Context(), id, label)
	if err != nil {
		h.logger.Error("issue api key failed", "error", err, "company_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"api_key": rawKey})
}
