package tenant

import (
	"log/slog"
	"net/http"

	"github.com/folio-erp/folio-erp/internal/platform/httpx"
	"github.com/folio-erp/folio-erp/internal/shared"
)

// Middleware resolves the X-API-Key header to a company id and injects it
// into the request context. Requests without a valid key are rejected
// before any handler runs.
func Middleware(logger *slog.Logger, service *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("X-API-Key")
			if raw == "" {
				httpx.Problem(w, http.StatusUnauthorized, "No Company", "X-API-Key header required")
				return
			}
			companyID, err := service.ResolveKey(r.Context(), raw)
			if err != nil {
				logger.Warn("api key rejected", "remote", r.RemoteAddr)
				httpx.RespondError(w, err)
				return
			}
			ctx := shared.ContextWithCompany(r.Context(), companyID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
