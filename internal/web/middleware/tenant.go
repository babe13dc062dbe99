package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/frota/internal/core"
	"github.com/JonMunkholm/frota/internal/tenant"
)

// TenantScope reads the active company from the header, falling back to
// the query parameter, and stores it in the request context. Requests
// without a company pass through unscoped; a malformed or nil company id
// is rejected with 400.
func TenantScope(header, queryParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(header))
			if raw == "" && queryParam != "" {
				raw = strings.TrimSpace(r.URL.Query().Get(queryParam))
			}
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := tenant.ParseCompanyID(raw)
			if err != nil {
				slog.Warn("tenant: invalid company id",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
				msg := core.MapError(err)
				http.Error(w, msg.Message+" ("+msg.Code+")", http.StatusBadRequest)
				return
			}

			next.ServeHTTP(w, r.WithContext(tenant.WithCompanyID(r.Context(), id)))
		})
	}
}
