package http

import (
	"context"
	"net/http"

	"github.com/traveltalk/server/internal/api/domain"
	"github.com/traveltalk/server/internal/api/service"
	"github.com/traveltalk/server/pkg/httpx"
	"github.com/traveltalk/server/pkg/slogx"
)

const adminSecretHeader = "x-admin-secret"

type ctxKey int

const ctxKeySessionUser ctxKey = iota

// sessionUserFrom retrieves the resolved session user attached by
// requireSession.
func sessionUserFrom(ctx context.Context) (domain.SessionUser, bool) {
	su, ok := ctx.Value(ctxKeySessionUser).(domain.SessionUser)
	return su, ok
}

// requireSession resolves the bearer token to a live session and attaches
// it to the request context. An unresolvable token is a 401; the caller
// never learns whether it was missing, expired, or revoked.
func requireSession(sessions *service.SessionService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			su, err := sessions.Validate(ctx, httpx.BearerToken(r))
			if err != nil {
				slogx.FromContext(ctx).Error("session validation failed", "error", err)
				httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
				return
			}
			if su == nil {
				httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ctxKeySessionUser, *su)))
		})
	}
}

// requireAdminSecret admits only requests carrying the exact shared
// secret. An empty configured secret fails closed.
func requireAdminSecret(secret string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || r.Header.Get(adminSecretHeader) != secret {
				httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAdmin admits the shared secret header or a live admin bearer
// token, checked in that order.
func requireAdmin(secret string, admin *service.AdminService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" && r.Header.Get(adminSecretHeader) == secret {
				next.ServeHTTP(w, r)
				return
			}

			valid, err := admin.Validate(r.Context(), httpx.BearerToken(r))
			if err != nil {
				slogx.FromContext(r.Context()).Error("admin token validation failed", "error", err)
				httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
				return
			}
			if !valid {
				httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
