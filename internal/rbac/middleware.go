package rbac

import (
	"context"
	"net/http"

	"log/slog"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/httpx"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// IdentityLoader loads the effective identity for a user.
type IdentityLoader interface {
	LoadIdentity(ctx context.Context, userID int64) (Identity, error)
}

// Middleware wires authorization checks into the HTTP request path.
//
// Per request: no authenticated user in context means 401; a loaded
// identity failing the check means 403; a failed identity load (timeout,
// database error) means 500. A lookup failure is never reported as a
// denied permission.
type Middleware struct {
	Loader IdentityLoader
	Logger *slog.Logger
}

// RequireAny lets the request through when the user holds at least one of
// the required permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return m.require(perms, HasAnyPermission)
}

// RequireAll lets the request through only when the user holds every one of
// the required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return m.require(perms, HasAllPermissions)
}

func (m Middleware) require(perms []string, check func(Identity, ...string) bool) func(http.Handler) http.Handler {
	normalized := shared.NormalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(normalized) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			userID, ok := shared.UserIDFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			identity, err := m.Loader.LoadIdentity(r.Context(), userID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac load identity", slog.Int64("user_id", userID), slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if check(identity, normalized...) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("rbac denied", slog.Int64("user_id", userID), slog.Any("required", normalized), slog.String("path", r.URL.Path))
			}
			httpx.RespondError(w, httpx.ErrForbidden)
		})
	}
}
