package auth

import (
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/httpx"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// Authenticator resolves the bearer token into an authenticated user and
// stores the user ID in the request context. Every token failure answers
// 401; a denylist lookup failure answers 500 so an outage is never read as
// a revoked token.
type Authenticator struct {
	Tokens   *TokenManager
	Denylist *Denylist
	Repo     Repository
	Logger   *slog.Logger
}

// Middleware returns the chi-compatible authentication middleware.
func (a Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		claims, err := a.Tokens.Parse(tokenString)
		if err != nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		revoked, err := a.Denylist.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			if a.Logger != nil {
				a.Logger.Error("auth denylist lookup", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		if revoked {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		user, err := a.Repo.FindByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if a.Logger != nil {
				a.Logger.Error("auth resolve user", slog.Int64("user_id", userID), slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		if !user.IsActive {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		ctx := shared.ContextWithUserID(r.Context(), user.ID)
		ctx = shared.ContextWithTokenID(ctx, claims.ID)
		ctx = ContextWithClaims(ctx, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
