package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/auth"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
	_ "github.com/programmistyigit/blessing-antigravity-sub002/testing"
)

type stubRepo struct {
	users map[int64]*auth.User
}

func (s *stubRepo) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func newAuthenticator(t *testing.T, repo auth.Repository) (auth.Authenticator, *auth.TokenManager, *auth.Denylist) {
	t.Helper()
	mr := miniredis.RunT(t)
	denylist := auth.NewDenylist(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return auth.Authenticator{Tokens: tokens, Denylist: denylist, Repo: repo}, tokens, denylist
}

func protectedProbe(gotUser *int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := shared.UserIDFromContext(r.Context()); ok {
			*gotUser = id
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticatorAcceptsValidToken(t *testing.T) {
	repo := &stubRepo{users: map[int64]*auth.User{7: {ID: 7, Username: "director", IsActive: true}}}
	authn, tokens, _ := newAuthenticator(t, repo)

	signed, _, err := tokens.Issue(7)
	require.NoError(t, err)

	var gotUser int64
	req := httptest.NewRequest(http.MethodGet, "/sections", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	res := httptest.NewRecorder()
	authn.Middleware(protectedProbe(&gotUser)).ServeHTTP(res, req)

	require.Equal(t, http.StatusNoContent, res.Code)
	require.Equal(t, int64(7), gotUser)
}

func TestAuthenticatorRejectsMissingHeader(t *testing.T) {
	authn, _, _ := newAuthenticator(t, &stubRepo{})

	var gotUser int64
	req := httptest.NewRequest(http.MethodGet, "/sections", nil)
	res := httptest.NewRecorder()
	authn.Middleware(protectedProbe(&gotUser)).ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Zero(t, gotUser)
}

func TestAuthenticatorRejectsRevokedToken(t *testing.T) {
	repo := &stubRepo{users: map[int64]*auth.User{7: {ID: 7, Username: "director", IsActive: true}}}
	authn, tokens, denylist := newAuthenticator(t, repo)

	signed, claims, err := tokens.Issue(7)
	require.NoError(t, err)
	require.NoError(t, denylist.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))

	var gotUser int64
	req := httptest.NewRequest(http.MethodGet, "/sections", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	res := httptest.NewRecorder()
	authn.Middleware(protectedProbe(&gotUser)).ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestAuthenticatorRejectsInactiveUser(t *testing.T) {
	repo := &stubRepo{users: map[int64]*auth.User{8: {ID: 8, Username: "departed", IsActive: false}}}
	authn, tokens, _ := newAuthenticator(t, repo)

	signed, _, err := tokens.Issue(8)
	require.NoError(t, err)

	var gotUser int64
	req := httptest.NewRequest(http.MethodGet, "/sections", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	res := httptest.NewRecorder()
	authn.Middleware(protectedProbe(&gotUser)).ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
}
