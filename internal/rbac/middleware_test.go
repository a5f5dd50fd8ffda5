package rbac_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/rbac"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
	_ "github.com/programmistyigit/blessing-antigravity-sub002/testing"
)

type stubLoader struct {
	identity rbac.Identity
	err      error
}

func (s stubLoader) LoadIdentity(ctx context.Context, userID int64) (rbac.Identity, error) {
	if s.err != nil {
		return rbac.Identity{}, s.err
	}
	id := s.identity
	id.UserID = userID
	return id, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func doRequest(t *testing.T, mw func(http.Handler) http.Handler, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/sections", nil)
	if userID != 0 {
		req = req.WithContext(shared.ContextWithUserID(req.Context(), userID))
	}
	res := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(res, req)
	return res
}

func TestRequireAnyWithoutIdentityIsUnauthorized(t *testing.T) {
	mw := rbac.Middleware{Loader: stubLoader{}}
	res := doRequest(t, mw.RequireAny(shared.PermSectionView), 0)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRequireAnyInsufficientIsForbidden(t *testing.T) {
	mw := rbac.Middleware{Loader: stubLoader{identity: rbac.Identity{RolePermissions: []string{shared.PermAttendanceCreate}}}}
	res := doRequest(t, mw.RequireAny(shared.PermSectionView), 7)
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestRequireAnyGrantedProceeds(t *testing.T) {
	mw := rbac.Middleware{Loader: stubLoader{identity: rbac.Identity{RolePermissions: []string{shared.PermSectionView}}}}
	res := doRequest(t, mw.RequireAny(shared.PermSectionManage, shared.PermSectionView), 7)
	require.Equal(t, http.StatusNoContent, res.Code)
}

func TestRequireAllNeedsEveryPermission(t *testing.T) {
	mw := rbac.Middleware{Loader: stubLoader{identity: rbac.Identity{RolePermissions: []string{shared.PermSectionView}}}}
	res := doRequest(t, mw.RequireAll(shared.PermSectionView, shared.PermSectionManage), 7)
	require.Equal(t, http.StatusForbidden, res.Code)

	mw = rbac.Middleware{Loader: stubLoader{identity: rbac.Identity{RolePermissions: []string{shared.PermSystemAll}}}}
	res = doRequest(t, mw.RequireAll(shared.PermSectionView, shared.PermSectionManage), 7)
	require.Equal(t, http.StatusNoContent, res.Code)
}

func TestLoadFailureIsNotForbidden(t *testing.T) {
	mw := rbac.Middleware{Loader: stubLoader{err: errors.New("connection timeout")}}
	res := doRequest(t, mw.RequireAny(shared.PermSectionView), 7)
	require.Equal(t, http.StatusInternalServerError, res.Code)
}

func TestEmptyRequirementPassesThrough(t *testing.T) {
	mw := rbac.Middleware{Loader: stubLoader{}}
	res := doRequest(t, mw.RequireAny(), 0)
	require.Equal(t, http.StatusNoContent, res.Code)
}
