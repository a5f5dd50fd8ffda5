package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/httpx"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// PermissionsHandler exposes the permission catalog.
type PermissionsHandler struct {
	middleware Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(middleware Middleware) *PermissionsHandler {
	return &PermissionsHandler{middleware: middleware}
}

// MountRoutes registers the catalog routes. Any holder of a role-management
// or delegation permission can read the catalog.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.With(h.middleware.RequireAny(shared.PermRoleView, shared.PermRoleManage, shared.PermDelegate)).
		Get("/", h.listPermissions)
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, shared.AllPermissions())
}
