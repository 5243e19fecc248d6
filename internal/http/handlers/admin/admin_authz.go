package admin

import (
	"github.com/storefront-next/internal/authz"
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

type authzRoleView struct {
	Role     string         `json:"role"`
	Policies []authz.Policy `json:"policies"`
}

// ListAuthzRoles 获取角色及其策略
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "role fetch failed", err)
		return
	}
	items := make([]authzRoleView, 0, len(roles))
	for _, role := range roles {
		policies, err := h.AuthzService.GetRolePolicies(role)
		if err != nil {
			respondError(c, response.CodeInternal, "role fetch failed", err)
			return
		}
		items = append(items, authzRoleView{Role: role, Policies: policies})
	}
	response.Success(c, items)
}
