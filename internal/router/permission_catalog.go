package router

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"github.com/storefront-next/internal/authz"

	"github.com/gin-gonic/gin"
)

const adminRoutePrefix = "/api/v1/admin/"

type permissionEntry struct {
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

type permissionGroup struct {
	Module      string            `json:"module"`
	Permissions []permissionEntry `json:"permissions"`
}

// adminPermissionCatalog 列出需鉴权的后台路由，按模块分组，供角色配置参考
func adminPermissionCatalog(routes gin.RoutesInfo) []permissionGroup {
	byModule := map[string][]permissionEntry{}
	seen := map[string]bool{}
	for _, route := range routes {
		if route.Method == http.MethodOptions || route.Method == http.MethodHead {
			continue
		}
		if !strings.HasPrefix(route.Path, adminRoutePrefix) || route.Path == adminRoutePrefix+"login" {
			continue
		}
		object := authz.NormalizeObject(route.Path)
		action := authz.NormalizeAction(route.Method)
		permission := action + ":" + object
		if seen[permission] {
			continue
		}
		seen[permission] = true
		module := permissionModule(object)
		byModule[module] = append(byModule[module], permissionEntry{Method: action, Object: object, Permission: permission})
	}

	groups := make([]permissionGroup, 0, len(byModule))
	for module, entries := range byModule {
		slices.SortFunc(entries, func(a, b permissionEntry) int {
			return cmp.Or(cmp.Compare(a.Object, b.Object), cmp.Compare(a.Method, b.Method))
		})
		groups = append(groups, permissionGroup{Module: module, Permissions: entries})
	}
	slices.SortFunc(groups, func(a, b permissionGroup) int {
		return cmp.Compare(a.Module, b.Module)
	})
	return groups
}

// permissionModule /admin/orders/:id -> orders，/admin/me -> me
func permissionModule(object string) string {
	rest := strings.TrimPrefix(object, "/admin/")
	module, _, _ := strings.Cut(rest, "/")
	if module == "" {
		return "admin"
	}
	return module
}
