package router

import (
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAdminPermissionCatalogGroupsByModule(t *testing.T) {
	routes := gin.RoutesInfo{
		{Method: "POST", Path: "/api/v1/admin/login"},
		{Method: "PUT", Path: "/api/v1/admin/orders/:id"},
		{Method: "GET", Path: "/api/v1/admin/orders/:id"},
		{Method: "GET", Path: "/api/v1/admin/orders"},
		{Method: "HEAD", Path: "/api/v1/admin/orders"},
		{Method: "GET", Path: "/api/v1/admin/authz/roles"},
		{Method: "GET", Path: "/api/v1/admin/me"},
		{Method: "GET", Path: "/api/v1/orders/:id"},
	}

	groups := adminPermissionCatalog(routes)
	if len(groups) != 3 {
		t.Fatalf("want 3 modules, got %+v", groups)
	}
	if groups[0].Module != "authz" || groups[1].Module != "me" || groups[2].Module != "orders" {
		t.Fatalf("modules should be sorted: %+v", groups)
	}
	orders := groups[2].Permissions
	if len(orders) != 3 {
		t.Fatalf("orders permissions = %+v", orders)
	}
	want := []string{"GET:/admin/orders", "GET:/admin/orders/:id", "PUT:/admin/orders/:id"}
	for i, permission := range want {
		if orders[i].Permission != permission {
			t.Fatalf("orders[%d] = %s, want %s", i, orders[i].Permission, permission)
		}
	}
}

func TestPermissionModule(t *testing.T) {
	cases := map[string]string{
		"/admin/store-credit/:user_id": "store-credit",
		"/admin/authz/permissions":     "authz",
		"/admin/":                      "admin",
	}
	for object, want := range cases {
		if got := permissionModule(object); got != want {
			t.Fatalf("permissionModule(%q) = %q, want %q", object, got, want)
		}
	}
}
