package models

import (
	"strings"
	"testing"

	"github.com/storefront-next/internal/constants"

	"golang.org/x/crypto/bcrypt"
)

func TestSqliteDSNAddsBusyTimeout(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "", want: "storefront.db?_pragma=busy_timeout(5000)"},
		{in: "shop.db", want: "shop.db?_pragma=busy_timeout(5000)"},
		{in: "file:x?mode=memory", want: "file:x?mode=memory&_pragma=busy_timeout(5000)"},
		{in: "shop.db?_pragma=busy_timeout(100)", want: "shop.db?_pragma=busy_timeout(100)"},
	}
	for _, tc := range cases {
		if got := sqliteDSN(tc.in); got != tc.want {
			t.Fatalf("sqliteDSN(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInitDBRejectsUnknownDriver(t *testing.T) {
	if err := InitDB("mysql", "x", DBPoolConfig{}, false); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported driver error, got %v", err)
	}
}

func TestInitDBMigrateAndDefaultAdmin(t *testing.T) {
	previous := DB
	t.Cleanup(func() { DB = previous })

	if err := InitDB("sqlite", "file:models_init_db?mode=memory&cache=shared", DBPoolConfig{MaxOpenConns: 1}, false); err != nil {
		t.Fatalf("init db failed: %v", err)
	}
	if err := AutoMigrate(); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	if err := InitDefaultAdmin("  ", ""); err != nil {
		t.Fatalf("init default admin failed: %v", err)
	}
	var admin Admin
	if err := DB.First(&admin).Error; err != nil {
		t.Fatalf("load admin failed: %v", err)
	}
	if admin.Username != defaultAdminUsername || admin.Role != constants.RoleOrderManager {
		t.Fatalf("unexpected admin: %+v", admin)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(defaultAdminPassword)) != nil {
		t.Fatalf("default password hash mismatch")
	}

	if err := InitDefaultAdmin("second", "secret-pass"); err != nil {
		t.Fatalf("second init failed: %v", err)
	}
	var count int64
	DB.Model(&Admin{}).Count(&count)
	if count != 1 {
		t.Fatalf("admin should only be created once, count=%d", count)
	}
}
