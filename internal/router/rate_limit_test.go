package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestKeyByIPAndJSONField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(`{"email":" Test@Example.com "}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"

	key := KeyByIPAndJSONField("email")(c)
	if key != "test@example.com|1.2.3.4" {
		t.Fatalf("key want test@example.com|1.2.3.4 got %s", key)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "Test@Example.com") {
		t.Fatalf("request body should be restored after reading field")
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("expected handler response body, got %s", w.Body.String())
	}
}

func TestKeyByUserOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/orders", nil)
	c.Request.RemoteAddr = "5.6.7.8:1000"

	if key := KeyByUserOrIP(c); key != "ip:5.6.7.8" {
		t.Fatalf("guest key want ip:5.6.7.8 got %s", key)
	}
	c.Set("user_id", uint(42))
	if key := KeyByUserOrIP(c); key != "user:42" {
		t.Fatalf("user key want user:42 got %s", key)
	}
}

func TestRateLimitRuleRetryAfter(t *testing.T) {
	rule := RateLimitRule{WindowSeconds: 60, MaxRequests: 3, BlockSeconds: 900}
	cases := []struct {
		name  string
		count int64
		ttl   int64
		want  int
	}{
		{name: "under_limit", count: 3, ttl: 40, want: 0},
		{name: "blocked_uses_ttl", count: 4, ttl: 900, want: 900},
		{name: "missing_ttl_falls_back_to_window", count: 5, ttl: -1, want: 60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rule.retryAfter(tc.count, tc.ttl); got != tc.want {
				t.Fatalf("retryAfter(%d, %d) = %d, want %d", tc.count, tc.ttl, got, tc.want)
			}
		})
	}
	if msg := (RateLimitRule{}).message(5); msg != "too many requests, retry in 5 seconds" {
		t.Fatalf("default message = %q", msg)
	}
}

func TestKeyByIPAndJSONFieldIgnoresNonString(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":42}`))
	c.Request.RemoteAddr = "9.9.9.9:1"

	if key := KeyByIPAndJSONField("username")(c); key != "9.9.9.9" {
		t.Fatalf("non-string field should fall back to IP, got %s", key)
	}
	if key := rateLimitKey(c, "sf:rate:admin_login", KeyByIPAndJSONField("username")); key != "sf:rate:admin_login:9.9.9.9" {
		t.Fatalf("prefixed key = %s", key)
	}
}
