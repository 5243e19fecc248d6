package main

import (
	"strings"
	"testing"

	"github.com/storefront-next/internal/config"
)

func TestIsWeakSecret(t *testing.T) {
	cases := map[string]bool{
		"short":                             true,
		"please-change-me-0123456789abcdef": true,
		"Q3v9xK2mL8pR4tW7yB1nC6dF0gH5jS2a":  false,
	}
	for secret, want := range cases {
		if got := isWeakSecret(secret); got != want {
			t.Fatalf("isWeakSecret(%q) = %v, want %v", secret, got, want)
		}
	}
}

func TestCheckSecretsOnlyFailsInRelease(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "weak"
	cfg.UserJWT.SecretKey = strings.Repeat("k", 40)

	if err := checkSecrets(cfg, false); err != nil {
		t.Fatalf("debug mode should only warn: %v", err)
	}
	if err := checkSecrets(cfg, true); err == nil {
		t.Fatalf("release mode should reject a weak admin secret")
	}
	cfg.JWT.SecretKey = strings.Repeat("s", 40)
	if err := checkSecrets(cfg, true); err != nil {
		t.Fatalf("strong secrets should pass: %v", err)
	}
}

func TestRunRejectsUnknownMode(t *testing.T) {
	if err := run(&config.Config{}, "cron"); err == nil {
		t.Fatalf("unknown mode should fail before touching the database")
	}
}
