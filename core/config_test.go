package core

import (
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	bad := cfg
	bad.ServiceName = "  "
	if err := bad.Validate(); err == nil {
		t.Fatal("expected blank service name rejected")
	}

	bad = cfg
	bad.RequestsPerMinute = -1
	if err := bad.Validate(); err == nil {
		t.Fatal("expected negative rate rejected")
	}

	bad = cfg
	bad.Auth.Type = "kerberos"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected unsupported auth type rejected")
	}

	ok := cfg
	ok.Auth.Type = AuthKindOAuth
	if err := ok.Validate(); err != nil {
		t.Fatalf("oauth type must validate: %v", err)
	}
}

func TestConfig_URLDerivation(t *testing.T) {
	cfg := Config{InstanceURL: "https://dev.service-now.com/"}
	if got := cfg.APIURL(); got != "https://dev.service-now.com/api/now" {
		t.Fatalf("unexpected api url: %q", got)
	}
	if got := cfg.TokenURL(); got != "https://dev.service-now.com/oauth_token.do" {
		t.Fatalf("unexpected token url: %q", got)
	}

	cfg.Auth.OAuth = &OAuthConfig{TokenURL: "https://idp.example.com/token"}
	if got := cfg.TokenURL(); got != "https://idp.example.com/token" {
		t.Fatalf("expected override preferred, got %q", got)
	}

	if got := (Config{}).APIURL(); got != "" {
		t.Fatalf("expected empty api url without instance, got %q", got)
	}
}

func TestGoOptionsResolver_LayerPrecedence(t *testing.T) {
	defaults := DefaultConfig()
	loaded := Config{ServiceName: "from-config", RequestsPerMinute: 200}
	runtime := Config{RequestsPerMinute: 50, Timeout: 10 * time.Second}

	resolved, err := GoOptionsResolver{}.Resolve(defaults, loaded, runtime)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.ServiceName != "from-config" {
		t.Fatalf("expected config layer over defaults, got %q", resolved.ServiceName)
	}
	if resolved.RequestsPerMinute != 50 {
		t.Fatalf("expected runtime layer to win, got %d", resolved.RequestsPerMinute)
	}
	if resolved.Timeout != 10*time.Second {
		t.Fatalf("expected runtime timeout, got %v", resolved.Timeout)
	}
	if resolved.MaxRetries != DefaultMaxRetries {
		t.Fatalf("expected default retries preserved, got %d", resolved.MaxRetries)
	}
}

func TestNewService_AppliesRuntimeConfig(t *testing.T) {
	svc, err := NewService(Config{
		ServiceName: "itsm-test",
		InstanceURL: "https://dev.service-now.com",
		Auth:        AuthConfig{Type: AuthKindBasic, Basic: &BasicAuthConfig{Username: "admin", Password: "secret"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := svc.Config()
	if cfg.ServiceName != "itsm-test" {
		t.Fatalf("expected runtime service name, got %q", cfg.ServiceName)
	}
	if cfg.RequestsPerMinute != DefaultRequestsPerMinute {
		t.Fatalf("expected default rate, got %d", cfg.RequestsPerMinute)
	}
	if cfg.Auth.Type != AuthKindBasic {
		t.Fatalf("expected auth carried through, got %q", cfg.Auth.Type)
	}
	if svc.Registry() == nil {
		t.Fatal("expected default registry")
	}
}
