package auth

import (
	"context"
	"testing"

	"github.com/goliatone/go-itsm/core"
)

func TestAPIKeyStrategy_DefaultHeader(t *testing.T) {
	strategy, err := NewAPIKeyStrategy(core.APIKeyConfig{Key: "key-123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	headers, err := strategy.Headers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if headers[core.DefaultAPIKeyHeader] != "key-123" {
		t.Fatalf("expected key under default header, got %v", headers)
	}
}

func TestAPIKeyStrategy_CustomHeader(t *testing.T) {
	strategy, err := NewAPIKeyStrategy(core.APIKeyConfig{Key: "key-123", HeaderName: "X-Auth-Token"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	headers, _ := strategy.Headers(context.Background())
	if headers["X-Auth-Token"] != "key-123" {
		t.Fatalf("expected custom header honored, got %v", headers)
	}
}

func TestAPIKeyStrategy_RequiresKey(t *testing.T) {
	if _, err := NewAPIKeyStrategy(core.APIKeyConfig{}); err == nil {
		t.Fatal("expected blank key rejected")
	}
}
