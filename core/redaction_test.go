package core

import "testing"

func TestRedactMetadata_MasksSensitiveKeys(t *testing.T) {
	redacted := RedactMetadata(map[string]any{
		"username": "alice",
		"password": "hunter2",
		"nested": map[string]any{
			"api_key": "abc",
			"note":    "ok",
		},
		"items": []any{
			map[string]any{"refresh_token": "r1", "state": "open"},
		},
	})

	if redacted["username"] != "alice" {
		t.Fatalf("expected username untouched, got %v", redacted["username"])
	}
	if redacted["password"] != redactedValue {
		t.Fatalf("expected password masked, got %v", redacted["password"])
	}
	nested := redacted["nested"].(map[string]any)
	if nested["api_key"] != redactedValue || nested["note"] != "ok" {
		t.Fatalf("unexpected nested redaction: %v", nested)
	}
	item := redacted["items"].([]any)[0].(map[string]any)
	if item["refresh_token"] != redactedValue || item["state"] != "open" {
		t.Fatalf("unexpected slice redaction: %v", item)
	}
}

func TestRedactMetadata_EmptyInput(t *testing.T) {
	redacted := RedactMetadata(nil)
	if redacted == nil || len(redacted) != 0 {
		t.Fatalf("expected empty map, got %v", redacted)
	}
}
