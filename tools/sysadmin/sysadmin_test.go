package sysadmin

import (
	"context"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-itsm/core"
	"github.com/goliatone/go-itsm/tools/toolstest"
)

func TestCreateUser_RequiresUsernameAndEmail(t *testing.T) {
	gw := toolstest.New("https://dev.service-now.com")
	_, err := createUser(context.Background(), gw, map[string]any{"username": "alice"})
	if err == nil {
		t.Fatal("expected missing email rejected")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected rich error, got %T", err)
	}
	fields := rich.AllValidationErrors()
	if len(fields) != 1 || fields[0].Field != "email" {
		t.Fatalf("expected email named, got %v", fields)
	}
}

func TestCreateUser_PostsUserRecord(t *testing.T) {
	gw := toolstest.New("https://dev.service-now.com")
	gw.Enqueue(map[string]any{"result": map[string]any{"sys_id": "u1", "user_name": "alice"}})

	payload, err := createUser(context.Background(), gw, map[string]any{
		"username":   "alice",
		"email":      "alice@example.com",
		"first_name": "Alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := string(gw.Calls[0].Body)
	if !strings.Contains(body, `"user_name":"alice"`) || !strings.Contains(body, `"first_name":"Alice"`) {
		t.Fatalf("unexpected body: %s", body)
	}
	if !strings.HasSuffix(gw.Calls[0].URL, "/table/sys_user") {
		t.Fatalf("unexpected url: %q", gw.Calls[0].URL)
	}
	if payload["message"] != "created user alice" {
		t.Fatalf("unexpected message: %v", payload["message"])
	}
}

func TestUpdateUser_PassthroughFields(t *testing.T) {
	gw := toolstest.New("https://dev.service-now.com")
	gw.Enqueue(map[string]any{"result": []any{map[string]any{"sys_id": "u1"}}})
	gw.Enqueue(map[string]any{"result": map[string]any{"user_name": "alice", "title": "SRE"}})

	_, err := updateUser(context.Background(), gw, map[string]any{
		"user_id": "alice",
		"title":   "SRE",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(gw.Calls[1].Body), `"title":"SRE"`) {
		t.Fatalf("unexpected body: %s", gw.Calls[1].Body)
	}
}

func TestListGroups_UsesGroupTable(t *testing.T) {
	gw := toolstest.New("https://dev.service-now.com")
	gw.Enqueue(map[string]any{"result": []any{map[string]any{"name": "network-ops"}}})

	payload, err := listGroups(context.Background(), gw, map[string]any{"active": "true"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(gw.Calls[0].URL, "/table/sys_user_group") {
		t.Fatalf("unexpected url: %q", gw.Calls[0].URL)
	}
	if payload["count"] != 1 {
		t.Fatalf("unexpected count: %v", payload["count"])
	}
}

func TestDescriptors_RegisterCleanly(t *testing.T) {
	registry := core.NewOperationRegistry()
	if err := registry.RegisterAll(Descriptors()...); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if registry.Len() != 7 {
		t.Fatalf("expected 7 operations, got %d", registry.Len())
	}
}
