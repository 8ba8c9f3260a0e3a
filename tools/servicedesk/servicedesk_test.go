package servicedesk

import (
	"context"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-itsm/core"
	"github.com/goliatone/go-itsm/tools/toolstest"
)

func listResult(items ...map[string]any) map[string]any {
	entries := make([]any, 0, len(items))
	for _, item := range items {
		entries = append(entries, item)
	}
	return map[string]any{"result": entries}
}

func itemResult(item map[string]any) map[string]any {
	return map[string]any{"result": item}
}

func TestListIncidents_BuildsFilterQuery(t *testing.T) {
	gw := toolstest.New("https://dev.service-now.com")
	gw.Enqueue(listResult(
		map[string]any{"number": "INC0010001", "state": "2"},
		map[string]any{"number": "INC0010002", "state": "2"},
	))

	payload, err := listIncidents(context.Background(), gw, map[string]any{
		"state":       "2",
		"assigned_to": "alice",
		"limit":       float64(5),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload["count"] != 2 {
		t.Fatalf("unexpected count: %v", payload["count"])
	}

	call := gw.Calls[0]
	if !strings.HasSuffix(call.URL, "/api/now/table/incident") {
		t.Fatalf("unexpected url: %q", call.URL)
	}
	if call.Query["sysparm_limit"] != "5" {
		t.Fatalf("unexpected limit: %v", call.Query)
	}
	query := call.Query["sysparm_query"]
	if !strings.Contains(query, "state=2") || !strings.Contains(query, "assigned_to.user_name=alice") {
		t.Fatalf("unexpected query: %q", query)
	}
}

func TestGetIncident_NotFound(t *testing.T) {
	gw := toolstest.New("https://dev.service-now.com")
	gw.Enqueue(listResult())

	_, err := getIncident(context.Background(), gw, map[string]any{"incident_number": "INC0099999"})
	if err == nil {
		t.Fatal("expected not found error")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.TextCode != core.GatewayErrorRecordNotFound {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestCreateIncident_DefaultsShortDescription(t *testing.T) {
	gw := toolstest.New("https://dev.service-now.com")
	gw.Enqueue(itemResult(map[string]any{"number": "INC0010003", "sys_id": "abc"}))

	payload, err := createIncident(context.Background(), gw, map[string]any{
		"description": "printer on fire",
		"priority":    "1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call := gw.Calls[0]
	if call.Method != "POST" {
		t.Fatalf("expected POST, got %q", call.Method)
	}
	body := string(call.Body)
	if !strings.Contains(body, `"short_description":"printer on fire"`) {
		t.Fatalf("expected short description defaulted, got %s", body)
	}
	if !strings.Contains(body, `"priority":"1"`) {
		t.Fatalf("expected priority forwarded, got %s", body)
	}
	if payload["message"] != "created incident INC0010003" {
		t.Fatalf("unexpected message: %v", payload["message"])
	}
}

func TestUpdateIncident_ResolvesSysIDThenPatches(t *testing.T) {
	gw := toolstest.New("https://dev.service-now.com")
	gw.Enqueue(listResult(map[string]any{"sys_id": "abc123", "number": "INC0010001"}))
	gw.Enqueue(itemResult(map[string]any{"sys_id": "abc123", "number": "INC0010001", "state": "2"}))

	_, err := updateIncident(context.Background(), gw, map[string]any{
		"incident_number": "INC0010001",
		"state":           "2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gw.Calls) != 2 {
		t.Fatalf("expected lookup then patch, got %d calls", len(gw.Calls))
	}
	patch := gw.Calls[1]
	if patch.Method != "PATCH" || !strings.HasSuffix(patch.URL, "/incident/abc123") {
		t.Fatalf("unexpected patch call: %+v", patch)
	}
	if !strings.Contains(string(patch.Body), `"state":"2"`) {
		t.Fatalf("expected passthrough field, got %s", patch.Body)
	}
}

func TestAddComment_WorkNoteField(t *testing.T) {
	gw := toolstest.New("https://dev.service-now.com")
	gw.Enqueue(listResult(map[string]any{"sys_id": "abc123"}))
	gw.Enqueue(itemResult(map[string]any{}))

	_, err := addComment(context.Background(), gw, map[string]any{
		"incident_number": "INC0010001",
		"comment":         "checked the fuser",
		"work_note":       true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(gw.Calls[1].Body), `"work_notes":"checked the fuser"`) {
		t.Fatalf("expected work note field, got %s", gw.Calls[1].Body)
	}
}

func TestResolveIncident_SetsClosureFields(t *testing.T) {
	gw := toolstest.New("https://dev.service-now.com")
	gw.Enqueue(listResult(map[string]any{"sys_id": "abc123"}))
	gw.Enqueue(itemResult(map[string]any{"number": "INC0010001", "state": "6"}))

	_, err := resolveIncident(context.Background(), gw, map[string]any{
		"incident_number":  "INC0010001",
		"resolution_notes": "replaced the fuser",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := string(gw.Calls[1].Body)
	if !strings.Contains(body, `"state":"6"`) {
		t.Fatalf("expected resolved state, got %s", body)
	}
	if !strings.Contains(body, `"close_notes":"replaced the fuser"`) {
		t.Fatalf("expected close notes, got %s", body)
	}
	if !strings.Contains(body, defaultResolutionCode) {
		t.Fatalf("expected default close code, got %s", body)
	}
}

func TestGetUser_LooksUpByUsernameOrSysID(t *testing.T) {
	gw := toolstest.New("https://dev.service-now.com")
	gw.Enqueue(listResult(map[string]any{"sys_id": "u1", "user_name": "alice", "email": "alice@example.com"}))

	payload, err := getUser(context.Background(), gw, map[string]any{"user_id": "alice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	query := gw.Calls[0].Query["sysparm_query"]
	if !strings.Contains(query, "user_name=alice") || !strings.Contains(query, "^ORsys_id=alice") {
		t.Fatalf("unexpected lookup query: %q", query)
	}
	user, ok := payload["user"].(map[string]any)
	if !ok || user["email"] != "alice@example.com" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestDescriptors_RegisterCleanly(t *testing.T) {
	registry := core.NewOperationRegistry()
	if err := registry.RegisterAll(Descriptors()...); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if registry.Len() != 8 {
		t.Fatalf("expected 8 operations, got %d", registry.Len())
	}
	if _, err := registry.Resolve("service_desk.resolve_incident"); err != nil {
		t.Fatalf("expected operation resolvable: %v", err)
	}
}
