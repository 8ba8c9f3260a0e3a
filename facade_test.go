package itsm

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-itsm/core"
)

type scriptedAdapter struct {
	calls     []core.TransportRequest
	responses []core.TransportResponse
}

func (a *scriptedAdapter) Kind() string { return "rest" }

func (a *scriptedAdapter) Do(_ context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	a.calls = append(a.calls, req)
	if len(a.responses) == 0 {
		return core.TransportResponse{StatusCode: 200, Body: []byte(`{"result":[]}`)}, nil
	}
	response := a.responses[0]
	a.responses = a.responses[1:]
	return response, nil
}

func newFacadeConfig() Config {
	cfg := DefaultConfig()
	cfg.InstanceURL = "https://dev.example-now.com"
	cfg.Auth = AuthConfig{
		Type: core.AuthKindBasic,
		Basic: &core.BasicAuthConfig{
			Username: "svc.gateway",
			Password: "s3cret",
		},
	}
	return cfg
}

func TestNewRegistersDefaultCatalog(t *testing.T) {
	adapter := &scriptedAdapter{}
	service, err := New(newFacadeConfig(), WithServiceOptions(core.WithTransportAdapter(adapter)))
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}

	tools := service.ListTools()
	if len(tools) != 32 {
		t.Fatalf("expected 32 default tools, got %d", len(tools))
	}
	seen := map[string]bool{}
	for _, tool := range tools {
		if seen[tool.Name] {
			t.Fatalf("duplicate tool name %q", tool.Name)
		}
		seen[tool.Name] = true
	}
	for _, name := range []string{
		"service_desk.list_incidents",
		"change.create_change_request",
		"knowledge.list_articles",
		"catalog.list_catalog_items",
		"system.list_groups",
	} {
		if !seen[name] {
			t.Fatalf("expected default catalog to include %q", name)
		}
	}
}

func TestNewDispatchesThroughAssembledPipeline(t *testing.T) {
	adapter := &scriptedAdapter{
		responses: []core.TransportResponse{{
			StatusCode: 200,
			Body:       []byte(`{"result":[{"sys_id":"abc123","number":"INC0001","short_description":"printer down"}]}`),
		}},
	}
	service, err := New(newFacadeConfig(), WithServiceOptions(core.WithTransportAdapter(adapter)))
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}

	envelope := service.Handle(context.Background(), ToolRequest{Tool: "service_desk.list_incidents"})
	if !envelope.Success {
		t.Fatalf("expected success envelope, got %+v", envelope.Error)
	}
	if envelope.RequestID == "" {
		t.Fatalf("expected a request id on the envelope")
	}
	incidents, ok := envelope.Data["incidents"].([]map[string]any)
	if !ok || len(incidents) != 1 {
		t.Fatalf("expected one incident in payload, got %#v", envelope.Data["incidents"])
	}

	if len(adapter.calls) != 1 {
		t.Fatalf("expected one transport call, got %d", len(adapter.calls))
	}
	call := adapter.calls[0]
	if !strings.HasSuffix(call.URL, "/api/now/table/incident") {
		t.Fatalf("unexpected transport URL %q", call.URL)
	}
	if call.Headers["Authorization"] == "" {
		t.Fatalf("expected basic credentials on the outbound request")
	}
}

func TestNewWithoutDefaultTools(t *testing.T) {
	service, err := New(newFacadeConfig(),
		WithoutDefaultTools(),
		WithServiceOptions(core.WithTransportAdapter(&scriptedAdapter{})),
	)
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	if got := len(service.ListTools()); got != 0 {
		t.Fatalf("expected empty catalog, got %d tools", got)
	}
}

func TestNewRejectsMisconfiguredAuth(t *testing.T) {
	cfg := newFacadeConfig()
	cfg.Auth = AuthConfig{Type: core.AuthKindOAuth}
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected oauth without credentials to be rejected")
	}
}
