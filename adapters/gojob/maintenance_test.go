package gojob

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-itsm/core"
)

type maintenanceGatewayStub struct {
	refreshOK    bool
	refreshCalls int
	validateErr  error
}

func (g *maintenanceGatewayStub) RefreshCredentials(context.Context) bool {
	g.refreshCalls++
	return g.refreshOK
}

func (g *maintenanceGatewayStub) ValidateConnection(context.Context) (map[string]any, error) {
	if g.validateErr != nil {
		return nil, g.validateErr
	}
	return map[string]any{"connected": true}, nil
}

type coreDeliveryStub struct {
	msg      *core.JobExecutionMessage
	acked    bool
	nackOpts core.JobNackOptions
	nacked   bool
}

func (d *coreDeliveryStub) Message() *core.JobExecutionMessage { return d.msg }

func (d *coreDeliveryStub) Ack(context.Context) error {
	d.acked = true
	return nil
}

func (d *coreDeliveryStub) Nack(_ context.Context, opts core.JobNackOptions) error {
	d.nacked = true
	d.nackOpts = opts
	return nil
}

func TestMaintenanceProcessRefreshSuccessAcks(t *testing.T) {
	gateway := &maintenanceGatewayStub{refreshOK: true}
	maintenance, err := NewMaintenance(gateway, nil)
	if err != nil {
		t.Fatalf("new maintenance: %v", err)
	}

	delivery := &coreDeliveryStub{msg: &core.JobExecutionMessage{JobID: JobIDCredentialRefresh}}
	if err := maintenance.Process(context.Background(), delivery, 1); err != nil {
		t.Fatalf("process refresh: %v", err)
	}
	if gateway.refreshCalls != 1 {
		t.Fatalf("expected one refresh sweep, got %d", gateway.refreshCalls)
	}
	if !delivery.acked {
		t.Fatalf("expected ack on successful refresh")
	}
}

func TestMaintenanceProcessRefreshFailureNacksWithDelay(t *testing.T) {
	gateway := &maintenanceGatewayStub{refreshOK: false}
	maintenance, err := NewMaintenance(gateway, nil)
	if err != nil {
		t.Fatalf("new maintenance: %v", err)
	}

	delivery := &coreDeliveryStub{msg: &core.JobExecutionMessage{JobID: JobIDCredentialRefresh}}
	if err := maintenance.Process(context.Background(), delivery, 1); err != nil {
		t.Fatalf("process refresh: %v", err)
	}
	if delivery.acked {
		t.Fatalf("expected no ack on failed refresh")
	}
	if !delivery.nacked || !delivery.nackOpts.Requeue {
		t.Fatalf("expected requeue nack, got %+v", delivery.nackOpts)
	}
	if delivery.nackOpts.Delay != 30*time.Second {
		t.Fatalf("expected default retry delay, got %s", delivery.nackOpts.Delay)
	}
}

func TestMaintenanceProcessValidateFailurePropagatesReason(t *testing.T) {
	gateway := &maintenanceGatewayStub{validateErr: fmt.Errorf("instance unreachable")}
	maintenance, err := NewMaintenance(gateway, nil)
	if err != nil {
		t.Fatalf("new maintenance: %v", err)
	}

	delivery := &coreDeliveryStub{msg: &core.JobExecutionMessage{JobID: JobIDConnectionValidate}}
	if err := maintenance.Process(context.Background(), delivery, 1); err != nil {
		t.Fatalf("process validate: %v", err)
	}
	if delivery.nackOpts.Reason != "instance unreachable" {
		t.Fatalf("expected probe failure reason, got %q", delivery.nackOpts.Reason)
	}
}

func TestMaintenanceProcessUnknownJobDeadLetters(t *testing.T) {
	maintenance, err := NewMaintenance(&maintenanceGatewayStub{}, nil)
	if err != nil {
		t.Fatalf("new maintenance: %v", err)
	}

	delivery := &coreDeliveryStub{msg: &core.JobExecutionMessage{JobID: "itsm.unknown"}}
	if err := maintenance.Process(context.Background(), delivery, 1); err != nil {
		t.Fatalf("process unknown: %v", err)
	}
	if !delivery.nackOpts.DeadLetter {
		t.Fatalf("expected dead letter for unknown job id")
	}
}

func TestMaintenanceNackHonorsRetryPolicyBoundary(t *testing.T) {
	gateway := &maintenanceGatewayStub{refreshOK: false}
	maintenance, err := NewMaintenance(gateway, nil)
	if err != nil {
		t.Fatalf("new maintenance: %v", err)
	}

	raw := &stubQueueDelivery{msg: ToExecutionMessage(&core.JobExecutionMessage{
		JobID:      JobIDCredentialRefresh,
		Parameters: map[string]any{"attempt": 3},
	})}
	adapter := NewDeliveryAdapter(raw, RetryPolicy{MaxAttempts: 3, DeadLetterOnMax: true})

	if err := maintenance.Process(context.Background(), adapter, messageAttempt(adapter)); err != nil {
		t.Fatalf("process bounded refresh: %v", err)
	}
	if raw.nackOpts.Requeue {
		t.Fatalf("expected no requeue at max attempts")
	}
	if !raw.nackOpts.DeadLetter {
		t.Fatalf("expected dead letter at max attempts")
	}
}
