package gojob

import (
	"context"
	"fmt"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-itsm/core"
)

// MaintenanceGateway is the slice of the gateway surface the maintenance
// worker drives. *core.Service satisfies it.
type MaintenanceGateway interface {
	RefreshCredentials(ctx context.Context) bool
	ValidateConnection(ctx context.Context) (map[string]any, error)
}

const defaultMaintenanceRetryDelay = 30 * time.Second

// Maintenance executes gateway maintenance jobs delivered off the queue:
// credential refresh sweeps that keep the token warm ahead of expiry, and
// connection probes.
type Maintenance struct {
	gateway    MaintenanceGateway
	logger     glog.Logger
	retryDelay time.Duration
}

func NewMaintenance(gateway MaintenanceGateway, logger glog.Logger) (*Maintenance, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gojob: maintenance gateway is required")
	}
	return &Maintenance{
		gateway:    gateway,
		logger:     glog.Ensure(logger),
		retryDelay: defaultMaintenanceRetryDelay,
	}, nil
}

// Process runs one delivered maintenance job and acks it, or nacks it with a
// bounded retry when the sweep fails. Unknown job ids go to the dead letter.
func (m *Maintenance) Process(ctx context.Context, delivery core.JobDelivery, attempt int) error {
	if m == nil || m.gateway == nil {
		return fmt.Errorf("gojob: maintenance is not configured")
	}
	if delivery == nil {
		return fmt.Errorf("gojob: delivery is required")
	}
	message := delivery.Message()
	if message == nil {
		return delivery.Nack(ctx, core.JobNackOptions{
			DeadLetter: true,
			Reason:     "empty delivery",
		})
	}

	switch message.JobID {
	case JobIDCredentialRefresh:
		if !m.gateway.RefreshCredentials(ctx) {
			return m.nack(ctx, delivery, attempt, "credential refresh failed")
		}
	case JobIDConnectionValidate:
		if _, err := m.gateway.ValidateConnection(ctx); err != nil {
			return m.nack(ctx, delivery, attempt, err.Error())
		}
	default:
		return delivery.Nack(ctx, core.JobNackOptions{
			DeadLetter: true,
			Reason:     "unknown maintenance job: " + message.JobID,
		})
	}
	return delivery.Ack(ctx)
}

// Consume drains the dequeuer until the context is cancelled. Failed jobs are
// logged and do not stop the loop.
func (m *Maintenance) Consume(ctx context.Context, dequeuer core.JobDequeuer) error {
	if m == nil {
		return fmt.Errorf("gojob: maintenance is not configured")
	}
	if dequeuer == nil {
		return fmt.Errorf("gojob: dequeuer is required")
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		delivery, err := dequeuer.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := m.Process(ctx, delivery, messageAttempt(delivery)); err != nil {
			m.logger.Error("maintenance job failed", "error", err)
		}
	}
}

// messageAttempt reads the redelivery attempt the queue stamps into the
// message parameters, defaulting to the first attempt.
func messageAttempt(delivery core.JobDelivery) int {
	if delivery == nil {
		return 1
	}
	message := delivery.Message()
	if message == nil {
		return 1
	}
	switch value := message.Parameters["attempt"].(type) {
	case int:
		if value > 0 {
			return value
		}
	case float64:
		if value > 0 {
			return int(value)
		}
	}
	return 1
}

func (m *Maintenance) nack(ctx context.Context, delivery core.JobDelivery, attempt int, reason string) error {
	opts := core.JobNackOptions{
		Delay:   m.retryDelay,
		Requeue: true,
		Reason:  reason,
	}
	if bounded, ok := delivery.(interface {
		NackForAttempt(ctx context.Context, opts core.JobNackOptions, attempt int) error
	}); ok {
		return bounded.NackForAttempt(ctx, opts, attempt)
	}
	return delivery.Nack(ctx, opts)
}
