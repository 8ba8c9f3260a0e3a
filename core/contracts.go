package core

import (
	"context"
	"errors"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// CredentialSource produces ready-to-send authorization headers and owns the
// credential lifecycle behind them. Lifecycle methods report failure as a
// boolean so the executor can make a local retry-or-fail decision without
// error-based control flow; Headers is the only method that returns an error,
// and only for configuration faults.
type CredentialSource interface {
	Kind() string
	Headers(ctx context.Context) (map[string]string, error)
	EnsureValid(ctx context.Context) bool
	Authenticate(ctx context.Context) bool
	Refresh(ctx context.Context) bool
}

// RateGate bounds outbound call rate. Acquire blocks until the trailing
// window admits another request, or the context is cancelled.
type RateGate interface {
	Acquire(ctx context.Context) error
}

// TransportAdapter performs one wire call. Implementations classify nothing;
// the executor owns the failure taxonomy.
type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// TransportResolver builds adapters by kind with optional adapter config.
type TransportResolver interface {
	Build(kind string, config map[string]any) (TransportAdapter, error)
}

// Executor runs one logical backend operation through the rate gate and the
// retry/classification pipeline, returning the decoded JSON body.
type Executor interface {
	Execute(ctx context.Context, req TransportRequest) (map[string]any, error)
}

// ErrTokenSnapshotNotFound is returned by TokenStore.Load when no snapshot
// has been persisted for the gateway instance.
var ErrTokenSnapshotNotFound = errors.New("core: token snapshot not found")

// TokenStore persists the live OAuth token across process restarts. A save
// replaces the previous snapshot atomically.
type TokenStore interface {
	Load(ctx context.Context, gatewayID string) (TokenSnapshot, error)
	Save(ctx context.Context, snapshot TokenSnapshot) error
	Clear(ctx context.Context, gatewayID string) error
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// JobExecutionMessage is the runtime-neutral description of a queued
// maintenance task (credential refresh sweeps, connection probes).
type JobExecutionMessage struct {
	JobID          string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

// JobNackOptions controls requeue behavior when a maintenance task fails.
type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

// JobWorkerEvent mirrors worker lifecycle notifications for observability.
type JobWorkerEvent struct {
	JobID    string
	Attempt  int
	Duration time.Duration
	Err      error
}

// JobEnqueuer submits maintenance tasks to the queue runtime.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

// JobDelivery is one dequeued maintenance task awaiting ack or nack.
type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

// JobDequeuer pulls maintenance tasks off the queue runtime.
type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

// JobWorkerHook receives worker lifecycle notifications.
type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}
