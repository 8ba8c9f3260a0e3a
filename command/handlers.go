package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-itsm/core"
)

// GatewayService is the slice of the gateway the command layer drives.
type GatewayService interface {
	Handle(ctx context.Context, req core.ToolRequest) core.Envelope
	RefreshCredentials(ctx context.Context) bool
	ValidateConnection(ctx context.Context) (map[string]any, error)
}

// RefreshResult reports the outcome of a credential refresh sweep.
type RefreshResult struct {
	Refreshed bool
}

type DispatchToolCommand struct {
	service GatewayService
}

func NewDispatchToolCommand(service GatewayService) *DispatchToolCommand {
	return &DispatchToolCommand{service: service}
}

func (c *DispatchToolCommand) Execute(ctx context.Context, msg DispatchToolMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: gateway service is required")
	}
	storeResult(ctx, c.service.Handle(ctx, msg.Request))
	return nil
}

type RefreshCredentialsCommand struct {
	service GatewayService
}

func NewRefreshCredentialsCommand(service GatewayService) *RefreshCredentialsCommand {
	return &RefreshCredentialsCommand{service: service}
}

func (c *RefreshCredentialsCommand) Execute(ctx context.Context, _ RefreshCredentialsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: gateway service is required")
	}
	storeResult(ctx, RefreshResult{Refreshed: c.service.RefreshCredentials(ctx)})
	return nil
}

type ValidateConnectionCommand struct {
	service GatewayService
}

func NewValidateConnectionCommand(service GatewayService) *ValidateConnectionCommand {
	return &ValidateConnectionCommand{service: service}
}

func (c *ValidateConnectionCommand) Execute(ctx context.Context, _ ValidateConnectionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: gateway service is required")
	}
	details, err := c.service.ValidateConnection(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, details)
	return nil
}

type ClearTokenCommand struct {
	store core.TokenStore
}

func NewClearTokenCommand(store core.TokenStore) *ClearTokenCommand {
	return &ClearTokenCommand{store: store}
}

func (c *ClearTokenCommand) Execute(ctx context.Context, msg ClearTokenMessage) error {
	if c == nil || c.store == nil {
		return commandDependencyError("command: token store is required")
	}
	return c.store.Clear(ctx, msg.GatewayID)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
