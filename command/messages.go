// Package command exposes the gateway's mutating surface as go-command
// messages so hosts can route tool calls and credential maintenance
// through their dispatcher.
package command

import (
	"strings"

	"github.com/goliatone/go-itsm/core"
)

const (
	TypeDispatchTool       = "itsm.command.tool.dispatch"
	TypeRefreshCredentials = "itsm.command.credentials.refresh"
	TypeValidateConnection = "itsm.command.connection.validate"
	TypeClearToken         = "itsm.command.token.clear"
)

type DispatchToolMessage struct {
	Request core.ToolRequest
}

func (DispatchToolMessage) Type() string { return TypeDispatchTool }

func (m DispatchToolMessage) Validate() error {
	if strings.TrimSpace(m.Request.Tool) == "" {
		return commandValidationError("tool", "tool name is required")
	}
	return nil
}

type RefreshCredentialsMessage struct{}

func (RefreshCredentialsMessage) Type() string { return TypeRefreshCredentials }

type ValidateConnectionMessage struct{}

func (ValidateConnectionMessage) Type() string { return TypeValidateConnection }

type ClearTokenMessage struct {
	GatewayID string
}

func (ClearTokenMessage) Type() string { return TypeClearToken }

func (m ClearTokenMessage) Validate() error {
	if strings.TrimSpace(m.GatewayID) == "" {
		return commandValidationError("gateway_id", "gateway id is required")
	}
	return nil
}
