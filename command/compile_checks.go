package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[DispatchToolMessage]       = (*DispatchToolCommand)(nil)
	_ gocmd.Commander[RefreshCredentialsMessage] = (*RefreshCredentialsCommand)(nil)
	_ gocmd.Commander[ValidateConnectionMessage] = (*ValidateConnectionCommand)(nil)
	_ gocmd.Commander[ClearTokenMessage]         = (*ClearTokenCommand)(nil)
)
