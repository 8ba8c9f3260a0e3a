// Package itsm assembles the gateway from its parts: resolved configuration,
// a credential source matching the configured auth variant, the sliding rate
// window, the REST transport, and the default tool catalog.
package itsm

import (
	"strings"

	"github.com/goliatone/go-itsm/auth"
	"github.com/goliatone/go-itsm/core"
	"github.com/goliatone/go-itsm/ratelimit"
	"github.com/goliatone/go-itsm/tools/catalog"
	"github.com/goliatone/go-itsm/tools/change"
	"github.com/goliatone/go-itsm/tools/knowledge"
	"github.com/goliatone/go-itsm/tools/servicedesk"
	"github.com/goliatone/go-itsm/tools/sysadmin"
	"github.com/goliatone/go-itsm/transport"
)

// Re-exported core types so most callers only import this package.
type (
	Config              = core.Config
	AuthConfig          = core.AuthConfig
	Envelope            = core.Envelope
	ErrorDetail         = core.ErrorDetail
	ToolRequest         = core.ToolRequest
	ToolDescription     = core.ToolDescription
	OperationDescriptor = core.OperationDescriptor
	Service             = core.Service
	Option              = core.Option
	TokenStore          = core.TokenStore
	TokenSnapshot       = core.TokenSnapshot
)

// DefaultConfig returns the baseline gateway configuration.
func DefaultConfig() Config {
	return core.DefaultConfig()
}

// GatewayOption customizes facade assembly before the service is built.
type GatewayOption func(*gatewayOptions)

type gatewayOptions struct {
	httpClient       auth.HTTPDoer
	tokenStore       core.TokenStore
	logger           core.Logger
	loggerProvider   core.LoggerProvider
	serviceOptions   []core.Option
	skipDefaultTools bool
}

// WithHTTPClient sets the HTTP client used for token exchanges.
func WithHTTPClient(client auth.HTTPDoer) GatewayOption {
	return func(o *gatewayOptions) {
		o.httpClient = client
	}
}

// WithTokenStore persists OAuth tokens across restarts and exposes the store
// on the built service.
func WithTokenStore(store core.TokenStore) GatewayOption {
	return func(o *gatewayOptions) {
		o.tokenStore = store
	}
}

func WithLogger(logger core.Logger) GatewayOption {
	return func(o *gatewayOptions) {
		o.logger = logger
	}
}

func WithLoggerProvider(provider core.LoggerProvider) GatewayOption {
	return func(o *gatewayOptions) {
		o.loggerProvider = provider
	}
}

// WithServiceOptions forwards raw core options. They are applied last, so
// they win over anything the facade wires itself.
func WithServiceOptions(options ...core.Option) GatewayOption {
	return func(o *gatewayOptions) {
		o.serviceOptions = append(o.serviceOptions, options...)
	}
}

// WithoutDefaultTools skips registering the built-in tool catalog.
func WithoutDefaultTools() GatewayOption {
	return func(o *gatewayOptions) {
		o.skipDefaultTools = true
	}
}

// New builds a ready-to-dispatch gateway service: credential source from the
// auth config, sliding rate window, REST transport, and the default tool
// catalog unless opted out.
func New(cfg Config, options ...GatewayOption) (*Service, error) {
	assembly := gatewayOptions{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&assembly)
	}

	serviceOptions := []core.Option{
		core.WithTransportResolver(transport.NewDefaultRegistry()),
		core.WithRateGate(ratelimit.NewWindow(cfg.RequestsPerMinute)),
	}
	if assembly.logger != nil {
		serviceOptions = append(serviceOptions, core.WithLogger(assembly.logger))
	}
	if assembly.loggerProvider != nil {
		serviceOptions = append(serviceOptions, core.WithLoggerProvider(assembly.loggerProvider))
	}
	if assembly.tokenStore != nil {
		serviceOptions = append(serviceOptions, core.WithTokenStore(assembly.tokenStore))
	}

	if strings.TrimSpace(cfg.Auth.Type) != "" {
		source, err := auth.NewCredentialSource(cfg, auth.SourceOptions{
			HTTPClient: assembly.httpClient,
			TokenStore: assembly.tokenStore,
			Logger:     assembly.logger,
		})
		if err != nil {
			return nil, err
		}
		serviceOptions = append(serviceOptions, core.WithCredentialSource(source))
	}

	serviceOptions = append(serviceOptions, assembly.serviceOptions...)

	service, err := core.NewService(cfg, serviceOptions...)
	if err != nil {
		return nil, err
	}

	if !assembly.skipDefaultTools {
		if err := RegisterDefaultTools(service); err != nil {
			return nil, err
		}
	}
	return service, nil
}

// DefaultToolDescriptors returns every built-in operation across the
// servicedesk, change, knowledge, catalog, and sysadmin modules.
func DefaultToolDescriptors() []core.OperationDescriptor {
	var descriptors []core.OperationDescriptor
	descriptors = append(descriptors, servicedesk.Descriptors()...)
	descriptors = append(descriptors, change.Descriptors()...)
	descriptors = append(descriptors, knowledge.Descriptors()...)
	descriptors = append(descriptors, catalog.Descriptors()...)
	descriptors = append(descriptors, sysadmin.Descriptors()...)
	return descriptors
}

// RegisterDefaultTools adds the built-in tool catalog to the service.
func RegisterDefaultTools(service *Service) error {
	return service.RegisterOperations(DefaultToolDescriptors()...)
}
