package core

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

// Service is the gateway runtime: it owns the resolved configuration, the
// credential source, the rate gate, the transport adapter, and the operation
// registry, and exposes dispatch plus the raw executor on top of them.
type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	credentials       CredentialSource
	gate              RateGate
	adapter           TransportAdapter
	transportResolver TransportResolver
	registry          *OperationRegistry
	tokenStore        TokenStore

	newRequestID func() string
	now          func() time.Time
	sleep        func(ctx context.Context, delay time.Duration) error
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("itsm", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("itsm"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.registry == nil {
		builder.registry = NewOperationRegistry()
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	adapter := builder.adapter
	if adapter == nil && builder.transportResolver != nil {
		built, buildErr := builder.transportResolver.Build("rest", map[string]any{
			"timeout": finalConfig.Timeout,
		})
		if buildErr != nil {
			return nil, mapBuildError(builder.errorMapper, buildErr)
		}
		adapter = built
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorFactory:      builder.errorFactory,
		errorMapper:       builder.errorMapper,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		credentials:       builder.credentials,
		gate:              builder.gate,
		adapter:           adapter,
		transportResolver: builder.transportResolver,
		registry:          builder.registry,
		tokenStore:        builder.tokenStore,
		newRequestID:      uuid.NewString,
		now:               time.Now,
	}, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper != nil {
		if mapped := mapper(err); mapped != nil {
			return mapped
		}
	}
	return err
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Logger() Logger {
	if s == nil {
		return glog.Nop()
	}
	return s.logger
}

func (s *Service) Registry() *OperationRegistry {
	if s == nil {
		return nil
	}
	return s.registry
}

func (s *Service) Credentials() CredentialSource {
	if s == nil {
		return nil
	}
	return s.credentials
}

func (s *Service) TokenStore() TokenStore {
	if s == nil {
		return nil
	}
	return s.tokenStore
}

// RegisterOperations adds descriptors to the service registry.
func (s *Service) RegisterOperations(descriptors ...OperationDescriptor) error {
	if s == nil || s.registry == nil {
		return goerrors.New("gateway not initialized", goerrors.CategoryInternal).
			WithTextCode(GatewayErrorInternal)
	}
	return s.registry.RegisterAll(descriptors...)
}

// ListTools returns the discovery view of every registered operation.
func (s *Service) ListTools() []ToolDescription {
	if s == nil {
		return nil
	}
	return s.registry.List()
}

// RefreshCredentials forces a credential renewal outside the request path,
// for maintenance sweeps that keep the token warm.
func (s *Service) RefreshCredentials(ctx context.Context) bool {
	if s == nil || s.credentials == nil {
		return false
	}
	refreshed := s.credentials.Refresh(ctx)
	s.logDebug(ctx, "credential refresh sweep", map[string]any{
		"gateway_id": s.config.GatewayID,
		"auth_type":  s.credentials.Kind(),
		"refreshed":  refreshed,
	})
	return refreshed
}

// ValidateConnection probes the backend with a minimal authenticated read and
// reports whether the instance is reachable with the configured credentials.
func (s *Service) ValidateConnection(ctx context.Context) (map[string]any, error) {
	if s == nil {
		return nil, goerrors.New("gateway not initialized", goerrors.CategoryInternal).
			WithTextCode(GatewayErrorInternal)
	}
	startedAt := s.now()
	_, err := s.execute(ctx, TransportRequest{
		Method: "GET",
		URL:    s.config.APIURL() + "/table/sys_user",
		Query:  map[string]string{"sysparm_limit": "1"},
	})
	details := map[string]any{
		"instance_url": s.config.InstanceURL,
		"auth_type":    s.authKind(),
		"connected":    err == nil,
		"latency_ms":   time.Since(startedAt).Milliseconds(),
	}
	if err != nil {
		return details, err
	}
	return details, nil
}

func (s *Service) authKind() string {
	if s.credentials != nil {
		return s.credentials.Kind()
	}
	return firstNonEmpty(s.config.Auth.Type, "none")
}

var _ Executor = (*Service)(nil)
var _ Gateway = (*Service)(nil)
