package core

import (
	"context"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service wires configuration, transport and instrumentation into the
// platform services.
type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	transport       TransportAdapter
	authorizer      RequestAuthorizer
	observer        CredentialsObserver

	client      *RESTClient
	credentials *CredentialsService
	providers   *ProviderService
	poller      *StatusPoller
}

type ServiceDependencies struct {
	Logger              Logger
	LoggerProvider      LoggerProvider
	MetricsRecorder     MetricsRecorder
	ErrorFactory        ErrorFactory
	ErrorMapper         ErrorMapper
	ConfigProvider      ConfigProvider
	OptionsResolver     OptionsResolver
	Transport           TransportAdapter
	Authorizer          RequestAuthorizer
	CredentialsObserver CredentialsObserver
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
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

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	provider, logger := glog.Resolve(finalConfig.ServiceName, builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger(finalConfig.ServiceName); named != nil {
			logger = glog.Ensure(named)
		}
	}

	transport := builder.transport
	if transport == nil {
		if builder.transportResolver == nil {
			return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: transport adapter or resolver is required"))
		}
		transport, err = builder.transportResolver.Build(finalConfig.Transport.Kind, map[string]any{
			"timeout_ms":     finalConfig.Transport.TimeoutMS,
			"max_body_bytes": finalConfig.Transport.MaxBodyBytes,
		})
		if err != nil {
			return nil, mapBuildError(builder.errorMapper, err)
		}
	}

	client, err := NewRESTClient(finalConfig, transport, builder.authorizer)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	svc := &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorFactory:    builder.errorFactory,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		transport:       transport,
		authorizer:      builder.authorizer,
		observer:        builder.observer,
		client:          client,
	}
	instr := newInstrumentation(finalConfig.ServiceName, logger, builder.metricsRecorder)
	svc.credentials = newCredentialsService(client, instr, builder.errorMapper, builder.observer)
	svc.providers = newProviderService(client, instr, builder.errorMapper)
	svc.poller = NewStatusPoller(svc.credentials, finalConfig.PollingInterval(), finalConfig.PollingMaxAttempts())
	svc.poller.instr = instr
	return svc, nil
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:              s.logger,
		LoggerProvider:      s.loggerProvider,
		MetricsRecorder:     s.metricsRecorder,
		ErrorFactory:        s.errorFactory,
		ErrorMapper:         s.errorMapper,
		ConfigProvider:      s.configProvider,
		OptionsResolver:     s.optionsResolver,
		Transport:           s.transport,
		Authorizer:          s.authorizer,
		CredentialsObserver: s.observer,
	}
}

func (s *Service) Credentials() *CredentialsService {
	if s == nil {
		return nil
	}
	return s.credentials
}

func (s *Service) Providers() *ProviderService {
	if s == nil {
		return nil
	}
	return s.providers
}

func (s *Service) StatusPoller() *StatusPoller {
	if s == nil {
		return nil
	}
	return s.poller
}

func (s *Service) RESTClient() *RESTClient {
	if s == nil {
		return nil
	}
	return s.client
}

// Logger returns the named logger for a subsystem, falling back to the
// service logger.
func (s *Service) Logger(name string) Logger {
	if s == nil {
		return glog.Nop()
	}
	name = strings.TrimSpace(name)
	if s.loggerProvider != nil && name != "" {
		if named := s.loggerProvider.GetLogger(name); named != nil {
			return named
		}
	}
	return glog.Ensure(s.logger)
}
