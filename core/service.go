package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/goliatone/go-systemauth/permissions"
)

// Service is the system account adapter. It owns the account store handle and
// the account type resolved at construction; both are read-only afterwards.
// The force-blocking-renew flag is the only mutable state and lives in the
// preference store.
type Service struct {
	config           Config
	logger           Logger
	loggerProvider   LoggerProvider
	metricsRecorder  MetricsRecorder
	errorFactory     ErrorFactory
	errorMapper      ErrorMapper
	configProvider   ConfigProvider
	optionsResolver  OptionsResolver
	accountStore     AccountStore
	accountType      AccountType
	preferenceStore  PreferenceStore
	permissionPolicy PermissionPolicy
	mainQueue        MainQueue
	ownedQueue       *SerialQueue
	diagnostics      *DeveloperLog
	requestIDs       func() string

	preferenceMu sync.Mutex
	closeOnce    sync.Once
}

type ServiceDependencies struct {
	Logger           Logger
	LoggerProvider   LoggerProvider
	MetricsRecorder  MetricsRecorder
	ErrorFactory     ErrorFactory
	ErrorMapper      ErrorMapper
	ConfigProvider   ConfigProvider
	OptionsResolver  OptionsResolver
	AccountStore     AccountStore
	AccountType      AccountType
	PreferenceStore  PreferenceStore
	PermissionPolicy PermissionPolicy
	MainQueue        MainQueue
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("systemauth", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("systemauth"); named != nil {
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
	if builder.accountStore == nil {
		builder.accountStore = UnavailableAccountStore{}
	}
	if builder.preferenceStore == nil {
		builder.preferenceStore = NewMemoryPreferenceStore()
	}
	if builder.permissionPolicy == nil {
		builder.permissionPolicy = permissions.DefaultPolicy()
	}
	if builder.requestIDs == nil {
		builder.requestIDs = uuid.NewString
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

	var ownedQueue *SerialQueue
	mainQueue := builder.mainQueue
	if mainQueue == nil {
		ownedQueue = NewSerialQueue(WithQueueLogger(logger))
		mainQueue = ownedQueue
	}

	accountType := builder.accountStore.AccountTypeWithIdentifier(context.Background(), finalConfig.AccountTypeIdentifier)

	return &Service{
		config:           finalConfig,
		logger:           logger,
		loggerProvider:   provider,
		metricsRecorder:  builder.metricsRecorder,
		errorFactory:     builder.errorFactory,
		errorMapper:      builder.errorMapper,
		configProvider:   builder.configProvider,
		optionsResolver:  builder.optionsResolver,
		accountStore:     builder.accountStore,
		accountType:      accountType,
		preferenceStore:  builder.preferenceStore,
		permissionPolicy: builder.permissionPolicy,
		mainQueue:        mainQueue,
		ownedQueue:       ownedQueue,
		diagnostics:      NewDeveloperLog(logger),
		requestIDs:       builder.requestIDs,
	}, nil
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

// Close releases the main queue when the service created it. Deliveries
// already queued still run.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}
	var err error
	s.closeOnce.Do(func() {
		if s.ownedQueue != nil {
			err = s.ownedQueue.Close()
		}
	})
	return err
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
		Logger:           s.logger,
		LoggerProvider:   s.loggerProvider,
		MetricsRecorder:  s.metricsRecorder,
		ErrorFactory:     s.errorFactory,
		ErrorMapper:      s.errorMapper,
		ConfigProvider:   s.configProvider,
		OptionsResolver:  s.optionsResolver,
		AccountStore:     s.accountStore,
		AccountType:      s.accountType,
		PreferenceStore:  s.preferenceStore,
		PermissionPolicy: s.permissionPolicy,
		MainQueue:        s.mainQueue,
	}
}

// ForceBlockingRenew reads the persisted flag. A key that was never written
// reads as false.
func (s *Service) ForceBlockingRenew(ctx context.Context) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("core: service is nil")
	}
	s.preferenceMu.Lock()
	defer s.preferenceMu.Unlock()
	return s.readForceBlockingRenew(ctx)
}

// SetForceBlockingRenew persists value only when it differs from the stored
// one; an unchanged value performs no write and no flush.
func (s *Service) SetForceBlockingRenew(ctx context.Context, value bool) error {
	if s == nil {
		return fmt.Errorf("core: service is nil")
	}
	s.preferenceMu.Lock()
	defer s.preferenceMu.Unlock()

	current, err := s.readForceBlockingRenew(ctx)
	if err != nil {
		return err
	}
	if current == value {
		return nil
	}
	key := s.forceRenewKey()
	if err := s.preferenceStore.SetBool(ctx, key, value); err != nil {
		return s.mapError(fmt.Errorf("core: preference write failed: %w", err))
	}
	if err := s.preferenceStore.Flush(ctx); err != nil {
		return s.mapError(fmt.Errorf("core: preference flush failed: %w", err))
	}
	s.logInfo(ctx, "force blocking renew updated", map[string]any{
		"preference_key": key,
		"value":          value,
	})
	return nil
}

func (s *Service) readForceBlockingRenew(ctx context.Context) (bool, error) {
	value, found, err := s.preferenceStore.Bool(ctx, s.forceRenewKey())
	if err != nil {
		return false, s.mapError(fmt.Errorf("core: preference read failed: %w", err))
	}
	if !found {
		return false, nil
	}
	return value, nil
}

func (s *Service) forceRenewKey() string {
	key := strings.TrimSpace(s.config.ForceRenewPreferenceKey)
	if key == "" {
		return DefaultForceRenewPreferenceKey
	}
	return key
}

// CanRequestAccessWithoutUI reports whether a token is already available
// without a round trip: the account type exists, access was granted, an
// account is enrolled and its credential carries a token.
func (s *Service) CanRequestAccessWithoutUI(ctx context.Context) bool {
	if s == nil || s.accountType == nil || !s.accountType.AccessGranted() {
		return false
	}
	return s.firstAccountToken(ctx) != ""
}

func (s *Service) accounts(ctx context.Context) []Account {
	if s.accountType == nil {
		return nil
	}
	return s.accountStore.AccountsWithType(ctx, s.accountType)
}

func (s *Service) firstAccountToken(ctx context.Context) string {
	accounts := s.accounts(ctx)
	if len(accounts) == 0 || accounts[0] == nil {
		return ""
	}
	credential := accounts[0].Credential()
	if credential == nil {
		return ""
	}
	return credential.OAuthToken()
}

// dispatch posts task onto the main queue. If the queue refuses it the task
// runs inline so the outcome is still delivered.
func (s *Service) dispatch(ctx context.Context, operation string, task func()) {
	if err := s.mainQueue.Dispatch(task); err != nil {
		s.logError(ctx, "main queue dispatch failed, delivering inline", map[string]any{
			"operation": operation,
			"error":     err.Error(),
		})
		task()
	}
}

func (s *Service) loginErrors() LoginErrorBuilder {
	return defaultLoginErrorBuilder{factory: s.errorFactory}
}

func (s *Service) nextRequestID() string {
	if s.requestIDs == nil {
		return uuid.NewString()
	}
	return s.requestIDs()
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}
