package core

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

type fixedConfigProvider struct {
	cfg Config
}

func (p *fixedConfigProvider) Load(context.Context, Config) (Config, error) {
	return p.cfg, nil
}

type fixedOptionsResolver struct {
	cfg Config
}

func (r *fixedOptionsResolver) Resolve(Config, Config, Config) (Config, error) {
	return r.cfg, nil
}

type failingRawLoader struct {
	err error
}

func (l failingRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	return nil, l.err
}

func TestNewService_DefaultDependencies(t *testing.T) {
	svc, err := NewService(Config{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	deps := svc.Dependencies()
	if deps.Logger == nil || deps.LoggerProvider == nil {
		t.Fatalf("expected default logger and provider")
	}
	if deps.ErrorFactory == nil || deps.ErrorMapper == nil {
		t.Fatalf("expected default error factory and mapper")
	}
	if deps.ConfigProvider == nil || deps.OptionsResolver == nil {
		t.Fatalf("expected default config provider and options resolver")
	}
	if _, ok := deps.AccountStore.(UnavailableAccountStore); !ok {
		t.Fatalf("expected unavailable account store by default, got %T", deps.AccountStore)
	}
	if deps.AccountType != nil {
		t.Fatalf("expected no account type without a store")
	}
	if _, ok := deps.PreferenceStore.(*MemoryPreferenceStore); !ok {
		t.Fatalf("expected memory preference store by default, got %T", deps.PreferenceStore)
	}
	if _, ok := deps.MainQueue.(*SerialQueue); !ok {
		t.Fatalf("expected owned serial queue by default, got %T", deps.MainQueue)
	}
	if got := svc.Config(); got != DefaultConfig() {
		t.Fatalf("expected default config, got %#v", got)
	}
}

func TestNewService_WithXOverrides(t *testing.T) {
	customLogger := stubLogger{}
	customProvider := stubLoggerProvider{logger: customLogger}
	customFactory := func(message string, category ...goerrors.Category) *goerrors.Error {
		return goerrors.New("custom:"+message, category...)
	}
	sentinel := errors.New("sentinel")
	customMapper := func(error) *goerrors.Error {
		return goerrors.Wrap(sentinel, goerrors.CategoryOperation, "mapped")
	}
	configProvider := &fixedConfigProvider{cfg: Config{ServiceName: "from-provider"}}
	optionsResolver := &fixedOptionsResolver{cfg: Config{
		ServiceName:             "resolved",
		AccountTypeIdentifier:   "com.example.social",
		ForceRenewPreferenceKey: "resolved.key",
	}}
	store := &stubAccountStore{accountType: grantedType()}
	prefs := NewMemoryPreferenceStore()
	queue := newRecordingQueue(t)

	svc, err := NewService(Config{ServiceName: "runtime"},
		WithLogger(customLogger),
		WithLoggerProvider(customProvider),
		WithErrorFactory(customFactory),
		WithErrorMapper(customMapper),
		WithConfigProvider(configProvider),
		WithOptionsResolver(optionsResolver),
		WithAccountStore(store),
		WithPreferenceStore(prefs),
		WithMainQueue(queue),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	deps := svc.Dependencies()
	if deps.Logger != customLogger {
		t.Fatalf("expected custom logger override")
	}
	if resolved := deps.LoggerProvider.GetLogger("systemauth.override"); resolved != customLogger {
		t.Fatalf("expected logger provider to resolve custom logger")
	}
	if deps.ConfigProvider != configProvider || deps.OptionsResolver != optionsResolver {
		t.Fatalf("expected config provider and options resolver overrides")
	}
	if deps.AccountStore != store || deps.PreferenceStore != prefs || deps.MainQueue != queue {
		t.Fatalf("expected store, preference and queue overrides")
	}
	if got := svc.Config().ServiceName; got != "resolved" {
		t.Fatalf("expected options resolver output config, got %q", got)
	}
	store.mu.Lock()
	lookups := append([]string(nil), store.lookups...)
	store.mu.Unlock()
	if len(lookups) != 1 || lookups[0] != "com.example.social" {
		t.Fatalf("expected lookup with resolved identifier, got %#v", lookups)
	}
}

func TestNewService_WithLoggerAloneIsUsed(t *testing.T) {
	logger := newCaptureLogger()
	svc, err := NewService(Config{}, WithLogger(logger))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	deps := svc.Dependencies()
	if deps.Logger != Logger(logger) {
		t.Fatalf("expected injected logger, got %T", deps.Logger)
	}
	if deps.LoggerProvider == nil {
		t.Fatalf("expected provider derived from the injected logger")
	}
	if resolved := deps.LoggerProvider.GetLogger("systemauth"); resolved != Logger(logger) {
		t.Fatalf("expected derived provider to return injected logger, got %T", resolved)
	}

	if err := svc.SetForceBlockingRenew(context.Background(), true); err != nil {
		t.Fatalf("set force renew: %v", err)
	}
	if logger.count("info", "force blocking renew updated") != 1 {
		t.Fatalf("expected service log to reach injected logger, got %#v", logger.snapshot())
	}
}

func TestNewService_ConfigLayeringPrecedence(t *testing.T) {
	provider := NewCfgxConfigProvider(NewStaticConfigLoader(map[string]any{
		"service_name":            "from-config",
		"account_type_identifier": "com.example.config",
	}))

	svc, err := NewService(Config{ServiceName: "from-runtime"}, WithConfigProvider(provider))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	cfg := svc.Config()
	if cfg.ServiceName != "from-runtime" {
		t.Fatalf("expected runtime value to override config/default, got %q", cfg.ServiceName)
	}
	if cfg.AccountTypeIdentifier != "com.example.config" {
		t.Fatalf("expected config layer identifier, got %q", cfg.AccountTypeIdentifier)
	}
	if cfg.ForceRenewPreferenceKey != DefaultForceRenewPreferenceKey {
		t.Fatalf("expected default preference key, got %q", cfg.ForceRenewPreferenceKey)
	}
}

func TestNewService_ConfigLoaderErrorIsMapped(t *testing.T) {
	cause := errors.New("config source unavailable")
	_, err := NewService(Config{}, WithConfigProvider(NewCfgxConfigProvider(failingRawLoader{err: cause})))
	if err == nil {
		t.Fatalf("expected config load error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected mapped error, got %T", err)
	}
}

func TestConfigValidate_RequiresFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AccountTypeIdentifier = " "
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing identifier to fail validation")
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}
