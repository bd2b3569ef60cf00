package core

import (
	"fmt"
	"strings"
)

const (
	DefaultServiceName             = "systemauth"
	DefaultAccountTypeIdentifier   = "com.apple.facebook"
	DefaultForceRenewPreferenceKey = "com.facebook.sdk:ForceBlockingRenewKey"
)

type Config struct {
	ServiceName             string `koanf:"service_name" mapstructure:"service_name"`
	AccountTypeIdentifier   string `koanf:"account_type_identifier" mapstructure:"account_type_identifier"`
	ForceRenewPreferenceKey string `koanf:"force_renew_preference_key" mapstructure:"force_renew_preference_key"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:             DefaultServiceName,
		AccountTypeIdentifier:   DefaultAccountTypeIdentifier,
		ForceRenewPreferenceKey: DefaultForceRenewPreferenceKey,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.AccountTypeIdentifier) == "" {
		return fmt.Errorf("core: account_type_identifier is required")
	}
	if strings.TrimSpace(c.ForceRenewPreferenceKey) == "" {
		return fmt.Errorf("core: force_renew_preference_key is required")
	}
	return nil
}
