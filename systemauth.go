// Package systemauth obtains OAuth tokens from an operating-system account
// store on behalf of an application. The core package holds the adapter; this
// package re-exports its surface and wires the command/query facade.
package systemauth

import "github.com/goliatone/go-systemauth/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type Authorizer = core.Authorizer
type AccountStore = core.AccountStore
type AccountType = core.AccountType
type Account = core.Account
type Credential = core.Credential
type PreferenceStore = core.PreferenceStore
type PermissionPolicy = core.PermissionPolicy
type SessionContext = core.SessionContext
type LoginErrorBuilder = core.LoginErrorBuilder
type MainQueue = core.MainQueue

type AccessRequest = core.AccessRequest
type AccessHandler = core.AccessHandler
type AuthorizationOutcome = core.AuthorizationOutcome
type RenewalHandler = core.RenewalHandler
type RenewalOutcome = core.RenewalOutcome
type RenewalResult = core.RenewalResult
type Audience = core.Audience
type ErrorKind = core.ErrorKind

var (
	WithLogger             = core.WithLogger
	WithLoggerProvider     = core.WithLoggerProvider
	WithMetricsRecorder    = core.WithMetricsRecorder
	WithErrorFactory       = core.WithErrorFactory
	WithErrorMapper        = core.WithErrorMapper
	WithConfigProvider     = core.WithConfigProvider
	WithOptionsResolver    = core.WithOptionsResolver
	WithAccountStore       = core.WithAccountStore
	WithPreferenceStore    = core.WithPreferenceStore
	WithPermissionPolicy   = core.WithPermissionPolicy
	WithMainQueue          = core.WithMainQueue
	WithRequestIDGenerator = core.WithRequestIDGenerator
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}

// Shared returns the process-wide authorizer, building it on first use.
func Shared() (Authorizer, error) {
	return core.Shared()
}

func SetShared(authorizer Authorizer) error {
	return core.SetShared(authorizer)
}

func SetSharedFactory(factory func() (Authorizer, error)) {
	core.SetSharedFactory(factory)
}
