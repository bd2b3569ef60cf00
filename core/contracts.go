package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

// AccountType is the account store's handle for one category of third-party
// login. AccessGranted reports whether the user allowed this application to
// use accounts of the type at the OS level.
type AccountType interface {
	Identifier() string
	AccessGranted() bool
}

type Credential interface {
	OAuthToken() string
}

type Account interface {
	Identifier() string
	Credential() Credential
}

// AccessCompletion receives the account store's answer to an access request.
// It may be invoked on any goroutine.
type AccessCompletion func(granted bool, err error)

// RenewalCompletion receives the account store's answer to a credential
// renewal. It may be invoked on any goroutine.
type RenewalCompletion func(result RenewalResult, err error)

// AccountStore is the capability surface consumed from the OS-managed
// credential store. RequestAccess and RenewCredentials must return without
// waiting for the answer.
type AccountStore interface {
	AccountTypeWithIdentifier(ctx context.Context, identifier string) AccountType
	AccountsWithType(ctx context.Context, accountType AccountType) []Account
	RequestAccess(ctx context.Context, accountType AccountType, options AccessOptions, completion AccessCompletion)
	RenewCredentials(ctx context.Context, account Account, completion RenewalCompletion)
}

// PermissionPolicy classifies requested permission scopes.
type PermissionPolicy interface {
	AreAllReadPermissions(permissions []string) bool
	IsPublishPermission(permission string) bool
	AddBasicInfoPermission(permissions []string) []string
}

// PreferenceStore is the persisted key/value store backing sticky adapter
// flags. Bool reports found=false for keys that were never written.
type PreferenceStore interface {
	Bool(ctx context.Context, key string) (value bool, found bool, err error)
	SetBool(ctx context.Context, key string, value bool) error
	Flush(ctx context.Context) error
}

// SessionContext is the caller-side login session the convenience request
// overload derives its parameters from.
type SessionContext interface {
	AppID() string
	Permissions() []string
	LastRequestedSystemAudience() Audience
}

// LoginErrorBuilder lets a session build adapter failures in its own error
// vocabulary. Sessions that do not implement it get go-errors envelopes.
type LoginErrorBuilder interface {
	LoginFailedError(reason string, code string, inner error) error
}

// MainQueue is the designated serial execution context every handler runs on.
type MainQueue interface {
	Dispatch(task func()) error
}

// Authorizer is the public surface of the adapter. Service implements it and
// test doubles substitute it through SetShared.
type Authorizer interface {
	ForceBlockingRenew(ctx context.Context) (bool, error)
	SetForceBlockingRenew(ctx context.Context, value bool) error
	CanRequestAccessWithoutUI(ctx context.Context) bool
	RequestAccess(ctx context.Context, req AccessRequest, handler AccessHandler) error
	RequestAccessForSession(ctx context.Context, session SessionContext, handler AccessHandler) error
	RenewSystemAuthorization(ctx context.Context, handler RenewalHandler) error
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
