package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	SystemAuthErrorInvalidUsage         = "SYSTEMAUTH_INVALID_USAGE"
	SystemAuthErrorInvalidOperation     = "SYSTEMAUTH_INVALID_OPERATION"
	SystemAuthErrorSystemError          = "SYSTEMAUTH_SYSTEM_ERROR"
	SystemAuthErrorDisallowedNoError    = "SYSTEMAUTH_SYSTEM_DISALLOWED_WITHOUT_ERROR"
	SystemAuthErrorPasswordChanged      = "SYSTEMAUTH_SYSTEM_PASSWORD_CHANGED"
	SystemAuthErrorAccessNotGranted     = "SYSTEMAUTH_ACCESS_NOT_GRANTED"
	SystemAuthErrorAccountNotConfigured = "SYSTEMAUTH_ACCOUNT_NOT_CONFIGURED"
	SystemAuthErrorAccountStore         = "SYSTEMAUTH_ACCOUNT_STORE_ERROR"
	SystemAuthErrorPreferences          = "SYSTEMAUTH_PREFERENCES_ERROR"
	SystemAuthErrorInternal             = "SYSTEMAUTH_INTERNAL_ERROR"
)

// Login failure reasons passed to LoginErrorBuilder.
const (
	LoginFailedReasonSystemError             = "com.facebook.sdk:SystemLoginFailedSystemError"
	LoginFailedReasonSystemDisallowedNoError = "com.facebook.sdk:SystemLoginDisallowedWithoutError"
	LoginFailedReasonSystemPasswordChanged   = "com.facebook.sdk:SystemLoginPasswordChange"
)

var (
	ErrInvalidUsage     = errors.New("core: invalid usage")
	ErrInvalidOperation = errors.New("core: invalid operation")
	ErrQueueClosed      = errors.New("core: main queue is closed")
)

const (
	accessNotGrantedMessage     = "access has not been granted to the account, verify device settings"
	accountNotConfiguredMessage = "the account has not been configured on the device"
)

// IsInvalidUsage reports whether err is a caller contract violation raised
// synchronously by the adapter.
func IsInvalidUsage(err error) bool {
	return errors.Is(err, ErrInvalidUsage) || hasTextCode(err, SystemAuthErrorInvalidUsage)
}

func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation) || hasTextCode(err, SystemAuthErrorInvalidOperation)
}

func invalidUsageError(message string) *goerrors.Error {
	err := goerrors.Wrap(ErrInvalidUsage, goerrors.CategoryBadInput, message).
		WithCode(http.StatusBadRequest).
		WithTextCode(SystemAuthErrorInvalidUsage)
	err.Message = message
	return err
}

func invalidOperationError(message string) *goerrors.Error {
	err := goerrors.Wrap(ErrInvalidOperation, goerrors.CategoryOperation, message).
		WithCode(http.StatusBadRequest).
		WithTextCode(SystemAuthErrorInvalidOperation)
	err.Message = message
	return err
}

func hasTextCode(err error, code string) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

func systemAuthErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureSystemAuthErrorEnvelope(richErr)
	}

	var storeErr *AccountStoreError
	if errors.As(err, &storeErr) {
		category := goerrors.CategoryExternal
		if storeErr.Code == AccountErrorPermissionDenied {
			category = goerrors.CategoryAuthz
		}
		return ensureSystemAuthErrorEnvelope(
			goerrors.Wrap(err, category, "account store request failed").
				WithTextCode(SystemAuthErrorAccountStore),
		)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "preference"):
		return wrapSystemAuthError(err, goerrors.CategoryInternal, SystemAuthErrorPreferences)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return wrapSystemAuthError(err, goerrors.CategoryBadInput, SystemAuthErrorInvalidUsage)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureSystemAuthErrorEnvelope(mapped)
}

func wrapSystemAuthError(source error, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureSystemAuthErrorEnvelope(
		goerrors.Wrap(source, category, source.Error()).
			WithTextCode(textCode),
	)
}

func ensureSystemAuthErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = systemAuthHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultSystemAuthTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultSystemAuthTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return SystemAuthErrorInvalidUsage
	case goerrors.CategoryOperation:
		return SystemAuthErrorInvalidOperation
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return SystemAuthErrorAccessNotGranted
	case goerrors.CategoryExternal:
		return SystemAuthErrorAccountStore
	default:
		return SystemAuthErrorInternal
	}
}

func systemAuthHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation, goerrors.CategoryOperation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// defaultLoginErrorBuilder builds adapter failures when the caller supplies no
// session vocabulary.
type defaultLoginErrorBuilder struct {
	factory ErrorFactory
}

func (b defaultLoginErrorBuilder) LoginFailedError(reason string, code string, inner error) error {
	textCode, category, message := loginFailureShape(reason)
	factory := b.factory
	if factory == nil {
		factory = goerrors.New
	}
	err := factory(message, category)
	if err == nil {
		err = goerrors.New(message, category)
	}
	err = err.WithTextCode(textCode).WithMetadata(map[string]any{"reason": reason})
	if strings.TrimSpace(code) != "" {
		err = err.WithMetadata(map[string]any{"code": code})
	}
	if inner != nil {
		err.Source = inner
	}
	return ensureSystemAuthErrorEnvelope(err)
}

func loginFailureShape(reason string) (string, goerrors.Category, string) {
	switch reason {
	case LoginFailedReasonSystemDisallowedNoError:
		return SystemAuthErrorDisallowedNoError, goerrors.CategoryAuthz, "system login disallowed without an error"
	case LoginFailedReasonSystemPasswordChanged:
		return SystemAuthErrorPasswordChanged, goerrors.CategoryAuth, "system account password changed"
	default:
		return SystemAuthErrorSystemError, goerrors.CategoryExternal, "system login failed"
	}
}

func renewalGuardError(accountTypeResolved bool, accessGranted bool) error {
	if accountTypeResolved && !accessGranted {
		return ensureSystemAuthErrorEnvelope(
			goerrors.New(accessNotGrantedMessage, goerrors.CategoryAuthz).
				WithTextCode(SystemAuthErrorAccessNotGranted),
		)
	}
	return ensureSystemAuthErrorEnvelope(
		goerrors.New(accountNotConfiguredMessage, goerrors.CategoryNotFound).
			WithTextCode(SystemAuthErrorAccountNotConfigured),
	)
}
