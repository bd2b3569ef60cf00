package command

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-systemauth/core"
)

func commandDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.SystemAuthErrorInternal)
}

func commandValidationError(field string, message string) error {
	return goerrors.NewValidation("command: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.SystemAuthErrorInvalidUsage).
		WithSeverity(goerrors.SeverityError)
}

func commandCanceledError(err error, message string) error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, message).
		WithCode(http.StatusRequestTimeout).
		WithTextCode(core.SystemAuthErrorInternal)
}
