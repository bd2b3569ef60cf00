package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-systemauth/core"
)

// AuthorizationService is the mutating subset of core.Authorizer.
type AuthorizationService interface {
	RequestAccess(ctx context.Context, req core.AccessRequest, handler core.AccessHandler) error
	RenewSystemAuthorization(ctx context.Context, handler core.RenewalHandler) error
	SetForceBlockingRenew(ctx context.Context, value bool) error
}

// RequestAccessCommand runs an access request and waits for its outcome. The
// outcome is stored in the context result collector; a failed outcome is also
// returned as the error.
type RequestAccessCommand struct {
	service AuthorizationService
}

func NewRequestAccessCommand(service AuthorizationService) *RequestAccessCommand {
	return &RequestAccessCommand{service: service}
}

func (c *RequestAccessCommand) Execute(ctx context.Context, msg RequestAccessMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: authorization service is required")
	}
	outcomes := make(chan core.AuthorizationOutcome, 1)
	if err := c.service.RequestAccess(ctx, msg.Request, func(outcome core.AuthorizationOutcome) {
		outcomes <- outcome
	}); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return commandCanceledError(ctx.Err(), "command: request access canceled while waiting for outcome")
	case outcome := <-outcomes:
		storeResult(ctx, outcome)
		return outcome.Err
	}
}

// RenewAuthorizationCommand waits for a renewal. Anything other than
// RenewalRenewed is returned as an error after the outcome is stored.
type RenewAuthorizationCommand struct {
	service AuthorizationService
}

func NewRenewAuthorizationCommand(service AuthorizationService) *RenewAuthorizationCommand {
	return &RenewAuthorizationCommand{service: service}
}

func (c *RenewAuthorizationCommand) Execute(ctx context.Context, _ RenewAuthorizationMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: authorization service is required")
	}
	outcomes := make(chan core.RenewalOutcome, 1)
	if err := c.service.RenewSystemAuthorization(ctx, func(outcome core.RenewalOutcome) {
		outcomes <- outcome
	}); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return commandCanceledError(ctx.Err(), "command: renewal canceled while waiting for outcome")
	case outcome := <-outcomes:
		storeResult(ctx, outcome)
		if outcome.Result == core.RenewalRenewed {
			return nil
		}
		if outcome.Err != nil {
			return outcome.Err
		}
		return commandDependencyError("command: renewal " + outcome.Result.String())
	}
}

type SetForceBlockingRenewCommand struct {
	service AuthorizationService
}

func NewSetForceBlockingRenewCommand(service AuthorizationService) *SetForceBlockingRenewCommand {
	return &SetForceBlockingRenewCommand{service: service}
}

func (c *SetForceBlockingRenewCommand) Execute(ctx context.Context, msg SetForceBlockingRenewMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: authorization service is required")
	}
	return c.service.SetForceBlockingRenew(ctx, msg.Value)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
