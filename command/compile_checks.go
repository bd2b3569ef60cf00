package command

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-systemauth/core"
)

var (
	_ gocmd.Commander[RequestAccessMessage]         = (*RequestAccessCommand)(nil)
	_ gocmd.Commander[RenewAuthorizationMessage]    = (*RenewAuthorizationCommand)(nil)
	_ gocmd.Commander[SetForceBlockingRenewMessage] = (*SetForceBlockingRenewCommand)(nil)

	_ AuthorizationService = (core.Authorizer)(nil)
)
