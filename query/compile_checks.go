package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-systemauth/core"
)

var (
	_ gocmd.Querier[CanRequestAccessWithoutUIMessage, bool] = (*CanRequestAccessWithoutUIQuery)(nil)
	_ gocmd.Querier[ForceBlockingRenewMessage, bool]        = (*ForceBlockingRenewQuery)(nil)

	_ AccessAvailabilityReader = (core.Authorizer)(nil)
	_ ForceBlockingRenewReader = (core.Authorizer)(nil)
)
