package command

import (
	"strings"

	"github.com/goliatone/go-systemauth/core"
)

const (
	TypeRequestAccess         = "systemauth.command.access.request"
	TypeRenewAuthorization    = "systemauth.command.authorization.renew"
	TypeSetForceBlockingRenew = "systemauth.command.force_blocking_renew.set"
)

type RequestAccessMessage struct {
	Request core.AccessRequest
}

func (RequestAccessMessage) Type() string { return TypeRequestAccess }

func (m RequestAccessMessage) Validate() error {
	if strings.TrimSpace(m.Request.AppID) == "" {
		return commandValidationError("app_id", "app id is required")
	}
	if m.Request.DefaultAudience != "" {
		if _, err := core.ParseAudience(string(m.Request.DefaultAudience)); err != nil {
			return commandValidationError("default_audience", err.Error())
		}
	}
	return nil
}

type RenewAuthorizationMessage struct{}

func (RenewAuthorizationMessage) Type() string { return TypeRenewAuthorization }

func (RenewAuthorizationMessage) Validate() error { return nil }

type SetForceBlockingRenewMessage struct {
	Value bool
}

func (SetForceBlockingRenewMessage) Type() string { return TypeSetForceBlockingRenew }

func (SetForceBlockingRenewMessage) Validate() error { return nil }
