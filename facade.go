package systemauth

import (
	"fmt"

	systemauthcommand "github.com/goliatone/go-systemauth/command"
	systemauthquery "github.com/goliatone/go-systemauth/query"
)

// CommandQueryService is what the facade wraps. core.Authorizer satisfies it.
type CommandQueryService interface {
	systemauthcommand.AuthorizationService
	systemauthquery.AccessAvailabilityReader
	systemauthquery.ForceBlockingRenewReader
}

type Commands struct {
	RequestAccess         *systemauthcommand.RequestAccessCommand
	RenewAuthorization    *systemauthcommand.RenewAuthorizationCommand
	SetForceBlockingRenew *systemauthcommand.SetForceBlockingRenewCommand
}

type Queries struct {
	CanRequestAccessWithoutUI *systemauthquery.CanRequestAccessWithoutUIQuery
	ForceBlockingRenew        *systemauthquery.ForceBlockingRenewQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("systemauth: command/query service is required")
	}
	return &Facade{
		service: service,
		commands: Commands{
			RequestAccess:         systemauthcommand.NewRequestAccessCommand(service),
			RenewAuthorization:    systemauthcommand.NewRenewAuthorizationCommand(service),
			SetForceBlockingRenew: systemauthcommand.NewSetForceBlockingRenewCommand(service),
		},
		queries: Queries{
			CanRequestAccessWithoutUI: systemauthquery.NewCanRequestAccessWithoutUIQuery(service),
			ForceBlockingRenew:        systemauthquery.NewForceBlockingRenewQuery(service),
		},
	}, nil
}

// NewSharedFacade wraps the process-wide authorizer.
func NewSharedFacade() (*Facade, error) {
	authorizer, err := Shared()
	if err != nil {
		return nil, err
	}
	return NewFacade(authorizer)
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

var _ CommandQueryService = (Authorizer)(nil)
