package query

const (
	TypeCanRequestAccessWithoutUI = "systemauth.query.access.silent_available"
	TypeForceBlockingRenew        = "systemauth.query.force_blocking_renew.get"
)

type CanRequestAccessWithoutUIMessage struct{}

func (CanRequestAccessWithoutUIMessage) Type() string { return TypeCanRequestAccessWithoutUI }

func (CanRequestAccessWithoutUIMessage) Validate() error { return nil }

type ForceBlockingRenewMessage struct{}

func (ForceBlockingRenewMessage) Type() string { return TypeForceBlockingRenew }

func (ForceBlockingRenewMessage) Validate() error { return nil }
