package gocommand

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"

	systemauthcommand "github.com/goliatone/go-systemauth/command"
	"github.com/goliatone/go-systemauth/core"
	systemauthquery "github.com/goliatone/go-systemauth/query"
)

type okMessage struct{}

func (okMessage) Type() string { return "systemauth.command.ok" }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "" }

type failingMessage struct{}

func (failingMessage) Type() string { return "systemauth.command.fail" }

func (failingMessage) Validate() error { return errors.New("invalid payload") }

type queueMessage struct{}

func (queueMessage) Type() string { return "systemauth.command.queue" }

func TestValidateMessageContract(t *testing.T) {
	if err := ValidateMessageContract(okMessage{}); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := ValidateMessageContract(invalidMessage{}); err == nil {
		t.Fatalf("expected empty type to fail contract validation")
	}
	if err := ValidateMessageContract(failingMessage{}); err == nil {
		t.Fatalf("expected Validate() failure to bubble")
	}
	if err := ValidateMessageContract(systemauthcommand.RequestAccessMessage{}); err == nil {
		t.Fatalf("expected request access without app id to fail")
	}
}

func TestQueueResolverHookWiring(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	queueRegistry := jobqueuecommand.NewRegistry()

	cmd := command.CommandFunc[queueMessage](func(context.Context, queueMessage) error { return nil })

	if err := adapter.AddQueueResolver("queue", queueRegistry); err != nil {
		t.Fatalf("add queue resolver: %v", err)
	}
	if !adapter.HasResolver("queue") {
		t.Fatalf("expected queue resolver to be registered")
	}
	sub, err := RegisterAndSubscribe(adapter, cmd)
	if err != nil {
		t.Fatalf("register command: %v", err)
	}
	defer sub.Unsubscribe()
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	if _, ok := queueRegistry.Get("systemauth.command.queue"); !ok {
		t.Fatalf("expected command to be mirrored into queue registry")
	}
}

type stubAuthorizer struct {
	flag        bool
	silent      bool
	token       string
	renewResult core.RenewalResult
}

func (s *stubAuthorizer) ForceBlockingRenew(context.Context) (bool, error) { return s.flag, nil }

func (s *stubAuthorizer) SetForceBlockingRenew(_ context.Context, value bool) error {
	s.flag = value
	return nil
}

func (s *stubAuthorizer) CanRequestAccessWithoutUI(context.Context) bool { return s.silent }

func (s *stubAuthorizer) RequestAccess(_ context.Context, _ core.AccessRequest, handler core.AccessHandler) error {
	handler(core.TokenOutcome(s.token))
	return nil
}

func (s *stubAuthorizer) RequestAccessForSession(ctx context.Context, session core.SessionContext, handler core.AccessHandler) error {
	return s.RequestAccess(ctx, core.AccessRequest{AppID: session.AppID()}, handler)
}

func (s *stubAuthorizer) RenewSystemAuthorization(_ context.Context, handler core.RenewalHandler) error {
	handler(core.RenewalOutcome{Result: s.renewResult})
	return nil
}

func TestRegisterAuthorizer_DispatchesThroughWrappers(t *testing.T) {
	authorizer := &stubAuthorizer{silent: true, token: "tok_1"}
	adapter := NewRegistryAdapter(nil)

	subs, err := RegisterAuthorizer(adapter, authorizer)
	if err != nil {
		t.Fatalf("register authorizer: %v", err)
	}
	defer subs.Unsubscribe()
	if len(subs) != 5 {
		t.Fatalf("expected five subscriptions, got %d", len(subs))
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	ctx := context.Background()
	if err := Dispatch(ctx, systemauthcommand.SetForceBlockingRenewMessage{Value: true}); err != nil {
		t.Fatalf("dispatch set flag: %v", err)
	}
	if !authorizer.flag {
		t.Fatalf("expected flag to be set through dispatch")
	}

	flag, err := Query[systemauthquery.ForceBlockingRenewMessage, bool](ctx, systemauthquery.ForceBlockingRenewMessage{})
	if err != nil {
		t.Fatalf("query flag: %v", err)
	}
	if !flag {
		t.Fatalf("expected flag query to read true")
	}

	silent, err := Query[systemauthquery.CanRequestAccessWithoutUIMessage, bool](ctx, systemauthquery.CanRequestAccessWithoutUIMessage{})
	if err != nil {
		t.Fatalf("query availability: %v", err)
	}
	if !silent {
		t.Fatalf("expected silent availability")
	}

	if err := Dispatch(ctx, systemauthcommand.RequestAccessMessage{Request: core.AccessRequest{AppID: "123"}}); err != nil {
		t.Fatalf("dispatch request access: %v", err)
	}
	if err := Dispatch(ctx, systemauthcommand.RenewAuthorizationMessage{}); err != nil {
		t.Fatalf("dispatch renew: %v", err)
	}
}

func TestRegisterAuthorizer_RequiresDependencies(t *testing.T) {
	if _, err := RegisterAuthorizer(NewRegistryAdapter(nil), nil); err == nil {
		t.Fatalf("expected missing authorizer error")
	}
	var adapter *RegistryAdapter
	if _, err := RegisterAuthorizer(adapter, &stubAuthorizer{}); err == nil {
		t.Fatalf("expected missing registry error")
	}
}
