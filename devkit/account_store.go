// Package devkit provides an in-memory account store for tests and for
// running the adapter on hosts without an integrated account store.
package devkit

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-systemauth/core"
)

type AccountType struct {
	id      string
	granted atomic.Bool
}

func NewAccountType(identifier string, granted bool) *AccountType {
	accountType := &AccountType{id: identifier}
	accountType.granted.Store(granted)
	return accountType
}

func (t *AccountType) Identifier() string {
	if t == nil {
		return ""
	}
	return t.id
}

func (t *AccountType) AccessGranted() bool {
	return t != nil && t.granted.Load()
}

type Credential struct {
	Token string
}

func (c Credential) OAuthToken() string { return c.Token }

// Account is an enrolled account whose token can be swapped while readers
// hold it.
type Account struct {
	id    string
	mu    sync.RWMutex
	token string
}

func NewAccount(id string, token string) *Account {
	return &Account{id: id, token: token}
}

func (a *Account) Identifier() string { return a.id }

// Credential returns nil for an account without a token.
func (a *Account) Credential() core.Credential {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.token == "" {
		return nil
	}
	return Credential{Token: a.token}
}

func (a *Account) SetToken(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = token
}

// AccessScript decides how a RequestAccess call completes. Returning a
// non-empty token enrolls an account carrying it before completion.
type AccessScript func(options core.AccessOptions) (granted bool, token string, err error)

// RenewScript decides how a RenewCredentials call completes. On
// RenewalRenewed a non-empty token replaces the account's credential.
type RenewScript func(account core.Account) (result core.RenewalResult, token string, err error)

// AccountStore is a scripted core.AccountStore. Completions are always
// delivered from a separate goroutine.
type AccountStore struct {
	mu          sync.Mutex
	accountType *AccountType
	accounts    []core.Account
	access      AccessScript
	renew       RenewScript
	accessCalls []core.AccessOptions
	renewCalls  int
	wg          sync.WaitGroup
}

type Option func(*AccountStore)

// WithAccountType registers the account type the store resolves. Without it
// AccountTypeWithIdentifier returns nil.
func WithAccountType(identifier string, granted bool) Option {
	return func(s *AccountStore) {
		s.accountType = NewAccountType(identifier, granted)
	}
}

func WithAccount(id string, token string) Option {
	return func(s *AccountStore) {
		s.accounts = append(s.accounts, NewAccount(id, token))
	}
}

func WithAccessScript(script AccessScript) Option {
	return func(s *AccountStore) {
		s.access = script
	}
}

func WithRenewScript(script RenewScript) Option {
	return func(s *AccountStore) {
		s.renew = script
	}
}

func NewAccountStore(opts ...Option) *AccountStore {
	store := &AccountStore{}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

func (s *AccountStore) AccountTypeWithIdentifier(_ context.Context, identifier string) core.AccountType {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accountType == nil || s.accountType.Identifier() != identifier {
		return nil
	}
	return s.accountType
}

func (s *AccountStore) AccountsWithType(_ context.Context, accountType core.AccountType) []core.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accountType == nil || accountType == nil || accountType.Identifier() != s.accountType.Identifier() {
		return nil
	}
	return append([]core.Account(nil), s.accounts...)
}

func (s *AccountStore) RequestAccess(_ context.Context, _ core.AccountType, options core.AccessOptions, completion core.AccessCompletion) {
	s.mu.Lock()
	s.accessCalls = append(s.accessCalls, options)
	script := s.access
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		granted, token, err := true, "", error(nil)
		if script != nil {
			granted, token, err = script(options)
		}
		if token != "" {
			s.enroll(token)
		}
		if completion != nil {
			completion(granted, err)
		}
	}()
}

func (s *AccountStore) RenewCredentials(_ context.Context, account core.Account, completion core.RenewalCompletion) {
	s.mu.Lock()
	s.renewCalls++
	script := s.renew
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		result, token, err := core.RenewalRenewed, "", error(nil)
		if script != nil {
			result, token, err = script(account)
		}
		if result == core.RenewalRenewed && token != "" {
			s.replaceToken(account, token)
		}
		if completion != nil {
			completion(result, err)
		}
	}()
}

// SetAccessGranted flips the OS-level permission for the registered type.
func (s *AccountStore) SetAccessGranted(granted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accountType != nil {
		s.accountType.granted.Store(granted)
	}
}

func (s *AccountStore) AccessCalls() []core.AccessOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.AccessOptions(nil), s.accessCalls...)
}

func (s *AccountStore) RenewCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renewCalls
}

// Wait blocks until every completion started so far has returned.
func (s *AccountStore) Wait() {
	s.wg.Wait()
}

func (s *AccountStore) enroll(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.accounts) > 0 {
		if existing, ok := s.accounts[0].(*Account); ok {
			existing.SetToken(token)
			return
		}
	}
	s.accounts = append(s.accounts, NewAccount("account_1", token))
}

func (s *AccountStore) replaceToken(account core.Account, token string) {
	if existing, ok := account.(*Account); ok {
		existing.SetToken(token)
	}
}

var _ core.AccountStore = (*AccountStore)(nil)
