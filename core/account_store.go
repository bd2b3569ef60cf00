package core

import "context"

// UnavailableAccountStore stands in on platforms without an integrated
// account store. It resolves no account type, so every access request fails
// with a system error and every renewal is rejected locally.
type UnavailableAccountStore struct{}

func (UnavailableAccountStore) AccountTypeWithIdentifier(context.Context, string) AccountType {
	return nil
}

func (UnavailableAccountStore) AccountsWithType(context.Context, AccountType) []Account {
	return nil
}

func (UnavailableAccountStore) RequestAccess(_ context.Context, _ AccountType, _ AccessOptions, completion AccessCompletion) {
	if completion != nil {
		completion(false, &AccountStoreError{Code: AccountErrorUnknown, Description: "account store unavailable"})
	}
}

func (UnavailableAccountStore) RenewCredentials(_ context.Context, _ Account, completion RenewalCompletion) {
	if completion != nil {
		completion(RenewalFailed, &AccountStoreError{Code: AccountErrorUnknown, Description: "account store unavailable"})
	}
}
