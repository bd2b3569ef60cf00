package core

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// RenewSystemAuthorization asks the account store to refresh the enrolled
// account's credential and delivers the result on the main queue.
//
// The store hangs forever when renewal is requested while access is switched
// off, so the call is only made once the account type exists, access was
// granted and an account is enrolled. Otherwise a Rejected outcome is
// synthesized locally.
func (s *Service) RenewSystemAuthorization(ctx context.Context, handler RenewalHandler) error {
	if s == nil {
		return fmt.Errorf("core: service is nil")
	}
	if handler == nil {
		return invalidUsageError("core: renewal handler is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithoutCancel(ctx)
	startedAt := time.Now().UTC()
	requestID := s.nextRequestID()

	accountType := s.accountType
	granted := accountType != nil && accountType.AccessGranted()
	var accounts []Account
	if granted {
		accounts = s.accounts(ctx)
	}
	if !granted || len(accounts) == 0 || accounts[0] == nil {
		guardErr := renewalGuardError(accountType != nil, granted)
		s.dispatch(ctx, "renew_system_authorization", func() {
			s.finishRenewal(ctx, startedAt, requestID, handler, RenewalOutcome{Result: RenewalRejected, Err: guardErr})
		})
		return nil
	}

	var completed atomic.Bool
	s.accountStore.RenewCredentials(ctx, accounts[0], func(result RenewalResult, err error) {
		if !completed.CompareAndSwap(false, true) {
			s.logWarn(ctx, "duplicate renewal completion ignored", map[string]any{
				"request_id": requestID,
			})
			return
		}
		if err != nil {
			s.logInfo(ctx, "renew credentials completed with error", map[string]any{
				"request_id": requestID,
				"result":     result.String(),
				"error":      err.Error(),
			})
		}
		s.dispatch(ctx, "renew_system_authorization", func() {
			s.finishRenewal(ctx, startedAt, requestID, handler, RenewalOutcome{Result: result, Err: err})
		})
	})
	return nil
}

func (s *Service) finishRenewal(
	ctx context.Context,
	startedAt time.Time,
	requestID string,
	handler RenewalHandler,
	outcome RenewalOutcome,
) {
	observed := outcome.Err
	if observed == nil && outcome.Result != RenewalRenewed {
		observed = errors.New("renewal " + outcome.Result.String())
	}
	s.observeOperation(ctx, startedAt, "renew_system_authorization", observed, map[string]any{
		"request_id": requestID,
		"result":     outcome.Result.String(),
	})
	handler(outcome)
}

func asAccountStoreError(err error) (*AccountStoreError, bool) {
	var storeErr *AccountStoreError
	if errors.As(err, &storeErr) && storeErr != nil {
		return storeErr, true
	}
	return nil, false
}
