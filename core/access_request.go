package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// appIDMismatchMarker is what the account store puts in a permission-denied
// description when the app identifier does not match the one bound to the
// installed bundle.
const appIDMismatchMarker = "remote_app_id does not match stored id"

const diagnosticCategoryDeveloperErrors = "developer_errors"

// RequestAccess asks the account store for a token. It returns immediately;
// the outcome reaches handler exactly once, on the main queue. Caller misuse
// (empty app id, nil handler, publish permissions on a reauthorize without an
// audience) is returned synchronously and handler is never called.
func (s *Service) RequestAccess(ctx context.Context, req AccessRequest, handler AccessHandler) error {
	if s == nil {
		return fmt.Errorf("core: service is nil")
	}
	return s.requestAccess(ctx, req, handler, s.loginErrors())
}

// RequestAccessForSession derives the request from session. Failures are
// built with the session's LoginErrorBuilder when it has one.
func (s *Service) RequestAccessForSession(ctx context.Context, session SessionContext, handler AccessHandler) error {
	if s == nil {
		return fmt.Errorf("core: service is nil")
	}
	if session == nil {
		return invalidUsageError("core: session is required")
	}
	builder := s.loginErrors()
	if sessionBuilder, ok := session.(LoginErrorBuilder); ok && sessionBuilder != nil {
		builder = sessionBuilder
	}
	req := AccessRequest{
		Permissions:     session.Permissions(),
		DefaultAudience: session.LastRequestedSystemAudience(),
		IsReauthorize:   false,
		AppID:           session.AppID(),
	}
	return s.requestAccess(ctx, req, handler, builder)
}

func (s *Service) requestAccess(ctx context.Context, req AccessRequest, handler AccessHandler, builder LoginErrorBuilder) error {
	if ctx == nil {
		ctx = context.Background()
	}
	appID := strings.TrimSpace(req.AppID)
	if appID == "" {
		return invalidUsageError("core: app id is required")
	}
	if handler == nil {
		return invalidUsageError("core: access handler is required")
	}

	permissions := append([]string(nil), req.Permissions...)
	if s.permissionPolicy.AreAllReadPermissions(permissions) {
		permissions = s.permissionPolicy.AddBasicInfoPermission(permissions)
	}

	audience := req.DefaultAudience.SystemAudience()
	if audience == SystemAudienceAbsent && req.IsReauthorize {
		for _, permission := range permissions {
			if s.permissionPolicy.IsPublishPermission(permission) {
				return invalidOperationError(fmt.Sprintf(
					"core: publish permission %q requires a default audience when reauthorizing", permission,
				))
			}
		}
	}

	flow := &accessFlow{
		service:   s,
		ctx:       context.WithoutCancel(ctx),
		requestID: s.nextRequestID(),
		startedAt: time.Now().UTC(),
		options: AccessOptions{
			AppID:       appID,
			Permissions: permissions,
			Audience:    audience,
		},
		reauthorize: req.IsReauthorize,
		handler:     handler,
		errors:      builder,
	}

	forceRenew, err := s.ForceBlockingRenew(flow.ctx)
	if err != nil {
		s.logError(flow.ctx, "force blocking renew read failed", map[string]any{
			"request_id": flow.requestID,
			"error":      err.Error(),
		})
		forceRenew = false
	}
	if forceRenew && len(s.accounts(flow.ctx)) > 0 {
		flow.renewed = true
		return s.RenewSystemAuthorization(flow.ctx, flow.afterRenewal)
	}

	flow.issue()
	return nil
}

// accessFlow carries one RequestAccess call from validation to delivery.
type accessFlow struct {
	service     *Service
	ctx         context.Context
	requestID   string
	startedAt   time.Time
	options     AccessOptions
	reauthorize bool
	renewed     bool
	handler     AccessHandler
	errors      LoginErrorBuilder

	completed atomic.Bool
	finished  sync.Once
}

// afterRenewal runs on the main queue.
func (f *accessFlow) afterRenewal(outcome RenewalOutcome) {
	s := f.service
	if outcome.Result != RenewalRenewed {
		f.finish(FailureOutcome(
			ErrorKindPasswordChanged,
			f.errors.LoginFailedError(LoginFailedReasonSystemPasswordChanged, "", outcome.Err),
		))
		return
	}
	if err := s.SetForceBlockingRenew(f.ctx, false); err != nil {
		s.logError(f.ctx, "force blocking renew reset failed", map[string]any{
			"request_id": f.requestID,
			"error":      err.Error(),
		})
	}
	f.issue()
}

func (f *accessFlow) issue() {
	s := f.service
	if s.accountType == nil {
		s.dispatch(f.ctx, "request_access", func() {
			f.finish(FailureOutcome(
				ErrorKindSystemError,
				f.errors.LoginFailedError(LoginFailedReasonSystemError, "", nil),
			))
		})
		return
	}

	s.accountStore.RequestAccess(f.ctx, s.accountType, f.options, func(granted bool, err error) {
		if !f.completed.CompareAndSwap(false, true) {
			s.logWarn(f.ctx, "duplicate access completion ignored", map[string]any{
				"request_id": f.requestID,
			})
			return
		}
		s.diagnoseAccessError(err)
		s.dispatch(f.ctx, "request_access", func() {
			f.finish(f.resolve(granted, err))
		})
	})
}

// resolve runs on the main queue. A store that reports neither a token nor an
// error is treated as a denial.
func (f *accessFlow) resolve(granted bool, err error) AuthorizationOutcome {
	s := f.service
	token := ""
	if granted {
		token = s.firstAccountToken(f.ctx)
	}
	if token != "" {
		if err != nil {
			s.logWarn(f.ctx, "access granted with an accompanying error", map[string]any{
				"request_id": f.requestID,
				"error":      err.Error(),
			})
		}
		return TokenOutcome(token)
	}
	if err != nil {
		return FailureOutcome(ErrorKindAccountStore, err)
	}
	return FailureOutcome(
		ErrorKindDisallowedWithoutError,
		f.errors.LoginFailedError(LoginFailedReasonSystemDisallowedNoError, "", nil),
	)
}

func (f *accessFlow) finish(outcome AuthorizationOutcome) {
	f.finished.Do(func() {
		f.service.observeOperation(f.ctx, f.startedAt, "request_access", outcome.Err, map[string]any{
			"request_id":       f.requestID,
			"app_id":           f.options.AppID,
			"permission_count": len(f.options.Permissions),
			"audience":         string(f.options.Audience),
			"reauthorize":      f.reauthorize,
			"renewed_first":    f.renewed,
			"outcome_kind":     string(outcome.Kind),
		})
		f.handler(outcome)
	})
}

// diagnoseAccessError flags an app identifier mismatch for developers. It is
// advisory only and never changes what the caller receives.
func (s *Service) diagnoseAccessError(err error) {
	if err == nil {
		return
	}
	storeErr, ok := asAccountStoreError(err)
	if !ok || storeErr.Code != AccountErrorPermissionDenied {
		return
	}
	if !strings.Contains(storeErr.Description, appIDMismatchMarker) {
		return
	}
	s.diagnostics.Once(diagnosticCategoryDeveloperErrors,
		"System authorization failed: the app id does not match the one configured for this bundle. "+
			"Verify the app id and bundle identifier registered with the provider.",
		"error", storeErr.Description,
	)
}
