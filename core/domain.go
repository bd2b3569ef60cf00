package core

import (
	"fmt"
	"strings"
)

type Audience string

const (
	AudienceNone     Audience = "none"
	AudienceOnlyMe   Audience = "only_me"
	AudienceFriends  Audience = "friends"
	AudienceEveryone Audience = "everyone"
)

// SystemAudience is the account store's audience vocabulary. The empty value
// means no audience was requested.
type SystemAudience string

const (
	SystemAudienceAbsent   SystemAudience = ""
	SystemAudienceOnlyMe   SystemAudience = "ACFacebookAudienceOnlyMe"
	SystemAudienceFriends  SystemAudience = "ACFacebookAudienceFriends"
	SystemAudienceEveryone SystemAudience = "ACFacebookAudienceEveryone"
)

// ParseAudience accepts the canonical names plus a few common spellings. An
// empty value maps to AudienceNone.
func ParseAudience(value string) (Audience, error) {
	normalized := strings.TrimSpace(strings.ToLower(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch normalized {
	case "", "none", "default":
		return AudienceNone, nil
	case "only_me", "onlyme", "self":
		return AudienceOnlyMe, nil
	case "friends":
		return AudienceFriends, nil
	case "everyone", "public":
		return AudienceEveryone, nil
	default:
		return AudienceNone, fmt.Errorf("core: unknown audience %q", value)
	}
}

func (a Audience) SystemAudience() SystemAudience {
	switch a {
	case AudienceOnlyMe:
		return SystemAudienceOnlyMe
	case AudienceFriends:
		return SystemAudienceFriends
	case AudienceEveryone:
		return SystemAudienceEveryone
	default:
		return SystemAudienceAbsent
	}
}

type AccessRequest struct {
	Permissions     []string
	DefaultAudience Audience
	IsReauthorize   bool
	AppID           string
}

// AccessOptions is the bundle handed to AccountStore.RequestAccess.
type AccessOptions struct {
	AppID       string
	Permissions []string
	Audience    SystemAudience
}

func (o AccessOptions) HasAudience() bool {
	return o.Audience != SystemAudienceAbsent
}

type ErrorKind string

const (
	ErrorKindSystemError            ErrorKind = "system_error"
	ErrorKindDisallowedWithoutError ErrorKind = "system_disallowed_without_error"
	ErrorKindPasswordChanged        ErrorKind = "system_password_changed"
	ErrorKindAccountStore           ErrorKind = "account_store"
)

// AuthorizationOutcome carries either a token or a failure, never both.
type AuthorizationOutcome struct {
	Token string
	Kind  ErrorKind
	Err   error
}

func TokenOutcome(token string) AuthorizationOutcome {
	return AuthorizationOutcome{Token: token}
}

func FailureOutcome(kind ErrorKind, cause error) AuthorizationOutcome {
	return AuthorizationOutcome{Kind: kind, Err: cause}
}

func (o AuthorizationOutcome) OK() bool {
	return o.Err == nil && o.Token != ""
}

type AccessHandler func(outcome AuthorizationOutcome)

type RenewalResult int

const (
	RenewalRenewed RenewalResult = iota
	RenewalRejected
	RenewalFailed
)

func (r RenewalResult) String() string {
	switch r {
	case RenewalRenewed:
		return "renewed"
	case RenewalRejected:
		return "rejected"
	case RenewalFailed:
		return "failed"
	default:
		return fmt.Sprintf("renewal_result(%d)", int(r))
	}
}

type RenewalOutcome struct {
	Result RenewalResult
	Err    error
}

type RenewalHandler func(outcome RenewalOutcome)

type AccountErrorCode int

const (
	AccountErrorUnknown AccountErrorCode = iota + 1
	AccountErrorAccountMissingRequiredProperty
	AccountErrorAccountAuthenticationFailed
	AccountErrorAccountTypeInvalid
	AccountErrorAccountAlreadyExists
	AccountErrorAccountNotFound
	AccountErrorPermissionDenied
	AccountErrorAccessInfoInvalid
)

// AccountStoreError is the error shape account stores report through their
// completions.
type AccountStoreError struct {
	Code        AccountErrorCode
	Description string
}

func (e *AccountStoreError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("account store error %d: %s", int(e.Code), e.Description)
}
