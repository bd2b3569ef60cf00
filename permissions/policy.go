// Package permissions classifies login permission scopes into read and
// publish sets.
package permissions

import "strings"

// BasicInfo is appended to read-only requests so the store always grants the
// public profile.
const BasicInfo = "basic_info"

var (
	defaultPublishPrefixes = []string{"publish", "manage"}
	defaultPublishExact    = []string{"ads_management", "create_event", "rsvp_event"}
)

// Policy decides which permissions need publish rights. The zero value treats
// nothing as publish; use DefaultPolicy for the standard rules.
type Policy struct {
	PublishPrefixes []string
	PublishExact    []string
}

func DefaultPolicy() Policy {
	return Policy{
		PublishPrefixes: append([]string(nil), defaultPublishPrefixes...),
		PublishExact:    append([]string(nil), defaultPublishExact...),
	}
}

func (p Policy) IsPublishPermission(permission string) bool {
	permission = strings.TrimSpace(permission)
	if permission == "" {
		return false
	}
	for _, prefix := range p.PublishPrefixes {
		if strings.HasPrefix(permission, prefix) {
			return true
		}
	}
	for _, exact := range p.PublishExact {
		if permission == exact {
			return true
		}
	}
	return false
}

// AreAllReadPermissions reports whether no entry needs publish rights. An
// empty set counts as read-only.
func (p Policy) AreAllReadPermissions(permissions []string) bool {
	for _, permission := range permissions {
		if p.IsPublishPermission(permission) {
			return false
		}
	}
	return true
}

// AddBasicInfoPermission returns a copy of permissions that contains
// BasicInfo exactly once.
func (p Policy) AddBasicInfoPermission(permissions []string) []string {
	out := make([]string, 0, len(permissions)+1)
	for _, permission := range permissions {
		if strings.TrimSpace(permission) == BasicInfo {
			return append(out, permissions...)
		}
	}
	out = append(out, permissions...)
	return append(out, BasicInfo)
}
