package sqlstore

import "github.com/goliatone/go-systemauth/core"

var (
	_ core.PreferenceStore = (*PreferenceStore)(nil)
	_ core.PreferenceStore = (*CachedPreferenceStore)(nil)
)
