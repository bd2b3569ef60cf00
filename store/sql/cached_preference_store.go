package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-systemauth/core"
)

const preferenceCacheKeyPrefix = "go-systemauth::preference::v1"

type cachedPreference struct {
	Value bool
	Found bool
}

// CachedPreferenceStore reads through a go-repository-cache service and drops
// the cached entry after every successful write.
type CachedPreferenceStore struct {
	base  core.PreferenceStore
	cache repositorycache.CacheService
}

func NewCachedPreferenceStore(
	base core.PreferenceStore,
	cacheService repositorycache.CacheService,
) (*CachedPreferenceStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base preference store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: preference cache service is required")
	}
	return &CachedPreferenceStore{base: base, cache: cacheService}, nil
}

// PreferenceCacheKey returns go-systemauth::preference::v1::<key> with the key
// URL-path escaped.
func PreferenceCacheKey(key string) (string, error) {
	normalized, err := normalizePreferenceKey(key)
	if err != nil {
		return "", err
	}
	return strings.Join([]string{preferenceCacheKeyPrefix, url.PathEscape(normalized)}, "::"), nil
}

func (s *CachedPreferenceStore) Bool(ctx context.Context, key string) (bool, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return false, false, fmt.Errorf("sqlstore: cached preference store is not configured")
	}
	cacheKey, err := PreferenceCacheKey(key)
	if err != nil {
		return false, false, err
	}
	entry, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (cachedPreference, error) {
		value, found, fetchErr := s.base.Bool(ctx, key)
		if fetchErr != nil {
			return cachedPreference{}, fetchErr
		}
		return cachedPreference{Value: value, Found: found}, nil
	})
	if err != nil {
		return false, false, err
	}
	return entry.Value, entry.Found, nil
}

func (s *CachedPreferenceStore) SetBool(ctx context.Context, key string, value bool) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached preference store is not configured")
	}
	cacheKey, err := PreferenceCacheKey(key)
	if err != nil {
		return err
	}
	if err := s.base.SetBool(ctx, key, value); err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

func (s *CachedPreferenceStore) Flush(ctx context.Context) error {
	if s == nil || s.base == nil {
		return fmt.Errorf("sqlstore: cached preference store is not configured")
	}
	return s.base.Flush(ctx)
}
