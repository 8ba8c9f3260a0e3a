package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-itsm/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const tokenSnapshotCacheKeyPrefix = "go-itsm::token_snapshot::v1"

// CachedTokenStore keeps the hot snapshot in front of the SQL store so the
// credential layer's lazy restore does not hit the database on every start
// of a request burst. Saves write through and invalidate.
type CachedTokenStore struct {
	base  core.TokenStore
	cache repositorycache.CacheService
}

func NewCachedTokenStore(base core.TokenStore, cacheService repositorycache.CacheService) (*CachedTokenStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base token store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: token cache service is required")
	}
	return &CachedTokenStore{base: base, cache: cacheService}, nil
}

// TokenSnapshotCacheKey returns the deterministic cache key for a gateway's
// persisted token: go-itsm::token_snapshot::v1::<gateway_id>, with the id
// URL-path escaped.
func TokenSnapshotCacheKey(gatewayID string) (string, error) {
	trimmed := strings.TrimSpace(gatewayID)
	if trimmed == "" {
		return "", fmt.Errorf("sqlstore: gateway id is required")
	}
	return tokenSnapshotCacheKeyPrefix + "::" + url.PathEscape(trimmed), nil
}

func (s *CachedTokenStore) Load(ctx context.Context, gatewayID string) (core.TokenSnapshot, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.TokenSnapshot{}, fmt.Errorf("sqlstore: cached token store is not configured")
	}
	cacheKey, err := TokenSnapshotCacheKey(gatewayID)
	if err != nil {
		return core.TokenSnapshot{}, err
	}

	snapshot, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.TokenSnapshot, error) {
		return s.base.Load(ctx, strings.TrimSpace(gatewayID))
	})
	if err != nil {
		return core.TokenSnapshot{}, err
	}
	return snapshot, nil
}

func (s *CachedTokenStore) Save(ctx context.Context, snapshot core.TokenSnapshot) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached token store is not configured")
	}
	if err := s.base.Save(ctx, snapshot); err != nil {
		return err
	}

	cacheKey, err := TokenSnapshotCacheKey(snapshot.GatewayID)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

func (s *CachedTokenStore) Clear(ctx context.Context, gatewayID string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached token store is not configured")
	}
	if err := s.base.Clear(ctx, gatewayID); err != nil {
		return err
	}

	cacheKey, err := TokenSnapshotCacheKey(gatewayID)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}
