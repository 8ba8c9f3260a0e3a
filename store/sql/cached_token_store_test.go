package sqlstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-itsm/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

type stubTokenStore struct {
	mu        sync.Mutex
	snapshot  core.TokenSnapshot
	loadCalls int
	saveCalls int
	loadErr   error
	saveErr   error
}

func (s *stubTokenStore) Load(_ context.Context, _ string) (core.TokenSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadCalls++
	if s.loadErr != nil {
		return core.TokenSnapshot{}, s.loadErr
	}
	return s.snapshot, nil
}

func (s *stubTokenStore) Save(_ context.Context, snapshot core.TokenSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.snapshot = snapshot
	return nil
}

func (s *stubTokenStore) Clear(_ context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = core.TokenSnapshot{}
	return nil
}

func newTestTokenCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}

func TestCachedTokenStore_Load_MissFetchThenHit(t *testing.T) {
	base := &stubTokenStore{
		snapshot: core.TokenSnapshot{
			GatewayID:   "gw-cache-1",
			AccessToken: "tok-1",
			TokenType:   "Bearer",
			ExpiresAt:   time.Now().Add(time.Hour).UTC(),
		},
	}
	store, err := NewCachedTokenStore(base, newTestTokenCacheService(t))
	if err != nil {
		t.Fatalf("new cached token store: %v", err)
	}

	if _, err := store.Load(context.Background(), "gw-cache-1"); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if base.loadCalls != 1 {
		t.Fatalf("expected one base read, got %d", base.loadCalls)
	}

	if _, err := store.Load(context.Background(), "gw-cache-1"); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if base.loadCalls != 1 {
		t.Fatalf("expected second load to hit cache, base reads=%d", base.loadCalls)
	}
}

func TestCachedTokenStore_Save_InvalidatesCachedKey(t *testing.T) {
	base := &stubTokenStore{
		snapshot: core.TokenSnapshot{GatewayID: "gw-cache-2", AccessToken: "tok-old", TokenType: "Bearer"},
	}
	store, err := NewCachedTokenStore(base, newTestTokenCacheService(t))
	if err != nil {
		t.Fatalf("new cached token store: %v", err)
	}

	if _, err := store.Load(context.Background(), "gw-cache-2"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	if err := store.Save(context.Background(), core.TokenSnapshot{
		GatewayID:   "gw-cache-2",
		AccessToken: "tok-new",
		TokenType:   "Bearer",
	}); err != nil {
		t.Fatalf("save through cached store: %v", err)
	}
	if base.saveCalls != 1 {
		t.Fatalf("expected one base save, got %d", base.saveCalls)
	}

	snapshot, err := store.Load(context.Background(), "gw-cache-2")
	if err != nil {
		t.Fatalf("load after invalidation: %v", err)
	}
	if base.loadCalls != 2 {
		t.Fatalf("expected invalidated key to force second base read, got %d", base.loadCalls)
	}
	if snapshot.AccessToken != "tok-new" {
		t.Fatalf("expected refreshed token, got %q", snapshot.AccessToken)
	}
}

func TestCachedTokenStore_PropagatesNotFound(t *testing.T) {
	base := &stubTokenStore{loadErr: core.ErrTokenSnapshotNotFound}
	store, err := NewCachedTokenStore(base, newTestTokenCacheService(t))
	if err != nil {
		t.Fatalf("new cached token store: %v", err)
	}

	_, err = store.Load(context.Background(), "gw-missing")
	if !errors.Is(err, core.ErrTokenSnapshotNotFound) {
		t.Fatalf("expected not-found propagation, got %v", err)
	}
}

func TestTokenSnapshotCacheKey_Contract(t *testing.T) {
	key, err := TokenSnapshotCacheKey("prod/itsm gateway")
	if err != nil {
		t.Fatalf("build cache key: %v", err)
	}
	const expected = "go-itsm::token_snapshot::v1::prod%2Fitsm%20gateway"
	if key != expected {
		t.Fatalf("unexpected cache key contract: got %q want %q", key, expected)
	}

	if _, err := TokenSnapshotCacheKey("  "); err == nil {
		t.Fatalf("expected blank gateway id rejected")
	}
}
