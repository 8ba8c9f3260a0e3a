package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/goliatone/go-itsm/core"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	_ "github.com/lib/pq"
)

// NewTokenStoreFromPersistence builds the token store on top of a managed
// persistence client so migrations and connection lifecycle stay with the
// host application.
func NewTokenStoreFromPersistence(client *persistence.Client) (*TokenStore, error) {
	db, err := resolveBunDB(client)
	if err != nil {
		return nil, err
	}
	return NewTokenStore(db)
}

// NewTokenStoreFromDB builds the token store from a raw bun handle.
func NewTokenStoreFromDB(db *bun.DB) (*TokenStore, error) {
	return NewTokenStore(db)
}

// NewCachedTokenStoreFromPersistence stacks the cache decorator over a
// SQL-backed store built from the persistence client.
func NewCachedTokenStoreFromPersistence(client *persistence.Client, cacheService repositorycache.CacheService) (core.TokenStore, error) {
	base, err := NewTokenStoreFromPersistence(client)
	if err != nil {
		return nil, err
	}
	if cacheService == nil {
		return base, nil
	}
	return NewCachedTokenStore(base, cacheService)
}

// OpenPostgresTokenStore opens a postgres-backed token store over the lib/pq
// driver. The caller owns the returned bun handle and closes it on shutdown.
func OpenPostgresTokenStore(dsn string) (*TokenStore, *bun.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, nil, fmt.Errorf("sqlstore: postgres dsn is required")
	}
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlstore: open postgres: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())
	store, err := NewTokenStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, db, nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
