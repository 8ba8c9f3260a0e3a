// Package sqlstore persists token snapshots behind the core.TokenStore
// contract so a restarted gateway resumes with its last issued token
// instead of burning a fresh password grant.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-itsm/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type TokenStore struct {
	db   *bun.DB
	repo repository.Repository[*tokenRecord]
	now  func() time.Time
}

func NewTokenStore(db *bun.DB) (*TokenStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*tokenRecord](db, tokenHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid token repository wiring: %w", err)
		}
	}
	return &TokenStore{
		db:   db,
		repo: repo,
		now:  time.Now,
	}, nil
}

func (s *TokenStore) Load(ctx context.Context, gatewayID string) (core.TokenSnapshot, error) {
	if s == nil || s.repo == nil {
		return core.TokenSnapshot{}, fmt.Errorf("sqlstore: token store is not configured")
	}
	trimmed := strings.TrimSpace(gatewayID)
	if trimmed == "" {
		return core.TokenSnapshot{}, fmt.Errorf("sqlstore: gateway id is required")
	}

	records, _, err := s.repo.List(ctx,
		repository.SelectBy("gateway_id", "=", trimmed),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.TokenSnapshot{}, err
	}
	if len(records) == 0 {
		return core.TokenSnapshot{}, core.ErrTokenSnapshotNotFound
	}
	return records[0].toSnapshot(), nil
}

func (s *TokenStore) Save(ctx context.Context, snapshot core.TokenSnapshot) error {
	if s == nil || s.repo == nil || s.db == nil {
		return fmt.Errorf("sqlstore: token store is not configured")
	}
	snapshot.GatewayID = strings.TrimSpace(snapshot.GatewayID)
	if snapshot.GatewayID == "" {
		return fmt.Errorf("sqlstore: gateway id is required")
	}
	if strings.TrimSpace(snapshot.AccessToken) == "" {
		return fmt.Errorf("sqlstore: access token is required")
	}
	now := s.now().UTC()

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var existing tokenRecord
		err := tx.NewSelect().
			Model(&existing).
			Where("gateway_id = ?", snapshot.GatewayID).
			Limit(1).
			Scan(ctx)
		if err == nil {
			existing.applySnapshot(snapshot, now)
			_, updateErr := tx.NewUpdate().
				Model(&existing).
				WherePK().
				Exec(ctx)
			return updateErr
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		record := &tokenRecord{CreatedAt: now}
		record.applySnapshot(snapshot, now)
		_, createErr := s.repo.CreateTx(ctx, tx, record)
		return createErr
	})
}

func (s *TokenStore) Clear(ctx context.Context, gatewayID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: token store is not configured")
	}
	trimmed := strings.TrimSpace(gatewayID)
	if trimmed == "" {
		return fmt.Errorf("sqlstore: gateway id is required")
	}
	_, err := s.db.NewDelete().
		Model((*tokenRecord)(nil)).
		Where("gateway_id = ?", trimmed).
		Exec(ctx)
	return err
}
