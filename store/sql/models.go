package sqlstore

import (
	"time"

	"github.com/goliatone/go-itsm/core"
	"github.com/uptrace/bun"
)

type tokenRecord struct {
	bun.BaseModel `bun:"table:gateway_tokens,alias:gt"`

	ID           string     `bun:"id,pk"`
	GatewayID    string     `bun:"gateway_id,notnull,unique"`
	AccessToken  string     `bun:"access_token,notnull"`
	RefreshToken string     `bun:"refresh_token"`
	TokenType    string     `bun:"token_type,notnull"`
	ExpiresAt    *time.Time `bun:"expires_at,nullzero"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *tokenRecord) toSnapshot() core.TokenSnapshot {
	if r == nil {
		return core.TokenSnapshot{}
	}
	snapshot := core.TokenSnapshot{
		GatewayID:    r.GatewayID,
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.ExpiresAt != nil {
		snapshot.ExpiresAt = r.ExpiresAt.UTC()
	}
	return snapshot
}

func (r *tokenRecord) applySnapshot(snapshot core.TokenSnapshot, now time.Time) {
	if r == nil {
		return
	}
	r.GatewayID = snapshot.GatewayID
	r.AccessToken = snapshot.AccessToken
	r.RefreshToken = snapshot.RefreshToken
	r.TokenType = snapshot.TokenType
	if snapshot.ExpiresAt.IsZero() {
		r.ExpiresAt = nil
	} else {
		expires := snapshot.ExpiresAt.UTC()
		r.ExpiresAt = &expires
	}
	r.UpdatedAt = now
}
