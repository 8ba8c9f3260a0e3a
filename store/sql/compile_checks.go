package sqlstore

import "github.com/goliatone/go-itsm/core"

var (
	_ core.TokenStore = (*TokenStore)(nil)
	_ core.TokenStore = (*CachedTokenStore)(nil)
)
