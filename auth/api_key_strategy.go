package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-itsm/core"
)

// APIKeyStrategy presents a static key under a configurable header. Like
// basic auth it has no renewal path.
type APIKeyStrategy struct {
	key    string
	header string
}

func NewAPIKeyStrategy(cfg core.APIKeyConfig) (*APIKeyStrategy, error) {
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		return nil, core.AuthConfigError("api key is required")
	}
	return &APIKeyStrategy{
		key:    key,
		header: firstNonEmpty(cfg.HeaderName, core.DefaultAPIKeyHeader),
	}, nil
}

func (*APIKeyStrategy) Kind() string { return core.AuthKindAPIKey }

func (s *APIKeyStrategy) Headers(context.Context) (map[string]string, error) {
	if s == nil {
		return nil, core.AuthConfigError("api key auth not configured")
	}
	return map[string]string{s.header: s.key}, nil
}

func (s *APIKeyStrategy) EnsureValid(context.Context) bool { return s != nil }

func (s *APIKeyStrategy) Authenticate(context.Context) bool { return s != nil }

func (*APIKeyStrategy) Refresh(context.Context) bool { return false }

var _ core.CredentialSource = (*APIKeyStrategy)(nil)
