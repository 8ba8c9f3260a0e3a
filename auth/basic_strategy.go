package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-itsm/core"
)

// BasicStrategy presents static username/password credentials. There is no
// lifecycle behind it: validity checks always pass and Refresh always fails,
// which makes a backend 401 terminal on the spot.
type BasicStrategy struct {
	username string
	password string
}

func NewBasicStrategy(cfg core.BasicAuthConfig) (*BasicStrategy, error) {
	username := strings.TrimSpace(cfg.Username)
	if username == "" {
		return nil, core.AuthConfigError("basic auth username is required")
	}
	if cfg.Password == "" {
		return nil, core.AuthConfigError("basic auth password is required")
	}
	return &BasicStrategy{username: username, password: cfg.Password}, nil
}

func (*BasicStrategy) Kind() string { return core.AuthKindBasic }

func (s *BasicStrategy) Headers(context.Context) (map[string]string, error) {
	if s == nil {
		return nil, core.AuthConfigError("basic auth not configured")
	}
	return map[string]string{"Authorization": basicAuthValue(s.username, s.password)}, nil
}

func (s *BasicStrategy) EnsureValid(context.Context) bool { return s != nil }

func (s *BasicStrategy) Authenticate(context.Context) bool { return s != nil }

// Refresh reports false: a rejected static credential cannot be renewed.
func (*BasicStrategy) Refresh(context.Context) bool { return false }

var _ core.CredentialSource = (*BasicStrategy)(nil)
