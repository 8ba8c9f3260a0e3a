// Package auth implements the credential sources the gateway presents to the
// backend: static basic and API key headers plus the OAuth password-grant
// token lifecycle.
package auth

import (
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-itsm/core"
)

// SourceOptions carries the collaborators a credential source may need beyond
// the static configuration.
type SourceOptions struct {
	HTTPClient HTTPDoer
	TokenStore core.TokenStore
	Logger     glog.Logger
	Now        func() time.Time
}

// NewCredentialSource builds the source matching the configured auth variant.
// Exactly one variant must be configured; anything else is a configuration
// fault.
func NewCredentialSource(cfg core.Config, options SourceOptions) (core.CredentialSource, error) {
	switch strings.TrimSpace(strings.ToLower(cfg.Auth.Type)) {
	case core.AuthKindBasic:
		if cfg.Auth.Basic == nil {
			return nil, core.AuthConfigError("basic auth selected but not configured")
		}
		return NewBasicStrategy(*cfg.Auth.Basic)

	case core.AuthKindAPIKey:
		if cfg.Auth.APIKey == nil {
			return nil, core.AuthConfigError("api key auth selected but not configured")
		}
		return NewAPIKeyStrategy(*cfg.Auth.APIKey)

	case core.AuthKindOAuth:
		if cfg.Auth.OAuth == nil {
			return nil, core.AuthConfigError("oauth auth selected but not configured")
		}
		return NewOAuthPasswordStrategy(OAuthPasswordStrategyConfig{
			ClientID:     cfg.Auth.OAuth.ClientID,
			ClientSecret: cfg.Auth.OAuth.ClientSecret,
			Username:     cfg.Auth.OAuth.Username,
			Password:     cfg.Auth.OAuth.Password,
			TokenURL:     cfg.TokenURL(),
			Timeout:      cfg.Timeout,
			GatewayID:    cfg.GatewayID,
			HTTPClient:   options.HTTPClient,
			TokenStore:   options.TokenStore,
			Logger:       options.Logger,
			Now:          options.Now,
		})

	default:
		return nil, core.AuthConfigError("unsupported auth type: " + cfg.Auth.Type)
	}
}
