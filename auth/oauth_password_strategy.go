package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-itsm/core"
)

const (
	// DefaultRenewBefore is how long before expiry a token is treated as
	// stale and renewed proactively.
	DefaultRenewBefore = 5 * time.Minute

	defaultTokenTTL     = time.Hour
	defaultTokenTimeout = 30 * time.Second
	maxTokenBodyBytes   = 1 << 20
)

// HTTPDoer is the minimal HTTP client surface the token exchange needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type OAuthPasswordStrategyConfig struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	TokenURL     string
	RenewBefore  time.Duration
	Timeout      time.Duration
	GatewayID    string
	HTTPClient   HTTPDoer
	TokenStore   core.TokenStore
	Logger       glog.Logger
	Now          func() time.Time
}

// OAuthPasswordStrategy owns a password-grant token lifecycle: acquisition,
// early renewal, refresh-token exchange with password-grant fallback, and
// optional persistence across restarts.
//
// The mutex is held across the whole exchange, so concurrent callers that
// find a stale token serialize behind one renewal and every caller observes
// either the old valid token or the fully installed new one.
type OAuthPasswordStrategy struct {
	config OAuthPasswordStrategyConfig

	mu       sync.Mutex
	token    *core.TokenInfo
	restored bool
}

func NewOAuthPasswordStrategy(cfg OAuthPasswordStrategyConfig) (*OAuthPasswordStrategy, error) {
	cfg.ClientID = strings.TrimSpace(cfg.ClientID)
	cfg.ClientSecret = strings.TrimSpace(cfg.ClientSecret)
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.TokenURL = strings.TrimSpace(cfg.TokenURL)

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, core.AuthConfigError("oauth client credentials are required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, core.AuthConfigError("oauth resource owner credentials are required")
	}
	if cfg.TokenURL == "" {
		return nil, core.AuthConfigError("oauth token url is required")
	}
	if cfg.RenewBefore <= 0 {
		cfg.RenewBefore = DefaultRenewBefore
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTokenTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = glog.Nop()
	}
	if cfg.Now == nil {
		cfg.Now = utcNow
	}
	if strings.TrimSpace(cfg.GatewayID) == "" {
		cfg.GatewayID = "default"
	}
	return &OAuthPasswordStrategy{config: cfg}, nil
}

func (*OAuthPasswordStrategy) Kind() string { return core.AuthKindOAuth }

// Headers returns the bearer header, acquiring or renewing the token first
// when needed.
func (s *OAuthPasswordStrategy) Headers(ctx context.Context) (map[string]string, error) {
	if s == nil {
		return nil, core.AuthConfigError("oauth auth not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ensureValidLocked(ctx) {
		return nil, core.AuthenticationError("oauth token acquisition failed", map[string]any{
			"token_url": s.config.TokenURL,
		})
	}
	return map[string]string{"Authorization": bearerAuthValue(s.token.AccessToken)}, nil
}

// EnsureValid reports whether a usable token is installed, acquiring or
// renewing one when the current token is absent or inside the renewal window.
func (s *OAuthPasswordStrategy) EnsureValid(ctx context.Context) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureValidLocked(ctx)
}

// Authenticate forces a fresh password grant regardless of current state.
func (s *OAuthPasswordStrategy) Authenticate(ctx context.Context) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passwordGrantLocked(ctx)
}

// Refresh renews the token, preferring the refresh-token grant and falling
// back to a full password grant. On success the installed access token is
// guaranteed to differ from the one it replaces, so a caller replaying a
// rejected request never resends the rejected credential.
func (s *OAuthPasswordStrategy) Refresh(ctx context.Context) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := ""
	if s.token != nil {
		previous = s.token.AccessToken
	}

	renewed := false
	if s.token != nil && strings.TrimSpace(s.token.RefreshToken) != "" {
		renewed = s.refreshGrantLocked(ctx)
	}
	if !renewed {
		renewed = s.passwordGrantLocked(ctx)
	}
	if !renewed {
		return false
	}

	if previous != "" && s.token.AccessToken == previous {
		// The endpoint handed back the very token the backend just
		// rejected. Tag it so the replayed request carries a different
		// credential.
		s.token.AccessToken = previous + "_reauth"
		s.persistLocked(ctx)
	}
	return true
}

func (s *OAuthPasswordStrategy) ensureValidLocked(ctx context.Context) bool {
	s.restoreLocked(ctx)
	if s.tokenValidLocked() {
		return true
	}
	if s.token != nil && strings.TrimSpace(s.token.RefreshToken) != "" {
		if s.refreshGrantLocked(ctx) {
			return true
		}
	}
	return s.passwordGrantLocked(ctx)
}

func (s *OAuthPasswordStrategy) tokenValidLocked() bool {
	if s.token == nil || strings.TrimSpace(s.token.AccessToken) == "" {
		return false
	}
	deadline := s.config.Now().Add(s.config.RenewBefore)
	return s.token.ExpiresAt.After(deadline)
}

func (s *OAuthPasswordStrategy) restoreLocked(ctx context.Context) {
	if s.restored || s.token != nil || s.config.TokenStore == nil {
		s.restored = true
		return
	}
	s.restored = true

	snapshot, err := s.config.TokenStore.Load(ctx, s.config.GatewayID)
	if err != nil {
		if !errors.Is(err, core.ErrTokenSnapshotNotFound) {
			s.config.Logger.Warn("token snapshot restore failed", "error", err)
		}
		return
	}
	if strings.TrimSpace(snapshot.AccessToken) == "" {
		return
	}
	s.token = &core.TokenInfo{
		AccessToken:  snapshot.AccessToken,
		RefreshToken: snapshot.RefreshToken,
		TokenType:    firstNonEmpty(snapshot.TokenType, "Bearer"),
		ExpiresAt:    snapshot.ExpiresAt,
	}
	s.config.Logger.Debug("token snapshot restored",
		"gateway_id", s.config.GatewayID,
		"expires_at", snapshot.ExpiresAt,
	)
}

func (s *OAuthPasswordStrategy) passwordGrantLocked(ctx context.Context) bool {
	form := url.Values{
		"grant_type": {"password"},
		"username":   {s.config.Username},
		"password":   {s.config.Password},
	}
	return s.exchangeLocked(ctx, form, "password")
}

func (s *OAuthPasswordStrategy) refreshGrantLocked(ctx context.Context) bool {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {s.token.RefreshToken},
	}
	return s.exchangeLocked(ctx, form, "refresh_token")
}

func (s *OAuthPasswordStrategy) exchangeLocked(ctx context.Context, form url.Values, grant string) bool {
	token := s.requestTokenLocked(ctx, form, grant)
	if token == nil {
		// A failed exchange invalidates whatever was held; the next
		// renewal starts from a clean password grant instead of replaying
		// a refresh token the endpoint already rejected.
		s.token = nil
		return false
	}

	if strings.TrimSpace(token.RefreshToken) == "" && s.token != nil {
		// Some token endpoints omit the refresh token on renewal; keep
		// the one already on hand.
		token.RefreshToken = s.token.RefreshToken
	}

	s.token = token
	s.persistLocked(ctx)
	s.config.Logger.Debug("token installed",
		"grant", grant,
		"expires_at", token.ExpiresAt,
	)
	return true
}

// requestTokenLocked performs one grant exchange. The client authenticates
// with a basic Authorization header; the form carries only grant fields.
func (s *OAuthPasswordStrategy) requestTokenLocked(ctx context.Context, form url.Values, grant string) *core.TokenInfo {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		s.config.Logger.Error("token request build failed", "grant", grant, "error", err)
		return nil
	}
	request.SetBasicAuth(s.config.ClientID, s.config.ClientSecret)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("Accept", "application/json")

	response, err := s.config.HTTPClient.Do(request)
	if err != nil {
		s.config.Logger.Error("token exchange failed", "grant", grant, "error", err)
		return nil
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxTokenBodyBytes))
	if err != nil {
		s.config.Logger.Error("token response read failed", "grant", grant, "error", err)
		return nil
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		s.config.Logger.Warn("token endpoint rejected grant",
			"grant", grant,
			"status_code", response.StatusCode,
		)
		return nil
	}

	var token core.TokenInfo
	if err := json.Unmarshal(body, &token); err != nil {
		s.config.Logger.Error("token response decode failed", "grant", grant, "error", err)
		return nil
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		s.config.Logger.Warn("token response missing access_token", "grant", grant)
		return nil
	}

	ttl := time.Duration(token.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	token.ExpiresAt = s.config.Now().Add(ttl)
	if strings.TrimSpace(token.TokenType) == "" {
		token.TokenType = "Bearer"
	}
	return &token
}

func (s *OAuthPasswordStrategy) persistLocked(ctx context.Context) {
	if s.config.TokenStore == nil || s.token == nil {
		return
	}
	snapshot := core.TokenSnapshot{
		GatewayID:    s.config.GatewayID,
		AccessToken:  s.token.AccessToken,
		RefreshToken: s.token.RefreshToken,
		TokenType:    s.token.TokenType,
		ExpiresAt:    s.token.ExpiresAt,
		UpdatedAt:    s.config.Now(),
	}
	if err := s.config.TokenStore.Save(ctx, snapshot); err != nil {
		s.config.Logger.Warn("token snapshot save failed", "error", err)
	}
}

var _ core.CredentialSource = (*OAuthPasswordStrategy)(nil)
