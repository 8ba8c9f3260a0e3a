package core

import (
	"strings"
	"time"
)

const (
	AuthKindBasic  = "basic"
	AuthKindOAuth  = "oauth"
	AuthKindAPIKey = "api_key"
)

const DefaultAPIKeyHeader = "X-ServiceNow-API-Key"

// BasicAuthConfig carries credentials for HTTP basic authentication.
type BasicAuthConfig struct {
	Username string `koanf:"username" mapstructure:"username"`
	Password string `koanf:"password" mapstructure:"password"`
}

// OAuthConfig carries the password-grant client and resource-owner
// credentials plus an optional token endpoint override.
type OAuthConfig struct {
	ClientID     string `koanf:"client_id" mapstructure:"client_id"`
	ClientSecret string `koanf:"client_secret" mapstructure:"client_secret"`
	Username     string `koanf:"username" mapstructure:"username"`
	Password     string `koanf:"password" mapstructure:"password"`
	TokenURL     string `koanf:"token_url" mapstructure:"token_url"`
}

// APIKeyConfig carries a static key presented under a configurable header.
type APIKeyConfig struct {
	Key        string `koanf:"key" mapstructure:"key"`
	HeaderName string `koanf:"header_name" mapstructure:"header_name"`
}

// AuthConfig selects exactly one credential variant per deployment. It is
// immutable after construction.
type AuthConfig struct {
	Type   string           `koanf:"type" mapstructure:"type"`
	Basic  *BasicAuthConfig `koanf:"basic" mapstructure:"basic"`
	OAuth  *OAuthConfig     `koanf:"oauth" mapstructure:"oauth"`
	APIKey *APIKeyConfig    `koanf:"api_key" mapstructure:"api_key"`
}

// TokenInfo is the OAuth token payload returned by the token endpoint plus
// the absolute expiry computed at receipt time.
type TokenInfo struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`

	ExpiresAt time.Time `json:"-"`
}

// TokenSnapshot is the persisted projection of a live token so a restarted
// process can resume without a fresh password grant.
type TokenSnapshot struct {
	GatewayID    string
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}

// TransportRequest describes one outbound HTTP call in transport-neutral
// terms. Body carries pre-encoded JSON for writes.
type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

// TransportResponse is the raw outcome of a transport call before the
// executor classifies it.
type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// RetryAfter reads the throttle hint header, if present and positive.
func (r TransportResponse) RetryAfter() (time.Duration, bool) {
	for key, value := range r.Headers {
		if strings.EqualFold(strings.TrimSpace(key), "retry-after") {
			return parseRetryAfterValue(strings.TrimSpace(value))
		}
	}
	return 0, false
}

// ToolRequest is the transport-agnostic inbound request shape.
type ToolRequest struct {
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters"`
}

// ErrorDetail is the structured failure payload surfaced inside an Envelope.
type ErrorDetail struct {
	Code       string `json:"code,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Field      string `json:"field,omitempty"`
	Endpoint   string `json:"endpoint,omitempty"`
}

// Envelope is the uniform dispatch result. It is produced fresh per call and
// never mutated after return.
type Envelope struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Error     *ErrorDetail   `json:"error,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// ToolDescription is the discovery projection of one registered operation.
type ToolDescription struct {
	Name           string   `json:"name"`
	Module         string   `json:"module"`
	Operation      string   `json:"operation"`
	Description    string   `json:"description"`
	RequiredParams []string `json:"required_params"`
	OptionalParams []string `json:"optional_params,omitempty"`
}

func copyAnyMap(input map[string]any) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}
	output := make(map[string]any, len(input))
	for key, value := range input {
		output[key] = value
	}
	return output
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func cloneTransportRequest(in TransportRequest) TransportRequest {
	return TransportRequest{
		Method:               in.Method,
		URL:                  in.URL,
		Headers:              copyStringMap(in.Headers),
		Query:                copyStringMap(in.Query),
		Body:                 append([]byte(nil), in.Body...),
		Timeout:              in.Timeout,
		MaxResponseBodyBytes: in.MaxResponseBodyBytes,
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}
