package core

import (
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	GatewayErrorAuthConfig         = "GATEWAY_AUTH_CONFIG"
	GatewayErrorAuthFailed         = "GATEWAY_AUTH_FAILED"
	GatewayErrorBadInput           = "GATEWAY_BAD_INPUT"
	GatewayErrorRequestRejected    = "GATEWAY_REQUEST_REJECTED"
	GatewayErrorRateLimited        = "GATEWAY_RATE_LIMITED"
	GatewayErrorUpstream           = "GATEWAY_UPSTREAM_ERROR"
	GatewayErrorTransport          = "GATEWAY_TRANSPORT_ERROR"
	GatewayErrorMalformedResponse  = "GATEWAY_MALFORMED_RESPONSE"
	GatewayErrorRetriesExhausted   = "GATEWAY_RETRIES_EXHAUSTED"
	GatewayErrorInvalidTool        = "GATEWAY_INVALID_TOOL"
	GatewayErrorUnknownModule      = "GATEWAY_UNKNOWN_MODULE"
	GatewayErrorUnknownOperation   = "GATEWAY_UNKNOWN_OPERATION"
	GatewayErrorDuplicateOperation = "GATEWAY_DUPLICATE_OPERATION"
	GatewayErrorRecordNotFound     = "GATEWAY_RECORD_NOT_FOUND"
	GatewayErrorInternal           = "GATEWAY_INTERNAL_ERROR"
)

func gatewayErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureGatewayErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "unknown module"):
		return newGatewayError(err.Error(), goerrors.CategoryNotFound, GatewayErrorUnknownModule)
	case strings.Contains(msg, "unknown operation"):
		return newGatewayError(err.Error(), goerrors.CategoryNotFound, GatewayErrorUnknownOperation)
	case strings.Contains(msg, "tool name"):
		return newGatewayError(err.Error(), goerrors.CategoryBadInput, GatewayErrorInvalidTool)
	case strings.Contains(msg, "already registered"):
		return newGatewayError(err.Error(), goerrors.CategoryConflict, GatewayErrorDuplicateOperation)
	case strings.Contains(msg, "throttl"), strings.Contains(msg, "rate limit"):
		return newGatewayError(err.Error(), goerrors.CategoryRateLimit, GatewayErrorRateLimited)
	case strings.Contains(msg, "authentication"), strings.Contains(msg, "credential"):
		return newGatewayError(err.Error(), goerrors.CategoryAuth, GatewayErrorAuthFailed)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newGatewayError(err.Error(), goerrors.CategoryBadInput, GatewayErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureGatewayErrorEnvelope(mapped)
}

func newGatewayError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureGatewayErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureGatewayErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = gatewayHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultGatewayTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultGatewayTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return GatewayErrorBadInput
	case goerrors.CategoryNotFound:
		return GatewayErrorUnknownOperation
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return GatewayErrorAuthFailed
	case goerrors.CategoryConflict:
		return GatewayErrorDuplicateOperation
	case goerrors.CategoryRateLimit:
		return GatewayErrorRateLimited
	case goerrors.CategoryExternal:
		return GatewayErrorUpstream
	default:
		return GatewayErrorInternal
	}
}

func gatewayHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AuthConfigError reports a misconfigured credential variant. It is fatal for
// the current call and never retried.
func AuthConfigError(message string) error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(GatewayErrorAuthConfig)
}

// AuthenticationError reports a credential exchange that failed after the
// refresh path was exhausted. Terminal for the current call only.
func AuthenticationError(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(GatewayErrorAuthFailed)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// RequestRejectedError reports a non-retryable 4xx other than 401/403/429.
func RequestRejectedError(statusCode int, endpoint string, body []byte) error {
	return goerrors.New("backend rejected the request", goerrors.CategoryBadInput).
		WithCode(statusCode).
		WithTextCode(GatewayErrorRequestRejected).
		WithMetadata(map[string]any{
			"status_code": statusCode,
			"endpoint":    endpoint,
			"body":        truncateBody(body),
		})
}

// UpstreamServerError reports a 5xx that survived every allowed attempt.
func UpstreamServerError(statusCode int, endpoint string, body []byte, attempts int) error {
	return goerrors.New("backend server error", goerrors.CategoryExternal).
		WithCode(statusCode).
		WithTextCode(GatewayErrorUpstream).
		WithMetadata(map[string]any{
			"status_code": statusCode,
			"endpoint":    endpoint,
			"body":        truncateBody(body),
			"attempts":    attempts,
		})
}

// TransportError reports a network-level failure that survived every allowed
// attempt, including deadline expiry mid-retry.
func TransportError(source error, endpoint string, attempts int) error {
	return goerrors.Wrap(source, goerrors.CategoryExternal, "transport failure").
		WithCode(http.StatusBadGateway).
		WithTextCode(GatewayErrorTransport).
		WithMetadata(map[string]any{
			"endpoint": endpoint,
			"attempts": attempts,
		})
}

// MalformedResponseError reports a 2xx whose body is not valid JSON.
func MalformedResponseError(source error, endpoint string) error {
	return goerrors.Wrap(source, goerrors.CategoryExternal, "backend returned malformed JSON").
		WithCode(http.StatusBadGateway).
		WithTextCode(GatewayErrorMalformedResponse).
		WithMetadata(map[string]any{"endpoint": endpoint})
}

// RateLimitedError reports a 429 that survived every allowed attempt.
func RateLimitedError(endpoint string, retryAfter time.Duration, attempts int) error {
	return goerrors.New("backend throttled the request", goerrors.CategoryRateLimit).
		WithCode(http.StatusTooManyRequests).
		WithTextCode(GatewayErrorRateLimited).
		WithMetadata(map[string]any{
			"endpoint":       endpoint,
			"retry_after_ms": retryAfter.Milliseconds(),
			"attempts":       attempts,
		})
}

// RetriesExhaustedError is the generic terminal state when no specific
// classification was captured.
func RetriesExhaustedError(endpoint string, attempts int) error {
	return goerrors.New("max retries exceeded", goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode(GatewayErrorRetriesExhausted).
		WithMetadata(map[string]any{
			"endpoint": endpoint,
			"attempts": attempts,
		})
}

// RecordNotFoundError reports a lookup that matched no backend record.
func RecordNotFoundError(noun, identifier string) error {
	return goerrors.New(noun+" not found: "+identifier, goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(GatewayErrorRecordNotFound).
		WithMetadata(map[string]any{"identifier": identifier})
}

// MissingParameterError names a required parameter absent from the request.
func MissingParameterError(field string) error {
	return goerrors.NewValidation("missing required parameter: "+field, goerrors.FieldError{
		Field:   field,
		Message: "required parameter is missing",
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(GatewayErrorBadInput)
}

// InvalidParameterError wraps a parameter construction failure.
func InvalidParameterError(source error) error {
	return goerrors.Wrap(source, goerrors.CategoryValidation, "invalid parameters").
		WithCode(http.StatusBadRequest).
		WithTextCode(GatewayErrorBadInput)
}

func truncateBody(body []byte) string {
	const limit = 512
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		return text[:limit]
	}
	return text
}
