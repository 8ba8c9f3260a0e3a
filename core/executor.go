package core

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const defaultRetryAfter = 60 * time.Second

// Execute runs one backend call through the rate gate and the retry pipeline,
// returning the decoded JSON body on success.
//
// Classification rules:
//   - 401/403 triggers one credential refresh and an immediate replay that
//     does not consume a retry attempt; a second auth failure is terminal.
//   - 429 waits the server-provided Retry-After (default 60s) and retries.
//   - 5xx and transport failures retry with exponential backoff.
//   - any other 4xx is terminal on first sight.
func (s *Service) Execute(ctx context.Context, req TransportRequest) (map[string]any, error) {
	if s == nil {
		return nil, newGatewayError("gateway not initialized", goerrors.CategoryInternal, GatewayErrorInternal)
	}
	startedAt := s.now()
	result, err := s.execute(ctx, req)
	s.observeOperation(ctx, startedAt, "execute", err, map[string]any{
		"gateway_id": s.config.GatewayID,
		"endpoint":   req.URL,
		"method":     req.Method,
	})
	return result, err
}

func (s *Service) execute(ctx context.Context, req TransportRequest) (map[string]any, error) {
	if s.adapter == nil {
		return nil, newGatewayError("no transport adapter configured", goerrors.CategoryInternal, GatewayErrorInternal)
	}
	if s.credentials == nil {
		return nil, AuthConfigError("no credential source configured")
	}
	if !s.credentials.EnsureValid(ctx) {
		return nil, AuthenticationError("authentication failed", map[string]any{
			"auth_type": s.credentials.Kind(),
		})
	}

	maxAttempts := s.config.MaxRetries
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxRetries
	}

	authRetried := false
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if s.gate != nil {
			if err := s.gate.Acquire(ctx); err != nil {
				return nil, TransportError(err, req.URL, attempt+1)
			}
		}

		prepared, err := s.prepareRequest(ctx, req)
		if err != nil {
			return nil, err
		}

		response, err := s.adapter.Do(ctx, prepared)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, TransportError(ctx.Err(), req.URL, attempt+1)
			}
			if attempt == maxAttempts-1 {
				return nil, TransportError(err, req.URL, attempt+1)
			}
			s.logDebug(ctx, "transport failure, backing off", map[string]any{
				"endpoint": req.URL,
				"attempt":  attempt + 1,
				"error":    err.Error(),
			})
			if sleepErr := s.sleepRetry(ctx, backoffDelay(attempt)); sleepErr != nil {
				return nil, TransportError(sleepErr, req.URL, attempt+1)
			}
			continue
		}

		switch {
		case response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden:
			if !authRetried && s.credentials.Refresh(ctx) {
				// Replay immediately with the renewed credential. The
				// failed call was never an upstream fault, so the retry
				// budget is untouched.
				authRetried = true
				attempt--
				continue
			}
			return nil, AuthenticationError("authentication failed", map[string]any{
				"auth_type":   s.credentials.Kind(),
				"status_code": response.StatusCode,
				"endpoint":    req.URL,
			})

		case response.StatusCode == http.StatusTooManyRequests:
			delay, ok := response.RetryAfter()
			if !ok {
				delay = defaultRetryAfter
			}
			if attempt == maxAttempts-1 {
				return nil, RateLimitedError(req.URL, delay, attempt+1)
			}
			s.logDebug(ctx, "throttled by backend, waiting", map[string]any{
				"endpoint": req.URL,
				"attempt":  attempt + 1,
				"delay_ms": delay.Milliseconds(),
			})
			if sleepErr := s.sleepRetry(ctx, delay); sleepErr != nil {
				return nil, TransportError(sleepErr, req.URL, attempt+1)
			}
			continue

		case response.StatusCode >= http.StatusInternalServerError:
			lastErr = UpstreamServerError(response.StatusCode, req.URL, response.Body, attempt+1)
			if attempt == maxAttempts-1 {
				return nil, lastErr
			}
			if sleepErr := s.sleepRetry(ctx, backoffDelay(attempt)); sleepErr != nil {
				return nil, TransportError(sleepErr, req.URL, attempt+1)
			}
			continue

		case response.StatusCode >= http.StatusBadRequest:
			return nil, RequestRejectedError(response.StatusCode, req.URL, response.Body)
		}

		return decodeResponseBody(response.Body, req.URL)
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, RetriesExhaustedError(req.URL, maxAttempts)
}

func (s *Service) prepareRequest(ctx context.Context, req TransportRequest) (TransportRequest, error) {
	prepared := cloneTransportRequest(req)
	authHeaders, err := s.credentials.Headers(ctx)
	if err != nil {
		return TransportRequest{}, err
	}
	for key, value := range authHeaders {
		prepared.Headers[key] = value
	}
	if _, ok := prepared.Headers["Accept"]; !ok {
		prepared.Headers["Accept"] = "application/json"
	}
	if len(prepared.Body) > 0 {
		if _, ok := prepared.Headers["Content-Type"]; !ok {
			prepared.Headers["Content-Type"] = "application/json"
		}
	}
	if prepared.Timeout <= 0 {
		prepared.Timeout = s.config.Timeout
	}
	return prepared, nil
}

func (s *Service) sleepRetry(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if s.sleep != nil {
		return s.sleep(ctx, delay)
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func backoffDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt)) * time.Second
}

func decodeResponseBody(body []byte, endpoint string) (map[string]any, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return map[string]any{}, nil
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return nil, MalformedResponseError(err, endpoint)
	}
	return decoded, nil
}

func parseRetryAfterValue(raw string) (time.Duration, bool) {
	if raw == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second, true
	}
	for _, layout := range []string{time.RFC1123, time.RFC1123Z} {
		if retryAt, err := time.Parse(layout, raw); err == nil {
			if remaining := time.Until(retryAt.UTC()); remaining > 0 {
				return remaining, true
			}
		}
	}
	return 0, false
}
