package auth

import (
	"encoding/base64"
	"strings"
	"time"
)

func basicAuthValue(username, password string) string {
	raw := username + ":" + password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}

func bearerAuthValue(token string) string {
	return "Bearer " + strings.TrimSpace(token)
}

func utcNow() time.Time {
	return time.Now().UTC()
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
