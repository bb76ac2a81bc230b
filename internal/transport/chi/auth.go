package chi

import (
	"net/http"
	"strings"
)

// APIKeyHeader carries the API key, as sent by the web client.
const APIKeyHeader = "X-Api-Key"

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// APIKeyAuthMiddleware returns a middleware that validates API keys from the
// x-api-key header or a Bearer token. If apiKeys is empty, authentication is
// disabled (pass-through). CORS preflight requests are never authenticated.
func APIKeyAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			validKeys[k] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		// Auth disabled: pass everything through
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key, ok := requestKey(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing api key")
				return
			}
			if _, valid := validKeys[key]; !valid {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requestKey(r *http.Request) (string, bool) {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key, true
	}

	const bearerPrefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, bearerPrefix) && len(auth) > len(bearerPrefix) {
		return auth[len(bearerPrefix):], true
	}
	return "", false
}
