package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vidrate/vidrate/internal/auth"
)

// minAuthDuration is the minimum time to spend on admin auth to prevent
// timing attacks distinguishing missing, malformed, and wrong keys.
const minAuthDuration = 200 * time.Millisecond

// AdminKey returns a middleware gating administrative endpoints behind the
// admin capability key. The key travels as a bearer token and is verified
// against the configured Argon2id hash. An empty hash disables the
// endpoints outright: every request is rejected.
func AdminKey(keyHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			defer func() {
				elapsed := time.Since(startTime)
				if elapsed < minAuthDuration {
					time.Sleep(minAuthDuration - elapsed)
				}
			}()

			if keyHash == "" {
				logger.Warn("admin endpoint disabled, no key configured",
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAdminError(w)
				return
			}

			key := extractBearerToken(r)
			if key == "" || !auth.ValidateKeyFormat(key) {
				logger.Warn("admin authentication failed",
					slog.String("reason", "missing_or_malformed_key"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAdminError(w)
				return
			}

			ok, err := auth.VerifyKey(key, keyHash)
			if err != nil || !ok {
				logger.Warn("admin authentication failed",
					slog.String("reason", "key_mismatch"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAdminError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken pulls the token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// writeAdminError responds with a uniform 401 so callers cannot probe
// which check failed.
func writeAdminError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
