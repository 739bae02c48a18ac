package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"tunebook/pkg/logger"
	"tunebook/pkg/utils"
)

// SecConfig drives the gateway middleware: CORS, rate limiting, IP
// whitelisting and API-key authentication. Shared here so limiter.go and
// middleware.go reference one type.
type SecConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
	IPWhitelist    []string
	APIKeys        map[string]struct{}
}

type ctxPrincipalKey struct{}

// WithPrincipal reads the X-Principal header and injects it into the
// request context. When API keys are configured they double as signing
// secrets: the caller must also send X-Principal-Signature, the hex HMAC
// SHA-256 of the principal under one of the keys, so a spoofed header
// cannot act on someone else's behalf. Without configured keys the header
// is trusted as-is (single-tenant and local deployments).
func WithPrincipal(keys map[string]struct{}) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := strings.TrimSpace(r.Header.Get("X-Principal"))
			if principal == "" {
				next.ServeHTTP(w, r)
				return
			}

			if len(keys) > 0 {
				sig := strings.TrimSpace(r.Header.Get("X-Principal-Signature"))
				if sig == "" {
					logger.Warn("missing_principal_signature", "path", r.URL.Path, "remote", r.RemoteAddr)
					utils.JSONError(w, http.StatusUnauthorized, "missing principal signature")
					return
				}
				if !verifySignature(principal, sig, keys) {
					logger.Warn("invalid_principal_signature", "principal", principal)
					utils.JSONError(w, http.StatusUnauthorized, "invalid principal signature")
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxPrincipalKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the verified principal or empty string.
func PrincipalFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxPrincipalKey{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ResolvePrincipal is the canonical resolver for handlers: a
// header-verified principal is authoritative and any conflicting explicit
// principal is rejected; without one, the explicit value stands alone.
func ResolvePrincipal(r *http.Request, explicit string) (string, int, string) {
	if id := PrincipalFromContext(r.Context()); id != "" {
		if explicit != "" && explicit != id {
			logger.Warn("principal_mismatch", "header", id, "explicit", explicit, "path", r.URL.Path)
			return "", http.StatusForbidden, "principal mismatch between header and request"
		}
		return id, 0, ""
	}
	if explicit == "" {
		return "", http.StatusBadRequest, "principal required"
	}
	return explicit, 0, ""
}

func verifySignature(principal, sig string, keys map[string]struct{}) bool {
	for k := range keys {
		mac := hmac.New(sha256.New, []byte(k))
		mac.Write([]byte(principal))
		expected := hex.EncodeToString(mac.Sum(nil))
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return true
		}
	}
	return false
}
