package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atinyakov/sellharbor/internal/auth"
	"github.com/atinyakov/sellharbor/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// TokenVerifier checks a bearer token and returns its identity.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// BearerAuth admits requests carrying a valid admin token in the
// Authorization header. Everything else gets 401 with the same body, so
// callers cannot tell a missing token from an expired or forged one.
//
// On success the token identity is stored in the request context.
func BearerAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}
			id, err := verifier.Verify(token)
			if err != nil || id.Role != models.RoleAdmin {
				unauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the identity stored by BearerAuth, or nil.
func IdentityFromContext(ctx context.Context) *auth.Identity {
	id, _ := ctx.Value(identityKey).(*auth.Identity)
	return id
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
}
