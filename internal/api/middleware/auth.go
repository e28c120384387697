package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dom/webdesk-core/internal/domain"
	"github.com/dom/webdesk-core/internal/service"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller. Expired marks a request that
// authenticated through the rotation grace window.
type Identity struct {
	Username string
	Token    string
	Expired  bool
}

// Auth resolves the claimed (username, token) identity. allowExpired lets
// requests through the rotation grace window, tolerating client-side reload
// races immediately after a token rotation.
func Auth(authService *service.AuthService, allowExpired bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := strings.ToLower(r.Header.Get("X-Username"))
			token := bearerToken(r)
			if username == "" || token == "" {
				http.Error(w, "username and token required", http.StatusUnauthorized)
				return
			}

			v, err := authService.Authenticate(r.Context(), username, token, allowExpired)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidToken) || errors.Is(err, domain.ErrTokenExpired) {
					http.Error(w, "invalid token", http.StatusUnauthorized)
					return
				}
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			identity := Identity{Username: username, Token: token, Expired: v.Expired}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetIdentity(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
