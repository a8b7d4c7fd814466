package middleware

import (
	"context"
	"net/http"
	"strings"

	"boardshoot-server/internal/domain"
	"boardshoot-server/pkg/jwt"

	"github.com/rs/zerolog"
)

type contextKey string

const AuthenticationKey contextKey = "authentication"

// PrincipalLoader builds the authenticated value for a verified subject.
type PrincipalLoader interface {
	Load(ctx context.Context, subject string) *domain.Authentication
}

// Authenticate attaches an Authentication to the request when it carries a valid bearer
// token. Requests without a valid token pass through with no authentication; rejecting
// them is up to the principal resolver.
func Authenticate(codec *jwt.Codec, loader PrincipalLoader, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := codec.Parse(token)
			if err != nil {
				logger.Debug().Err(err).Str("path", r.URL.Path).Msg("token rejected")
				next.ServeHTTP(w, r)
				return
			}

			auth := loader.Load(r.Context(), claims.Username)
			ctx := WithAuthentication(r.Context(), auth)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken reads the Authorization header, falling back to the token query
// parameter used by websocket clients.
func BearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// GetAuthentication returns nil when the request carried no valid credentials.
func GetAuthentication(r *http.Request) *domain.Authentication {
	auth, ok := r.Context().Value(AuthenticationKey).(*domain.Authentication)
	if !ok {
		return nil
	}
	return auth
}

func WithAuthentication(ctx context.Context, auth *domain.Authentication) context.Context {
	return context.WithValue(ctx, AuthenticationKey, auth)
}
