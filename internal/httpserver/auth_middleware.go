package httpserver

import (
	"context"
	"log"
	"net/http"
	"strings"

	"concord/internal/domain"
	"concord/internal/security"
)

type contextKey string

const profileContextKey contextKey = "currentProfile"

// WithProfile returns a new context carrying the current profile.
func WithProfile(ctx context.Context, p *domain.Profile) context.Context {
	return context.WithValue(ctx, profileContextKey, p)
}

// CurrentProfile extracts the current profile from context, if any.
func CurrentProfile(r *http.Request) *domain.Profile {
	if v := r.Context().Value(profileContextKey); v != nil {
		if p, ok := v.(*domain.Profile); ok {
			return p
		}
	}
	return nil
}

// AuthMiddleware validates the bearer identity token and attaches the
// profile to the request context. The profile mirror is refreshed on every
// authenticated request so the local copy tracks the identity provider.
func AuthMiddleware(tokens *security.TokenService, profiles domain.ProfileRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				http.Error(w, "missing or invalid Authorization header", http.StatusUnauthorized)
				return
			}
			tokenStr := strings.TrimSpace(authHeader[len("Bearer "):])

			identity, err := tokens.Parse(tokenStr)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			profile := &domain.Profile{
				ID:        identity.ProfileID,
				Name:      identity.Name,
				AvatarURL: identity.AvatarURL,
			}
			if err := profiles.Upsert(r.Context(), profile); err != nil {
				log.Printf("AuthMiddleware: upsert profile %s: %v", identity.ProfileID, err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			ctx := WithProfile(r.Context(), profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
