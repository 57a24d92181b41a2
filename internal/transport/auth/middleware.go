package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"invoice_recorder/internal/logger"
	"invoice_recorder/internal/repository"
)

type ctxKey string

const OwnerIDKey ctxKey = "ownerID"

var ErrNoOwner = errors.New("owner not found in context")

type TokenRepo interface {
	FindByPlainToken(ctx context.Context, plainToken string) (*repository.APIToken, error)
}

// TokenMiddleware resolves the bearer token (or the token query parameter,
// used by report download links) to its owner.
func TokenMiddleware(tokens TokenRepo) func(http.Handler) http.Handler {
	log := logger.WithComponent("auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// CORS preflight
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			plain := ""
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				plain = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			}
			if plain == "" {
				plain = r.URL.Query().Get("token")
			}
			if plain == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			tok, err := tokens.FindByPlainToken(r.Context(), plain)
			if err != nil {
				if !errors.Is(err, repository.ErrTokenNotFound) {
					log.Error().Err(err).Str("path", r.URL.Path).Msg("token lookup")
				}
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if tok.ExpiresAt != nil && tok.ExpiresAt.Before(time.Now()) {
				http.Error(w, "Token expired", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), OwnerIDKey, tok.OwnerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, OwnerIDKey, ownerID)
}

func GetOwnerID(ctx context.Context) (string, error) {
	v, ok := ctx.Value(OwnerIDKey).(string)
	if !ok || v == "" {
		return "", ErrNoOwner
	}
	return v, nil
}
