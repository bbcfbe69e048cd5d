package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/alumnet/apiserver/internal/auth"
	"github.com/alumnet/apiserver/internal/services"
	"github.com/alumnet/apiserver/types"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// UserLookup resolves the account behind a token.
type UserLookup interface {
	Get(ctx context.Context, id int64) (types.User, error)
}

// RequireAuth constructs middleware that verifies the bearer token, loads the
// account it names and puts the caller into the request context. The role is
// read from the account, not the token.
func RequireAuth(tokens TokenParser, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				message := "Not authorized, token failed"
				if errors.Is(err, auth.ErrTokenExpired) {
					message = "Not authorized, token expired"
				}
				writeError(w, http.StatusUnauthorized, message)
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}

			user, err := users.Get(r.Context(), userID)
			if err != nil {
				if errors.Is(err, services.ErrNotFound) {
					writeError(w, http.StatusUnauthorized, "Not authorized, user not found")
					return
				}
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := withActor(r.Context(), services.Actor{ID: user.ID, Role: user.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose role is not listed. It must run after
// RequireAuth.
func RequireRole(roles ...types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := requireActor(w, r)
			if !ok {
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "Access denied")
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
