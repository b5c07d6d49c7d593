package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rediwater/rediwater/internal/platform/httpx"
	"github.com/rediwater/rediwater/internal/shared"
)

// Authenticator resolves the caller of a request into a shared.Identity. A
// bearer token takes precedence over the session cookie.
type Authenticator struct {
	Tokens *TokenVerifier
	Logger *slog.Logger
}

// Middleware attaches the identity to the request context when one is
// present. Anonymous requests pass through untouched; a bearer token that
// fails verification is rejected outright.
func (a Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw, ok := bearerToken(r); ok {
			userID, err := a.Tokens.Verify(raw)
			if err != nil {
				if a.Logger != nil {
					a.Logger.Debug("bearer rejected", slog.Any("error", err))
				}
				if errors.Is(err, ErrTokenExpired) {
					w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="token expired"`)
				} else {
					w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				}
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			ctx := shared.ContextWithIdentity(r.Context(), shared.Identity{UserID: userID, Method: shared.AuthBearer})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if sess := shared.SessionFromContext(r.Context()); sess != nil && sess.User() != "" {
			userID, err := uuid.Parse(sess.User())
			if err == nil {
				ctx := shared.ContextWithIdentity(r.Context(), shared.Identity{UserID: userID, Method: shared.AuthSession})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			if a.Logger != nil {
				a.Logger.Warn("session carries malformed user id", slog.String("session", sess.ID))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuthenticated rejects requests without an identity.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.IdentityFromContext(r.Context()); !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
