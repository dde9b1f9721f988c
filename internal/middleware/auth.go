package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/auth"
	apperrors "github.com/Ang3l-dev/Ang3l-Dash/internal/errors"
)

// DefaultRealm is announced when no realm is configured.
const DefaultRealm = "WIP reconciliation"

// Authenticator checks a set of credentials.
type Authenticator interface {
	Authenticate(email, password string) (auth.User, error)
}

type userKey struct{}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, user auth.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (auth.User, bool) {
	user, ok := ctx.Value(userKey{}).(auth.User)
	return user, ok
}

// UserEmail returns the authenticated user's email or "".
func UserEmail(ctx context.Context) string {
	user, _ := UserFromContext(ctx)
	return user.Email
}

// BasicAuth requires HTTP Basic credentials accepted by authn.
func BasicAuth(authn Authenticator, realm string, eh *apperrors.ErrorHandler, logger *slog.Logger) func(next http.Handler) http.Handler {
	if realm == "" {
		realm = DefaultRealm
	}
	challenge := fmt.Sprintf("Basic realm=%q, charset=\"UTF-8\"", realm)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", challenge)
				eh.HandleError(w, r, apperrors.NewAuthError("credentials required", nil))
				return
			}

			user, err := authn.Authenticate(email, password)
			if err != nil {
				if errors.Is(err, auth.ErrNoUsers) {
					logger.ErrorContext(r.Context(), "no users configured, every login is refused")
				} else {
					logger.WarnContext(r.Context(), "authentication failed",
						slog.String("email", email),
						slog.String("remote_addr", r.RemoteAddr))
				}
				w.Header().Set("WWW-Authenticate", challenge)
				eh.HandleError(w, r, apperrors.NewAuthError("invalid email or password", err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
