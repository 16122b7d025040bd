package identity

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/campushub/campushub/internal/platform/httpx"
	"github.com/campushub/campushub/internal/shared"
)

// Middleware resolves bearer tokens into actors for downstream handlers.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// WithActor loads the actor for a request's bearer token, if present, and
// stores it in context. Requests without a token pass through with no actor;
// the decision engine treats an absent actor as Deny.
func (m Middleware) WithActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		actor, err := m.Service.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, shared.ErrUnauthenticated) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Error("authenticate token", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
	})
}

// RequireActor rejects requests that carry no authenticated, active actor.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFromContext(r.Context())
		if actor == nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		if !actor.IsActive {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "account inactive")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
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
