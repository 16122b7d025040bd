package identity

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedRouter(t *testing.T, svc *Service) http.Handler {
	t.Helper()
	mw := Middleware{Service: svc, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	r := chi.NewRouter()
	r.Use(mw.WithActor)
	r.Group(func(r chi.Router) {
		r.Use(RequireActor)
		r.Get("/secure", func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			w.Header().Set("X-Actor-Email", actor.Email)
			w.WriteHeader(http.StatusOK)
		})
	})
	r.Get("/open", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestRequireActorWithValidToken(t *testing.T) {
	svc, _ := newAuthFixture(t)
	router := protectedRouter(t, svc)

	token, _, err := svc.Login(context.Background(), "dana@example.edu", "hunter2")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dana@example.edu", rec.Header().Get("X-Actor-Email"))
}

func TestRequireActorWithoutToken(t *testing.T) {
	svc, _ := newAuthFixture(t)
	router := protectedRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireActorWithGarbageToken(t *testing.T) {
	svc, _ := newAuthFixture(t)
	router := protectedRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code, "an unknown token degrades to anonymous")
}

func TestOpenRouteIgnoresMissingToken(t *testing.T) {
	svc, _ := newAuthFixture(t)
	router := protectedRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerTokenParsing(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":  "abc",
		"bearer abc":  "abc",
		"Basic xyz":   "",
		"Bearer":      "",
		"":            "",
		"Bearer  abc": "abc",
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, bearerToken(req), "header %q", header)
	}
}
