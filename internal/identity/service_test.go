package identity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushub/campushub/internal/shared"
)

type mockRepository struct {
	accounts map[string]*Account
	actors   map[int64]*Actor
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	acc, ok := m.accounts[email]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", email, shared.ErrNotFound)
	}
	return acc, nil
}

func (m *mockRepository) FindActor(ctx context.Context, id int64) (*Actor, error) {
	actor, ok := m.actors[id]
	if !ok {
		return nil, fmt.Errorf("actor %d: %w", id, shared.ErrNotFound)
	}
	return actor, nil
}

func newAuthFixture(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockRepository{
		accounts: map[string]*Account{
			"dana@example.edu": {ID: 7, Email: "dana@example.edu", PasswordHash: string(hash), IsActive: true},
			"off@example.edu":  {ID: 8, Email: "off@example.edu", PasswordHash: string(hash), IsActive: false},
		},
		actors: map[int64]*Actor{
			7: {ID: 7, Email: "dana@example.edu", IsActive: true, Grants: []RoleGrant{}},
		},
	}
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, client, time.Hour), mr
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	token, actor, err := svc.Login(ctx, "dana@example.edu", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, int64(7), actor.ID)

	resolved, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, actor.ID, resolved.ID)
	assert.NotNil(t, resolved.Grants, "grants load eagerly, empty slice not nil")
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, _, err := svc.Login(context.Background(), "dana@example.edu", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrUnauthenticated))
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, _, err := svc.Login(context.Background(), "off@example.edu", "hunter2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrUnauthenticated))
}

func TestLoginUnknownEmailIndistinguishable(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, _, err := svc.Login(context.Background(), "ghost@example.edu", "hunter2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrUnauthenticated))
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	token, _, err := svc.Login(ctx, "dana@example.edu", "hunter2")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.Authenticate(ctx, token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrUnauthenticated))
}

func TestAuthenticateExpiredToken(t *testing.T) {
	svc, mr := newAuthFixture(t)
	ctx := context.Background()

	token, _, err := svc.Login(ctx, "dana@example.edu", "hunter2")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = svc.Authenticate(ctx, token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrUnauthenticated))
}

func TestAuthenticateEmptyToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Authenticate(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrUnauthenticated))
}
