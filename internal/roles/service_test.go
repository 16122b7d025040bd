package roles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/campushub/internal/identity"
	"github.com/campushub/campushub/internal/shared"
)

type mockRepository struct {
	grants  map[int64]identity.RoleGrant
	nextID  int64
	actors  map[int64]bool
	clubs   map[int64]bool
	getErr  error
	delErr  error
	countFn func(excludeGrantID int64) (int, error)
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		grants: make(map[int64]identity.RoleGrant),
		nextID: 1,
		actors: map[int64]bool{1: true, 2: true, 3: true},
		clubs:  map[int64]bool{5: true},
	}
}

func (m *mockRepository) addGrant(actorID int64, kind identity.RoleKind, clubID *int64) identity.RoleGrant {
	g := identity.RoleGrant{ID: m.nextID, ActorID: actorID, Kind: kind, ClubID: clubID}
	m.grants[g.ID] = g
	m.nextID++
	return g
}

func (m *mockRepository) Get(ctx context.Context, id int64) (identity.RoleGrant, error) {
	if m.getErr != nil {
		return identity.RoleGrant{}, m.getErr
	}
	g, ok := m.grants[id]
	if !ok {
		return identity.RoleGrant{}, fmt.Errorf("grant %d: %w", id, shared.ErrNotFound)
	}
	return g, nil
}

func (m *mockRepository) ListByActor(ctx context.Context, actorID int64) ([]identity.RoleGrant, error) {
	out := []identity.RoleGrant{}
	for _, g := range m.grants {
		if g.ActorID == actorID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *mockRepository) Exists(ctx context.Context, actorID int64, kind identity.RoleKind, clubID *int64) (bool, error) {
	for _, g := range m.grants {
		if g.ActorID != actorID || g.Kind != kind {
			continue
		}
		if (g.ClubID == nil) != (clubID == nil) {
			continue
		}
		if clubID == nil || *g.ClubID == *clubID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) Insert(ctx context.Context, actorID int64, kind identity.RoleKind, clubID *int64) (identity.RoleGrant, error) {
	return m.addGrant(actorID, kind, clubID), nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if m.delErr != nil {
		return m.delErr
	}
	if _, ok := m.grants[id]; !ok {
		return fmt.Errorf("grant %d: %w", id, shared.ErrNotFound)
	}
	delete(m.grants, id)
	return nil
}

func (m *mockRepository) CountSuperAdminsExcluding(ctx context.Context, grantID int64) (int, error) {
	if m.countFn != nil {
		return m.countFn(grantID)
	}
	n := 0
	for _, g := range m.grants {
		if g.Kind == identity.RoleSuperAdmin && g.ID != grantID {
			n++
		}
	}
	return n, nil
}

func (m *mockRepository) ActorExists(ctx context.Context, actorID int64) (bool, error) {
	return m.actors[actorID], nil
}

func (m *mockRepository) ClubExists(ctx context.Context, clubID int64) (bool, error) {
	return m.clubs[clubID], nil
}

func testService(t *testing.T, repo Repository) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, client, logger, nil)
}

func superAdmin(id int64) *identity.Actor {
	return &identity.Actor{ID: id, IsActive: true, Grants: []identity.RoleGrant{{Kind: identity.RoleSuperAdmin}}}
}

func admin(id int64) *identity.Actor {
	return &identity.Actor{ID: id, IsActive: true, Grants: []identity.RoleGrant{{Kind: identity.RoleAdmin}}}
}

func TestGrantSystemRoleRequiresSuperAdmin(t *testing.T) {
	repo := newMockRepository()
	svc := testService(t, repo)

	_, err := svc.Grant(context.Background(), admin(1), 2, identity.RoleAdmin, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	grant, err := svc.Grant(context.Background(), superAdmin(1), 2, identity.RoleAdmin, nil)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleAdmin, grant.Kind)
	assert.Nil(t, grant.ClubID)
}

func TestGrantSystemRoleRejectsClubScope(t *testing.T) {
	repo := newMockRepository()
	svc := testService(t, repo)
	clubID := int64(5)

	_, err := svc.Grant(context.Background(), superAdmin(1), 2, identity.RoleSuperAdmin, &clubID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestGrantClubManager(t *testing.T) {
	repo := newMockRepository()
	svc := testService(t, repo)
	clubID := int64(5)

	grant, err := svc.Grant(context.Background(), admin(1), 2, identity.RoleClubManager, &clubID)
	require.NoError(t, err)
	require.NotNil(t, grant.ClubID)
	assert.Equal(t, clubID, *grant.ClubID)

	// Missing scope and unknown club are both rejected.
	_, err = svc.Grant(context.Background(), admin(1), 2, identity.RoleClubManager, nil)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	missing := int64(99)
	_, err = svc.Grant(context.Background(), admin(1), 2, identity.RoleClubManager, &missing)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGrantUserKindNotGrantable(t *testing.T) {
	repo := newMockRepository()
	svc := testService(t, repo)

	_, err := svc.Grant(context.Background(), superAdmin(1), 2, identity.RoleUser, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestGrantDuplicateConflicts(t *testing.T) {
	repo := newMockRepository()
	repo.addGrant(2, identity.RoleAdmin, nil)
	svc := testService(t, repo)

	_, err := svc.Grant(context.Background(), superAdmin(1), 2, identity.RoleAdmin, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict))
}

func TestRevokeLastSuperAdminConflicts(t *testing.T) {
	repo := newMockRepository()
	only := repo.addGrant(1, identity.RoleSuperAdmin, nil)
	svc := testService(t, repo)

	err := svc.Revoke(context.Background(), superAdmin(1), only.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict))
	assert.Contains(t, repo.grants, only.ID, "the grant must survive")
}

func TestRevokeSuperAdminWithAnotherRemaining(t *testing.T) {
	repo := newMockRepository()
	first := repo.addGrant(1, identity.RoleSuperAdmin, nil)
	repo.addGrant(2, identity.RoleSuperAdmin, nil)
	svc := testService(t, repo)

	err := svc.Revoke(context.Background(), superAdmin(1), first.ID)
	require.NoError(t, err)
	assert.NotContains(t, repo.grants, first.ID)
}

func TestRevokeSuperAdminReleasesLock(t *testing.T) {
	repo := newMockRepository()
	first := repo.addGrant(1, identity.RoleSuperAdmin, nil)
	repo.addGrant(2, identity.RoleSuperAdmin, nil)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc := NewService(repo, client, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	require.NoError(t, svc.Revoke(context.Background(), superAdmin(1), first.ID))
	assert.False(t, mr.Exists(shared.SuperAdminRevokeLockKey), "the revoke mutex must be released")
}

func TestRevokeAdminCannotTouchSuperAdmin(t *testing.T) {
	repo := newMockRepository()
	target := repo.addGrant(1, identity.RoleSuperAdmin, nil)
	svc := testService(t, repo)

	err := svc.Revoke(context.Background(), admin(2), target.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))
	assert.Contains(t, repo.grants, target.ID)
}

func TestRevokeAdminMayRevokeClubManager(t *testing.T) {
	repo := newMockRepository()
	clubID := int64(5)
	target := repo.addGrant(3, identity.RoleClubManager, &clubID)
	svc := testService(t, repo)

	require.NoError(t, svc.Revoke(context.Background(), admin(2), target.ID))
	assert.NotContains(t, repo.grants, target.ID)
}

func TestRevokeWithoutElevationForbidden(t *testing.T) {
	repo := newMockRepository()
	clubID := int64(5)
	target := repo.addGrant(3, identity.RoleClubManager, &clubID)
	svc := testService(t, repo)

	plain := &identity.Actor{ID: 9, IsActive: true}
	err := svc.Revoke(context.Background(), plain, target.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))
}

func TestListForActorUnknownActor(t *testing.T) {
	repo := newMockRepository()
	svc := testService(t, repo)

	_, err := svc.ListForActor(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
