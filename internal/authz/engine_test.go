package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/campushub/internal/identity"
	"github.com/campushub/campushub/internal/shared"
)

type fakeResolver struct {
	ownership map[ResourceClass]map[int64]Ownership
	err       error
}

func (f *fakeResolver) Resolve(ctx context.Context, class ResourceClass, id int64) (Ownership, error) {
	if f.err != nil {
		return Ownership{}, f.err
	}
	if byID, ok := f.ownership[class]; ok {
		if own, ok := byID[id]; ok {
			return own, nil
		}
	}
	return Ownership{}, shared.ErrNotFound
}

func ptr(v int64) *int64 { return &v }

func actorWith(grants ...identity.RoleGrant) *identity.Actor {
	return &identity.Actor{ID: 10, IsActive: true, Grants: grants}
}

func newTestEngine() *Engine {
	return NewEngine(&fakeResolver{
		ownership: map[ResourceClass]map[int64]Ownership{
			ResourceClub:        {1: {ClubID: ptr(1)}, 2: {ClubID: ptr(2)}},
			ResourceForm:        {100: {ClubID: ptr(1)}},
			ResourceApplication: {500: {ClubID: ptr(1), SubmitterID: ptr(10)}},
		},
	})
}

func TestDecideUnauthenticated(t *testing.T) {
	engine := newTestEngine()

	decision, err := engine.Decide(context.Background(), nil, Request{Action: ActionRead, Resource: ResourceClub, ResourceID: 1})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonUnauthenticated, decision.Reason)
}

func TestDecideInactiveActor(t *testing.T) {
	engine := newTestEngine()
	actor := &identity.Actor{ID: 10, IsActive: false, Grants: []identity.RoleGrant{{Kind: identity.RoleSuperAdmin}}}

	decision, err := engine.Decide(context.Background(), actor, Request{Action: ActionRead, Resource: ResourceClub, ResourceID: 1})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonInactive, decision.Reason)
}

func TestDecideSystemOnlyOperations(t *testing.T) {
	engine := newTestEngine()
	admin := actorWith(identity.RoleGrant{Kind: identity.RoleAdmin})
	manager := actorWith(identity.RoleGrant{Kind: identity.RoleClubManager, ClubID: ptr(1)})

	cases := []struct {
		name string
		req  Request
	}{
		{"grant role", Request{Action: ActionGrantRole, Resource: ResourceRoleGrant}},
		{"revoke role", Request{Action: ActionRevokeRole, Resource: ResourceRoleGrant}},
		{"content queue", Request{Action: ActionRead, Resource: ResourceContentQueue}},
		{"create club", Request{Action: ActionCreate, Resource: ResourceClub}},
		{"delete club", Request{Action: ActionDelete, Resource: ResourceClub, ResourceID: 1}},
		{"review content request", Request{Action: ActionChangeStatus, Resource: ResourceContentRequest, ResourceID: 7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision, err := engine.Decide(context.Background(), admin, tc.req)
			require.NoError(t, err)
			assert.True(t, decision.Allowed, "admin should pass the elevation gate")

			decision, err = engine.Decide(context.Background(), manager, tc.req)
			require.NoError(t, err)
			assert.False(t, decision.Allowed, "club manager must not pass the elevation gate")
			assert.Equal(t, ReasonInsufficientPrivilege, decision.Reason)
		})
	}
}

func TestDecideClubAuthority(t *testing.T) {
	engine := newTestEngine()
	manager := actorWith(identity.RoleGrant{Kind: identity.RoleClubManager, ClubID: ptr(1)})

	decision, err := engine.Decide(context.Background(), manager, Request{Action: ActionUpdate, Resource: ResourceForm, ResourceID: 100})
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "manager of the owning club may update its form")

	decision, err = engine.Decide(context.Background(), manager, Request{Action: ActionUpdate, Resource: ResourceClub, ResourceID: 2})
	require.NoError(t, err)
	assert.False(t, decision.Allowed, "manager of club 1 has no authority over club 2")
	assert.Equal(t, ReasonNotOwner, decision.Reason)
}

func TestDecideSubmitterReadBypass(t *testing.T) {
	engine := newTestEngine()
	submitter := actorWith() // no grants at all

	decision, err := engine.Decide(context.Background(), submitter, Request{Action: ActionRead, Resource: ResourceApplication, ResourceID: 500})
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "submitters may read their own application")

	decision, err = engine.Decide(context.Background(), submitter, Request{Action: ActionUpdate, Resource: ResourceApplication, ResourceID: 500})
	require.NoError(t, err)
	assert.False(t, decision.Allowed, "the read bypass must not extend to writes")
}

func TestDecideSubmitterCannotChangeStatus(t *testing.T) {
	engine := newTestEngine()
	submitter := actorWith()

	decision, err := engine.Decide(context.Background(), submitter, Request{Action: ActionChangeStatus, Resource: ResourceApplication, ResourceID: 500})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonSubmitterStatusChange, decision.Reason)
}

func TestDecideSubmitterWithClubAuthorityMayChangeStatus(t *testing.T) {
	// Qualifying via two routes resolves to Allow: a submitter who also
	// manages the owning club keeps the reviewer powers.
	engine := newTestEngine()
	both := actorWith(identity.RoleGrant{Kind: identity.RoleClubManager, ClubID: ptr(1)})

	decision, err := engine.Decide(context.Background(), both, Request{Action: ActionChangeStatus, Resource: ResourceApplication, ResourceID: 500})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestDecideSuperAdminOverridesOwnership(t *testing.T) {
	engine := newTestEngine()
	super := actorWith(identity.RoleGrant{Kind: identity.RoleSuperAdmin})

	decision, err := engine.Decide(context.Background(), super, Request{Action: ActionChangeStatus, Resource: ResourceApplication, ResourceID: 500})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestDecideMissingResource(t *testing.T) {
	engine := newTestEngine()
	admin := actorWith(identity.RoleGrant{Kind: identity.RoleAdmin})

	_, err := engine.Decide(context.Background(), admin, Request{Action: ActionRead, Resource: ResourceForm, ResourceID: 999})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestDecideResolverFailureIsAnError(t *testing.T) {
	engine := NewEngine(&fakeResolver{err: shared.ErrIntegrity})
	admin := actorWith(identity.RoleGrant{Kind: identity.RoleAdmin})

	_, err := engine.Decide(context.Background(), admin, Request{Action: ActionRead, Resource: ResourceApplication, ResourceID: 500})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrIntegrity))
}
