package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func clubPtr(v int64) *int64 { return &v }

func TestRoleKindValid(t *testing.T) {
	assert.True(t, RoleSuperAdmin.Valid())
	assert.True(t, RoleClubManager.Valid())
	assert.False(t, RoleKind("owner").Valid())
}

func TestRoleKindSystemWide(t *testing.T) {
	assert.True(t, RoleSuperAdmin.SystemWide())
	assert.True(t, RoleAdmin.SystemWide())
	assert.False(t, RoleClubManager.SystemWide())
	assert.False(t, RoleUser.SystemWide())
}

func TestActorAuthorityHelpers(t *testing.T) {
	super := &Actor{Grants: []RoleGrant{{Kind: RoleSuperAdmin}}}
	admin := &Actor{Grants: []RoleGrant{{Kind: RoleAdmin}}}
	manager := &Actor{Grants: []RoleGrant{{Kind: RoleClubManager, ClubID: clubPtr(3)}}}
	plain := &Actor{Grants: []RoleGrant{}}

	assert.True(t, super.HasSuperAdmin())
	assert.False(t, admin.HasSuperAdmin())

	assert.True(t, super.HasSystemElevation())
	assert.True(t, admin.HasSystemElevation())
	assert.False(t, manager.HasSystemElevation())

	assert.True(t, manager.IsClubManagerOf(3))
	assert.False(t, manager.IsClubManagerOf(4))

	assert.True(t, admin.HasClubAuthority(3), "elevation implies authority over every club")
	assert.True(t, manager.HasClubAuthority(3))
	assert.False(t, manager.HasClubAuthority(4))
	assert.False(t, plain.HasClubAuthority(3))
}
