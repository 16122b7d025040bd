package identity

import "time"

// RoleKind enumerates the fixed role hierarchy, ordered by authority.
type RoleKind string

const (
	RoleSuperAdmin  RoleKind = "super_admin"
	RoleAdmin       RoleKind = "admin"
	RoleClubManager RoleKind = "club_manager"
	RoleUser        RoleKind = "user"
)

// Valid reports whether k is one of the known role kinds.
func (k RoleKind) Valid() bool {
	switch k {
	case RoleSuperAdmin, RoleAdmin, RoleClubManager, RoleUser:
		return true
	}
	return false
}

// SystemWide reports whether the kind must carry no club scope.
func (k RoleKind) SystemWide() bool {
	return k == RoleSuperAdmin || k == RoleAdmin
}

// RoleGrant is a (kind, optional club scope) authorization fact.
// SUPER_ADMIN and ADMIN grants carry no club scope; CLUB_MANAGER grants carry
// exactly one.
type RoleGrant struct {
	ID        int64     `json:"id"`
	ActorID   int64     `json:"actor_id"`
	Kind      RoleKind  `json:"kind"`
	ClubID    *int64    `json:"club_id,omitempty"`
	GrantedAt time.Time `json:"granted_at"`
}

// Actor is an authenticated principal with its grant set loaded eagerly.
// Absence of privilege is represented by an empty Grants slice, never by a
// missing field.
type Actor struct {
	ID          int64       `json:"id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	IsActive    bool        `json:"is_active"`
	Grants      []RoleGrant `json:"grants"`
}

// HasSuperAdmin reports whether the actor holds a SUPER_ADMIN grant.
func (a *Actor) HasSuperAdmin() bool {
	for _, g := range a.Grants {
		if g.Kind == RoleSuperAdmin {
			return true
		}
	}
	return false
}

// HasSystemElevation reports whether the actor holds ADMIN or SUPER_ADMIN.
func (a *Actor) HasSystemElevation() bool {
	for _, g := range a.Grants {
		if g.Kind == RoleSuperAdmin || g.Kind == RoleAdmin {
			return true
		}
	}
	return false
}

// IsClubManagerOf reports whether the actor holds a CLUB_MANAGER grant scoped
// to the given club.
func (a *Actor) IsClubManagerOf(clubID int64) bool {
	for _, g := range a.Grants {
		if g.Kind == RoleClubManager && g.ClubID != nil && *g.ClubID == clubID {
			return true
		}
	}
	return false
}

// HasClubAuthority reports whether the actor may administer the given club:
// system elevation or a matching CLUB_MANAGER grant.
func (a *Actor) HasClubAuthority(clubID int64) bool {
	return a.HasSystemElevation() || a.IsClubManagerOf(clubID)
}
