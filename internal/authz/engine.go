package authz

import (
	"context"
	"fmt"

	"github.com/campushub/campushub/internal/identity"
)

// Engine is the authorization decision engine. Precedence is strict
// top-to-bottom: system elevation wins, ownership-as-submitter grants a
// read-only bypass, club-scoped authority is the general case, and the
// default is Deny. An actor qualifying via two routes resolves to Allow.
type Engine struct {
	resolver Resolver
}

// NewEngine constructs an Engine over the given ownership resolver.
func NewEngine(resolver Resolver) *Engine {
	return &Engine{resolver: resolver}
}

// Decide evaluates one authorization request. The returned error is non-nil
// only for resolver failures (missing resource, broken ownership chain,
// storage trouble); refusals are carried in the Decision value.
func (e *Engine) Decide(ctx context.Context, actor *identity.Actor, req Request) (Decision, error) {
	if actor == nil {
		return Deny(ReasonUnauthenticated), nil
	}
	if !actor.IsActive {
		return Deny(ReasonInactive), nil
	}

	if systemOnly(req) {
		if actor.HasSystemElevation() {
			return Allow(), nil
		}
		return Deny(ReasonInsufficientPrivilege), nil
	}

	owner, err := e.resolver.Resolve(ctx, req.Resource, req.ResourceID)
	if err != nil {
		return Decision{}, fmt.Errorf("authz: decide %s %s/%d: %w", req.Action, req.Resource, req.ResourceID, err)
	}
	if owner.ClubID == nil {
		// Not club-scoped and not recognized as system-only above.
		if actor.HasSystemElevation() {
			return Allow(), nil
		}
		return Deny(ReasonInsufficientPrivilege), nil
	}

	isSubmitter := owner.SubmitterID != nil && *owner.SubmitterID == actor.ID
	if req.Action == ActionRead && isSubmitter {
		return Allow(), nil
	}

	if actor.HasClubAuthority(*owner.ClubID) {
		return Allow(), nil
	}

	if req.Action == ActionChangeStatus && isSubmitter {
		// The submitter may view their application but never move its status
		// unless they independently hold club authority, checked above.
		return Deny(ReasonSubmitterStatusChange), nil
	}

	return Deny(ReasonNotOwner), nil
}

// systemOnly reports whether the request is gated on system elevation alone,
// with no club ownership involved.
func systemOnly(req Request) bool {
	switch {
	case req.Action == ActionGrantRole || req.Action == ActionRevokeRole:
		return true
	case req.Resource == ResourceRoleGrant:
		return true
	case req.Resource == ResourceContentQueue:
		return true
	case req.Resource == ResourceClub && (req.Action == ActionCreate || req.Action == ActionDelete):
		return true
	case req.Resource == ResourceContentRequest && req.Action == ActionChangeStatus:
		// Approving or rejecting a content request is a platform decision.
		return true
	}
	return false
}
