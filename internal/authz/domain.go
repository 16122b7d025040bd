// Package authz turns {actor, action, resource} tuples into allow/deny
// decisions over the club ownership chain.
package authz

// Action enumerates the mutation/read vocabulary gated by the engine.
type Action string

const (
	ActionRead         Action = "read"
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionChangeStatus Action = "changeStatus"
	ActionGrantRole    Action = "grantRole"
	ActionRevokeRole   Action = "revokeRole"
)

// ResourceClass names the resource kinds the engine understands.
type ResourceClass string

const (
	ResourceClub           ResourceClass = "club"
	ResourceForm           ResourceClass = "form"
	ResourceApplication    ResourceClass = "application"
	ResourceContentRequest ResourceClass = "content_request"
	ResourceClubMember     ResourceClass = "club_member"
	ResourceRoleGrant      ResourceClass = "role_grant"
	// ResourceContentQueue is the system-wide pending content request listing,
	// which has no owning club.
	ResourceContentQueue ResourceClass = "content_queue"
)

// DenyReason explains a refusal. Denial is a normal return value, not an
// error: a large fraction of calls are expected to be denied.
type DenyReason string

const (
	ReasonUnauthenticated       DenyReason = "unauthenticated"
	ReasonInactive              DenyReason = "inactive"
	ReasonInsufficientPrivilege DenyReason = "insufficient-privilege"
	ReasonNotOwner              DenyReason = "not-owner"
	ReasonSubmitterStatusChange DenyReason = "submitters cannot change status"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Allow is the positive decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny builds a refusal with the given reason.
func Deny(reason DenyReason) Decision { return Decision{Allowed: false, Reason: reason} }

// Request describes one authorization question.
type Request struct {
	Action     Action
	Resource   ResourceClass
	ResourceID int64
}

// Ownership is the resolved owner of a resource. A nil ClubID means the
// resource is not club-scoped. SubmitterID is set for applications only.
type Ownership struct {
	ClubID      *int64
	SubmitterID *int64
}
