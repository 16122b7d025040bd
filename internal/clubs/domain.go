package clubs

import "time"

// Club is the owning entity of forms, content requests and memberships.
type Club struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Logo        *string   `json:"logo,omitempty"`
	ContactInfo *string   `json:"contact_info,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member joins an actor to a club. Its Role lives in a separate namespace
// from role grants ("member", "officer", "president", ...).
type Member struct {
	ID       int64     `json:"id"`
	ClubID   int64     `json:"club_id"`
	ActorID  int64     `json:"actor_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// CreateClubRequest carries the fields accepted on creation.
type CreateClubRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	Logo        *string `json:"logo"`
	ContactInfo *string `json:"contact_info"`
}

// UpdateClubRequest carries optional updates; nil fields are untouched.
type UpdateClubRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Logo        *string `json:"logo"`
	ContactInfo *string `json:"contact_info"`
	IsActive    *bool   `json:"is_active"`
}

// AddMemberRequest adds an actor to a club.
type AddMemberRequest struct {
	ActorID int64  `json:"actor_id" validate:"required"`
	Role    string `json:"role" validate:"required"`
}
