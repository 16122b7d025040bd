package content

import "time"

// Request statuses. Pending is the only reviewable state.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Request is a club's petition to publish content on the platform. It is
// reviewed by platform admins through the pending queue.
type Request struct {
	ID          int64      `json:"id"`
	ClubID      int64      `json:"club_id"`
	RequesterID int64      `json:"requester_id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Status      string     `json:"status"`
	ReviewerID  *int64     `json:"reviewer_id,omitempty"`
	ReviewNote  *string    `json:"review_note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
}

// CreateRequest carries the fields accepted on creation.
type CreateRequest struct {
	ClubID int64  `json:"club_id" validate:"required"`
	Title  string `json:"title" validate:"required"`
	Body   string `json:"body" validate:"required"`
}

// ReviewRequest carries an optional note attached to the review decision.
type ReviewRequest struct {
	Note *string `json:"note"`
}
