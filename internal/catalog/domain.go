package catalog

import "time"

// Category groups events for discovery.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is a published campus happening, optionally tied to a club.
type Event struct {
	ID          int64      `json:"id"`
	ClubID      *int64     `json:"club_id,omitempty"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	IsPublished bool       `json:"is_published"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Story is an editorial piece shown on the landing pages.
type Story struct {
	ID          int64      `json:"id"`
	ClubID      *int64     `json:"club_id,omitempty"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Setting is one site-wide configuration entry.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateEventRequest carries the fields accepted on event creation.
type CreateEventRequest struct {
	ClubID      *int64     `json:"club_id"`
	CategoryID  *int64     `json:"category_id"`
	Title       string     `json:"title" validate:"required"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartsAt    time.Time  `json:"starts_at" validate:"required"`
	EndsAt      *time.Time `json:"ends_at"`
	IsPublished bool       `json:"is_published"`
}

// CreateCategoryRequest carries the fields accepted on category creation.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required,lowercase"`
}

// CreateStoryRequest carries the fields accepted on story creation.
type CreateStoryRequest struct {
	ClubID  *int64 `json:"club_id"`
	Title   string `json:"title" validate:"required"`
	Body    string `json:"body" validate:"required"`
	Publish bool   `json:"publish"`
}

// PutSettingRequest upserts one settings entry.
type PutSettingRequest struct {
	Value string `json:"value" validate:"required"`
}
