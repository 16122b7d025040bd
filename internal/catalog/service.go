package catalog

import (
	"context"
	"time"
)

// Service handles catalog business logic. Reads are public; writes are
// reserved to system-elevated actors at the handler layer.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	return s.repo.CreateCategory(ctx, Category{Name: req.Name, Slug: req.Slug})
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error) {
	return s.repo.CreateEvent(ctx, Event{
		ClubID:      req.ClubID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		IsPublished: req.IsPublished,
	})
}

func (s *Service) GetEvent(ctx context.Context, id int64) (*Event, error) {
	return s.repo.GetEvent(ctx, id)
}

// ListEvents returns events ordered by start time; unpublished events are
// visible only when includeUnpublished.
func (s *Service) ListEvents(ctx context.Context, includeUnpublished bool, limit, offset int) ([]Event, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListEvents(ctx, !includeUnpublished, limit, offset)
}

func (s *Service) PublishEvent(ctx context.Context, id int64, published bool) (*Event, error) {
	if err := s.repo.PublishEvent(ctx, id, published); err != nil {
		return nil, err
	}
	return s.repo.GetEvent(ctx, id)
}

func (s *Service) DeleteEvent(ctx context.Context, id int64) error {
	return s.repo.DeleteEvent(ctx, id)
}

func (s *Service) CreateStory(ctx context.Context, req CreateStoryRequest) (*Story, error) {
	story := Story{ClubID: req.ClubID, Title: req.Title, Body: req.Body}
	if req.Publish {
		now := time.Now().UTC()
		story.PublishedAt = &now
	}
	return s.repo.CreateStory(ctx, story)
}

func (s *Service) ListStories(ctx context.Context, includeUnpublished bool) ([]Story, error) {
	return s.repo.ListStories(ctx, !includeUnpublished)
}

func (s *Service) DeleteStory(ctx context.Context, id int64) error {
	return s.repo.DeleteStory(ctx, id)
}

func (s *Service) GetSetting(ctx context.Context, key string) (*Setting, error) {
	return s.repo.GetSetting(ctx, key)
}

func (s *Service) ListSettings(ctx context.Context) ([]Setting, error) {
	return s.repo.ListSettings(ctx)
}

func (s *Service) PutSetting(ctx context.Context, key, value string) (*Setting, error) {
	return s.repo.PutSetting(ctx, key, value)
}
