package content

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/campushub/campushub/internal/shared"
)

// Service handles content request business logic.
type Service struct {
	repo   Repository
	logger *slog.Logger
	audit  *shared.AuditLogger
}

// NewService builds a Service instance.
func NewService(repo Repository, logger *slog.Logger, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, logger: logger, audit: audit}
}

// Create files a pending content request for a club.
func (s *Service) Create(ctx context.Context, requesterID int64, req CreateRequest) (*Request, error) {
	ok, err := s.repo.ClubExists(ctx, req.ClubID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("club %d: %w", req.ClubID, shared.ErrNotFound)
	}
	return s.repo.Create(ctx, Request{
		ClubID:      req.ClubID,
		RequesterID: requesterID,
		Title:       req.Title,
		Body:        req.Body,
	})
}

// Get returns one content request.
func (s *Service) Get(ctx context.Context, id int64) (*Request, error) {
	return s.repo.Get(ctx, id)
}

// ListPending returns the review queue, oldest first.
func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]Request, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListPending(ctx, limit, offset)
}

// ListByClub returns a club's requests, newest first.
func (s *Service) ListByClub(ctx context.Context, clubID int64) ([]Request, error) {
	ok, err := s.repo.ClubExists(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("club %d: %w", clubID, shared.ErrNotFound)
	}
	return s.repo.ListByClub(ctx, clubID)
}

// Approve moves a pending request to approved.
func (s *Service) Approve(ctx context.Context, reviewerID, id int64, note *string) (*Request, error) {
	return s.review(ctx, reviewerID, id, StatusApproved, note)
}

// Reject moves a pending request to rejected.
func (s *Service) Reject(ctx context.Context, reviewerID, id int64, note *string) (*Request, error) {
	return s.review(ctx, reviewerID, id, StatusRejected, note)
}

func (s *Service) review(ctx context.Context, reviewerID, id int64, status string, note *string) (*Request, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Review(ctx, id, status, reviewerID, note); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  reviewerID,
		Action:   "content_request." + status,
		Entity:   "content_request",
		EntityID: strconv.FormatInt(id, 10),
	}); err != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}
	return s.repo.Get(ctx, id)
}
