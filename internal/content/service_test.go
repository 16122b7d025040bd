package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/campushub/internal/shared"
)

type mockRepository struct {
	requests map[int64]*Request
	nextID   int64
	clubs    map[int64]bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		requests: make(map[int64]*Request),
		nextID:   1,
		clubs:    map[int64]bool{5: true},
	}
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Request, error) {
	cr, ok := m.requests[id]
	if !ok {
		return nil, fmt.Errorf("content request %d: %w", id, shared.ErrNotFound)
	}
	cp := *cr
	return &cp, nil
}

func (m *mockRepository) Create(ctx context.Context, req Request) (*Request, error) {
	req.ID = m.nextID
	m.nextID++
	req.Status = StatusPending
	req.CreatedAt = time.Now()
	cp := req
	m.requests[req.ID] = &cp
	return &req, nil
}

func (m *mockRepository) ListPending(ctx context.Context, limit, offset int) ([]Request, error) {
	var out []Request
	for _, cr := range m.requests {
		if cr.Status == StatusPending {
			out = append(out, *cr)
		}
	}
	return out, nil
}

func (m *mockRepository) ListByClub(ctx context.Context, clubID int64) ([]Request, error) {
	var out []Request
	for _, cr := range m.requests {
		if cr.ClubID == clubID {
			out = append(out, *cr)
		}
	}
	return out, nil
}

func (m *mockRepository) Review(ctx context.Context, id int64, status string, reviewerID int64, note *string) error {
	cr, ok := m.requests[id]
	if !ok || cr.Status != StatusPending {
		return fmt.Errorf("content request %d is not pending: %w", id, shared.ErrConflict)
	}
	now := time.Now()
	cr.Status = status
	cr.ReviewerID = &reviewerID
	cr.ReviewNote = note
	cr.ReviewedAt = &now
	return nil
}

func (m *mockRepository) ClubExists(ctx context.Context, clubID int64) (bool, error) {
	return m.clubs[clubID], nil
}

func testService(repo Repository) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func TestCreateStartsPending(t *testing.T) {
	repo := newMockRepository()
	svc := testService(repo)

	cr, err := svc.Create(context.Background(), 9, CreateRequest{ClubID: 5, Title: "Poster", Body: "Please publish"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, cr.Status)
	assert.Equal(t, int64(9), cr.RequesterID)
}

func TestCreateUnknownClub(t *testing.T) {
	repo := newMockRepository()
	svc := testService(repo)

	_, err := svc.Create(context.Background(), 9, CreateRequest{ClubID: 99, Title: "Poster", Body: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestApproveSetsReviewer(t *testing.T) {
	repo := newMockRepository()
	svc := testService(repo)
	created, err := svc.Create(context.Background(), 9, CreateRequest{ClubID: 5, Title: "Poster", Body: "x"})
	require.NoError(t, err)

	note := "looks good"
	approved, err := svc.Approve(context.Background(), 2, created.ID, &note)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewerID)
	assert.Equal(t, int64(2), *approved.ReviewerID)
	require.NotNil(t, approved.ReviewedAt)
}

func TestReviewIsTerminal(t *testing.T) {
	repo := newMockRepository()
	svc := testService(repo)
	created, err := svc.Create(context.Background(), 9, CreateRequest{ClubID: 5, Title: "Poster", Body: "x"})
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), 2, created.ID, nil)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), 2, created.ID, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConflict), "reviewing a reviewed request must conflict")
}

func TestReviewUnknownRequest(t *testing.T) {
	repo := newMockRepository()
	svc := testService(repo)

	_, err := svc.Approve(context.Background(), 2, 404, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
