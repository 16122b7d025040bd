package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushub/campushub/internal/shared"
)

// Service issues bearer tokens and resolves them back into actors. Token
// validation mechanics live entirely here; the rest of the system consumes
// only the Actor shape.
type Service struct {
	repo     Repository
	tokens   *redis.Client
	tokenTTL time.Duration
}

// NewService constructs a Service backed by the given repository and redis
// token store.
func NewService(repo Repository, tokens *redis.Client, tokenTTL time.Duration) *Service {
	return &Service{repo: repo, tokens: tokens, tokenTTL: tokenTTL}
}

// Login validates credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Actor, error) {
	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", shared.ErrUnauthenticated)
	}
	if !acc.IsActive {
		return "", nil, fmt.Errorf("invalid credentials: %w", shared.ErrUnauthenticated)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", shared.ErrUnauthenticated)
	}

	actor, err := s.repo.FindActor(ctx, acc.ID)
	if err != nil {
		return "", nil, fmt.Errorf("identity: load actor after login: %w", err)
	}

	token := uuid.NewString()
	if err := s.tokens.Set(ctx, tokenKey(token), actor.ID, s.tokenTTL).Err(); err != nil {
		return "", nil, fmt.Errorf("identity: store token: %w", err)
	}
	return token, actor, nil
}

// Logout revokes a bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.tokens.Del(ctx, tokenKey(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("identity: revoke token: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token into an actor with its grant set
// loaded. An unknown or expired token yields ErrUnauthenticated.
func (s *Service) Authenticate(ctx context.Context, token string) (*Actor, error) {
	if token == "" {
		return nil, shared.ErrUnauthenticated
	}
	id, err := s.tokens.Get(ctx, tokenKey(token)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrUnauthenticated
		}
		return nil, fmt.Errorf("identity: resolve token: %w", err)
	}
	actor, err := s.repo.FindActor(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthenticated
		}
		return nil, err
	}
	return actor, nil
}

func tokenKey(token string) string {
	return "identity:token:" + token
}
