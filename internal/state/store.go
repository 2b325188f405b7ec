package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gosshub/client/internal/auth"
	"gosshub/client/internal/model"
)

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string, expiresAt time.Time) error
	Clear(ctx context.Context) error
}

// ErrNoToken is returned by a TokenStore that has nothing saved.
var ErrNoToken = errors.New("no saved token")

type Store struct {
	mu     sync.Mutex
	state  State
	tokens TokenStore
	now    func() time.Time
}

func NewStore(tokens TokenStore) *Store {
	return &Store{tokens: tokens, now: time.Now}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() State {
	out := s.state
	out.Documents = append([]model.Document(nil), s.state.Documents...)
	return out
}

// Restore loads a previously saved token. The user is not considered logged
// in until a request made with the token succeeds.
func (s *Store) Restore(ctx context.Context) error {
	if s.tokens == nil {
		return nil
	}
	token, err := s.tokens.Load(ctx)
	if errors.Is(err, ErrNoToken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	claims, err := auth.ParseClaims(token)
	if err != nil {
		return s.tokens.Clear(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.JWT = token
	s.state.User = Identity{Username: claims.Username, Admin: claims.Admin}
	return nil
}

// Dispatch applies action and persists token changes. A jwt/set also sets
// the user from the token payload.
func (s *Store) Dispatch(ctx context.Context, action Action) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Reduce(s.state, action)

	switch action.Kind {
	case JWTSet:
		claims, err := auth.ParseClaims(action.JWT)
		if err != nil {
			s.state = Reduce(s.state, Logout())
			return s.snapshot(), err
		}
		s.state = Reduce(s.state, SetUser(Identity{Username: claims.Username, Admin: claims.Admin}))
		if s.tokens != nil {
			if err := s.tokens.Save(ctx, action.JWT, claims.Expiry()); err != nil {
				return s.snapshot(), fmt.Errorf("save token: %w", err)
			}
		}
	case AuthLogout:
		if s.tokens != nil {
			if err := s.tokens.Clear(ctx); err != nil {
				return s.snapshot(), fmt.Errorf("clear token: %w", err)
			}
		}
	}
	return s.snapshot(), nil
}

// Token returns the current bearer token, or "" when none is held.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.JWT
}

// Expired reports whether the held token is already past its expiry.
func (s *Store) Expired() bool {
	token := s.Token()
	if token == "" {
		return false
	}
	_, err := auth.Check(token, s.now())
	return errors.Is(err, auth.ErrExpiredToken)
}
