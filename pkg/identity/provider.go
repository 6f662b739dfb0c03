// Package identity resolves the user id every journal operation is scoped to.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrNoIdentity means the session has no user. It is sticky: once a
	// session fails to resolve it never retries.
	ErrNoIdentity   = errors.New("identity: no user identity")
	ErrInvalidToken = errors.New("identity: invalid token")
	ErrNoToken      = errors.New("identity: no token stored")
)

// Provider yields the id of the current user.
type Provider interface {
	UserID(ctx context.Context) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (string, error)

func (f ProviderFunc) UserID(ctx context.Context) (string, error) {
	return f(ctx)
}

// Static always returns the same id. Used for --user and tests.
type Static string

func (s Static) UserID(context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", errors.New("identity: empty static user id")
	}
	return string(s), nil
}

// Session resolves its provider at most once. Every caller, concurrent or
// not, sees the same id or the same failure for the life of the session.
type Session struct {
	provider Provider

	once sync.Once
	id   string
	err  error
}

func NewSession(p Provider) *Session {
	return &Session{provider: p}
}

func (s *Session) UserID(ctx context.Context) (string, error) {
	s.once.Do(func() {
		if s.provider == nil {
			s.err = fmt.Errorf("%w: no provider", ErrNoIdentity)
			return
		}
		id, err := s.provider.UserID(ctx)
		if err == nil && strings.TrimSpace(id) == "" {
			err = errors.New("provider returned an empty id")
		}
		if err != nil {
			s.err = fmt.Errorf("%w: %w", ErrNoIdentity, err)
			return
		}
		s.id = id
	})
	return s.id, s.err
}
