package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of an anonymous session token. The subject is the
// user id.
type Claims struct {
	jwt.RegisteredClaims
	Anonymous bool `json:"anon"`
}

// Anonymous establishes an anonymous identity on first use and keeps
// returning it afterwards. The signed token is the only thing persisted.
type Anonymous struct {
	store  TokenStore
	secret []byte
	issuer string
	clock  func() time.Time
	newID  func() string
}

type AnonymousOption func(*Anonymous)

func WithClock(clock func() time.Time) AnonymousOption {
	return func(a *Anonymous) { a.clock = clock }
}

func WithIDs(newID func() string) AnonymousOption {
	return func(a *Anonymous) { a.newID = newID }
}

// NewAnonymous signs tokens with secret. issuer should be the namespace so a
// token minted for one environment is rejected by another.
func NewAnonymous(store TokenStore, secret, issuer string, opts ...AnonymousOption) *Anonymous {
	a := &Anonymous{
		store:  store,
		secret: []byte(secret),
		issuer: issuer,
		clock:  time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// UserID returns the stored identity, minting one if none exists. A stored
// token that fails validation is an error, never silently replaced, so an
// established identity is not swapped for a fresh empty one.
func (a *Anonymous) UserID(ctx context.Context) (string, error) {
	raw, err := a.store.Load(ctx)
	switch {
	case errors.Is(err, ErrNoToken):
		return a.mint(ctx)
	case err != nil:
		return "", fmt.Errorf("identity: load token: %w", err)
	}
	return a.Parse(raw)
}

func (a *Anonymous) mint(ctx context.Context) (string, error) {
	id := a.newID()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  id,
			Issuer:   a.issuer,
			IssuedAt: jwt.NewNumericDate(a.clock()),
		},
		Anonymous: true,
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("identity: sign token: %w", err)
	}
	if err := a.store.Save(ctx, signed); err != nil {
		return "", fmt.Errorf("identity: save token: %w", err)
	}
	return id, nil
}

// Parse validates a token and returns its subject.
func (a *Anonymous) Parse(raw string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithTimeFunc(a.clock),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || !claims.Anonymous || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
