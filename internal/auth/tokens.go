package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	storefronterrors "github.com/abgdnv/gostorefront/internal/errors"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const (
	claimRole  = "role"
	claimEmail = "email"
	claimName  = "name"
)

// Tokens issues and verifies HS256 session tokens. Revoked token IDs are remembered until the
// token would have expired anyway.
type Tokens struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewTokens(secret, issuer string, ttl time.Duration) *Tokens {
	return &Tokens{
		key:     []byte(secret),
		issuer:  issuer,
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// Issue signs a token for the user and returns it with its expiry.
func (t *Tokens) Issue(u User) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	tok, err := jwt.NewBuilder().
		JwtID(uuid.NewString()).
		Issuer(t.issuer).
		Subject(u.ID).
		IssuedAt(now).
		Expiration(exp).
		Claim(claimRole, string(u.Role)).
		Claim(claimEmail, u.Email).
		Claim(claimName, u.Name).
		Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build token: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), t.key))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), exp, nil
}

// Verify checks signature, issuer, expiry and revocation and returns the user the token was issued to.
func (t *Tokens) Verify(_ context.Context, raw string) (*User, error) {
	tok, err := t.parse(raw)
	if err != nil {
		return nil, err
	}
	if jti, ok := tok.JwtID(); ok && t.isRevoked(jti) {
		return nil, fmt.Errorf("%w: token revoked", storefronterrors.ErrInvalidToken)
	}

	var u User
	sub, ok := tok.Subject()
	if !ok || sub == "" {
		return nil, fmt.Errorf("%w: missing subject", storefronterrors.ErrInvalidToken)
	}
	u.ID = sub
	var role string
	if err := tok.Get(claimRole, &role); err != nil || !Role(role).Valid() {
		return nil, fmt.Errorf("%w: missing or unknown role", storefronterrors.ErrInvalidToken)
	}
	u.Role = Role(role)
	_ = tok.Get(claimEmail, &u.Email)
	_ = tok.Get(claimName, &u.Name)
	return &u, nil
}

// Revoke invalidates a valid token before its expiry.
func (t *Tokens) Revoke(raw string) error {
	tok, err := t.parse(raw)
	if err != nil {
		return err
	}
	jti, ok := tok.JwtID()
	if !ok {
		return fmt.Errorf("%w: missing token id", storefronterrors.ErrInvalidToken)
	}
	exp, _ := tok.Expiration()

	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	for id, until := range t.revoked {
		if until.Before(now) {
			delete(t.revoked, id)
		}
	}
	t.revoked[jti] = exp
	return nil
}

func (t *Tokens) parse(raw string) (jwt.Token, error) {
	tok, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.HS256(), t.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(t.issuer),
		jwt.WithClock(jwt.ClockFunc(t.now)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storefronterrors.ErrInvalidToken, err)
	}
	return tok, nil
}

func (t *Tokens) isRevoked(jti string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.revoked[jti]
	return ok
}
