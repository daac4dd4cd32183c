package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType is the scheme clients use in the Authorization header.
const TokenType = "Bearer"

var signingMethod = jwt.SigningMethodHS256

// Claims is the validated content of a token.
type Claims struct {
	ID        string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// tokenClaims is the JWT payload encoding of Claims.
type tokenClaims struct {
	jwt.RegisteredClaims
}

func (c tokenClaims) toClaims() (Claims, error) {
	if c.Subject == "" {
		return Claims{}, errors.New("missing sub claim")
	}
	if c.IssuedAt == nil {
		return Claims{}, errors.New("missing iat claim")
	}
	if c.ExpiresAt == nil {
		return Claims{}, errors.New("missing exp claim")
	}
	return Claims{
		ID:        c.ID,
		Subject:   c.Subject,
		IssuedAt:  c.IssuedAt.Time,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// Option customises issuers and validators.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// IssuedToken is a freshly signed token and the claims it carries.
type IssuedToken struct {
	Token  string
	Claims Claims
}

// TokenIssuer signs time-bounded tokens for verified subjects.
type TokenIssuer struct {
	key SigningKey
	ttl time.Duration
	now func() time.Time
}

// NewTokenIssuer builds an issuer. A zero key or non-positive TTL is a configuration error.
func NewTokenIssuer(key SigningKey, ttl time.Duration, opts ...Option) (*TokenIssuer, error) {
	if key.IsZero() {
		return nil, errors.New("token issuer: signing key not configured")
	}
	if ttl <= 0 {
		return nil, errors.New("token issuer: ttl must be positive")
	}
	o := buildOptions(opts)
	return &TokenIssuer{key: key, ttl: ttl, now: o.now}, nil
}

// TTL returns the configured token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue builds and signs a token for subject.
func (i *TokenIssuer) Issue(subject string) (IssuedToken, error) {
	if subject == "" {
		return IssuedToken{}, errors.New("token issuer: empty subject")
	}
	now := i.now()
	wire := tokenClaims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}}

	signed, err := jwt.NewWithClaims(signingMethod, wire).SignedString(i.key.bytes())
	if err != nil {
		return IssuedToken{}, err
	}
	claims, err := wire.toClaims()
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: signed, Claims: claims}, nil
}
