package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Identity is the verified subject of a request.
type Identity struct {
	Subject string
}

// TokenValidator checks signature, structure and expiry of tokens issued under the same key.
type TokenValidator struct {
	key    SigningKey
	parser *jwt.Parser
	now    func() time.Time
}

// NewTokenValidator builds a validator bound to key.
func NewTokenValidator(key SigningKey, opts ...Option) (*TokenValidator, error) {
	if key.IsZero() {
		return nil, errors.New("token validator: signing key not configured")
	}
	o := buildOptions(opts)
	return &TokenValidator{
		key:    key,
		parser: jwt.NewParser(jwt.WithStrictDecoding()),
		now:    o.now,
	}, nil
}

// Validate returns the identity embedded in token or the first failure kind encountered.
func (v *TokenValidator) Validate(token string) (Identity, error) {
	claims, err := v.ParseClaims(token)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Subject: claims.Subject}, nil
}

// IsValid is Validate collapsed to a boolean.
func (v *TokenValidator) IsValid(token string) bool {
	_, err := v.ParseClaims(token)
	return err == nil
}

// ParseClaims runs the checks in order: presence, shape, signature, payload, expiry.
func (v *TokenValidator) ParseClaims(token string) (Claims, error) {
	if token == "" {
		return Claims{}, ErrMissingToken
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, newError(KindMalformedToken, fmt.Errorf("token has %d segments, want 3", len(parts)))
	}
	for _, part := range parts {
		if part == "" {
			return Claims{}, newError(KindMalformedToken, errors.New("token has an empty segment"))
		}
	}

	// Strict decoding rejects non-canonical trailing bits, so every altered character
	// in the signature segment changes the decoded bytes or fails here.
	sig, err := v.parser.DecodeSegment(parts[2])
	if err != nil {
		return Claims{}, newError(KindSignatureMismatch, err)
	}
	// HMAC Verify compares with hmac.Equal.
	if err := signingMethod.Verify(parts[0]+"."+parts[1], sig, v.key.bytes()); err != nil {
		return Claims{}, newError(KindSignatureMismatch, err)
	}

	var wire tokenClaims
	parsed, _, err := v.parser.ParseUnverified(token, &wire)
	if err != nil {
		return Claims{}, newError(KindMalformedToken, err)
	}
	if parsed.Method == nil || parsed.Method.Alg() != signingMethod.Alg() {
		return Claims{}, newError(KindMalformedToken, errors.New("unexpected signing method"))
	}
	claims, err := wire.toClaims()
	if err != nil {
		return Claims{}, newError(KindMalformedToken, err)
	}

	if !v.now().Before(claims.ExpiresAt) {
		return Claims{}, newError(KindExpiredToken, fmt.Errorf("expired at %s", claims.ExpiresAt.UTC().Format(time.RFC3339)))
	}
	return claims, nil
}
