package auth

import "errors"

// MinSigningKeyLength is the minimum HMAC-SHA-256 secret size in bytes.
const MinSigningKeyLength = 32

var errShortSigningKey = errors.New("signing secret must be at least 32 bytes")

// SigningKey is the process-wide HMAC secret. It is immutable and redacts itself when printed.
type SigningKey struct {
	secret []byte
}

// NewSigningKey derives a SigningKey from the configured secret.
func NewSigningKey(secret string) (SigningKey, error) {
	if len(secret) < MinSigningKeyLength {
		return SigningKey{}, errShortSigningKey
	}
	return SigningKey{secret: []byte(secret)}, nil
}

// IsZero reports whether the key was never initialised.
func (k SigningKey) IsZero() bool {
	return len(k.secret) == 0
}

func (k SigningKey) String() string   { return "[REDACTED]" }
func (k SigningKey) GoString() string { return "auth.SigningKey{[REDACTED]}" }

// bytes hands the secret to the HMAC routines; never expose it outside the package.
func (k SigningKey) bytes() []byte {
	return k.secret
}
