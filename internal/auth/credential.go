package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const bcryptPrefix = "$2"

// Secret is the configured password in one of two forms, decided once at load time.
type Secret interface {
	// Matches reports whether candidate is the configured password.
	Matches(candidate string) bool
	// Kind names the variant for logs; it never includes secret material.
	Kind() string
}

// PlaintextSecret stores a digest of a plaintext password so comparison is length independent
// and constant time.
type PlaintextSecret struct {
	digest [sha256.Size]byte
}

func (s PlaintextSecret) Matches(candidate string) bool {
	other := sha256.Sum256([]byte(candidate))
	return subtle.ConstantTimeCompare(s.digest[:], other[:]) == 1
}

func (s PlaintextSecret) Kind() string { return "plaintext" }

// HashedSecret holds an encoded password hash (bcrypt or argon2id).
type HashedSecret struct {
	algorithm string
	encoded   string
	argon     argon2idHash
}

func (s HashedSecret) Matches(candidate string) bool {
	switch s.algorithm {
	case "bcrypt":
		return ComparePassword(s.encoded, candidate) == nil
	case "argon2id":
		return s.argon.matches(candidate)
	default:
		return false
	}
}

func (s HashedSecret) Kind() string { return s.algorithm }

// ParseSecret tags the configured password. Values carrying a recognised hash prefix must
// decode as that hash; anything else is plaintext.
func ParseSecret(raw string) (Secret, error) {
	if raw == "" {
		return nil, errors.New("configured password is empty")
	}
	switch {
	case strings.HasPrefix(raw, argon2idPrefix):
		h, err := decodeArgon2id(raw)
		if err != nil {
			return nil, fmt.Errorf("configured password hash: %w", err)
		}
		return HashedSecret{algorithm: "argon2id", encoded: raw, argon: h}, nil
	case strings.HasPrefix(raw, bcryptPrefix):
		if _, err := bcrypt.Cost([]byte(raw)); err != nil {
			return nil, fmt.Errorf("configured password hash: %w", err)
		}
		return HashedSecret{algorithm: "bcrypt", encoded: raw}, nil
	default:
		return PlaintextSecret{digest: sha256.Sum256([]byte(raw))}, nil
	}
}

// Credential is the single configured identity of the process.
type Credential struct {
	username string
	secret   Secret
}

// NewCredential builds the credential from configuration values.
func NewCredential(username, rawSecret string) (Credential, error) {
	if username == "" {
		return Credential{}, errors.New("configured username is empty")
	}
	secret, err := ParseSecret(rawSecret)
	if err != nil {
		return Credential{}, err
	}
	return Credential{username: username, secret: secret}, nil
}

func (c Credential) Username() string   { return c.username }
func (c Credential) SecretKind() string { return c.secret.Kind() }

// CredentialVerifier checks submitted credentials against the configured Credential.
type CredentialVerifier struct {
	cred Credential
}

func NewCredentialVerifier(cred Credential) *CredentialVerifier {
	return &CredentialVerifier{cred: cred}
}

// Verify reports whether username matches exactly and password satisfies the secret.
// The password check always runs so a wrong username costs the same as a wrong password.
func (v *CredentialVerifier) Verify(username, password string) bool {
	if v == nil || v.cred.secret == nil {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.cred.username)) == 1
	passOK := v.cred.secret.Matches(password)
	return userOK && passOK
}
