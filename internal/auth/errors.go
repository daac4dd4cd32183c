package auth

import (
	"errors"
	"fmt"
)

// ErrorKind classifies authentication failures. Kinds are for logs and audit only;
// responses never reveal them.
type ErrorKind string

const (
	KindInvalidCredentials ErrorKind = "INVALID_CREDENTIALS"
	KindMissingToken       ErrorKind = "MISSING_TOKEN"
	KindMalformedToken     ErrorKind = "MALFORMED_TOKEN"
	KindSignatureMismatch  ErrorKind = "SIGNATURE_MISMATCH"
	KindExpiredToken       ErrorKind = "EXPIRED_TOKEN"
)

var kindMessages = map[ErrorKind]string{
	KindInvalidCredentials: "invalid credentials",
	KindMissingToken:       "missing token",
	KindMalformedToken:     "malformed token",
	KindSignatureMismatch:  "token signature mismatch",
	KindExpiredToken:       "token expired",
}

// Error is an authentication failure of a known kind.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	msg, ok := kindMessages[e.Kind]
	if !ok {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so wrapped causes still compare equal to the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrMissingToken       = &Error{Kind: KindMissingToken}
	ErrMalformedToken     = &Error{Kind: KindMalformedToken}
	ErrSignatureMismatch  = &Error{Kind: KindSignatureMismatch}
	ErrExpiredToken       = &Error{Kind: KindExpiredToken}
)

func newError(kind ErrorKind, cause error) error {
	return &Error{Kind: kind, Err: cause}
}

// KindOf reports the kind of an auth error, or "" when err is not one.
func KindOf(err error) ErrorKind {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return ""
}
