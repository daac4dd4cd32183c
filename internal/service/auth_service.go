package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/avilachehab/christmas-gifts/internal/auth"
	"github.com/avilachehab/christmas-gifts/internal/events"
)

// LoginAttempt is one submitted username/password pair and where it came from.
type LoginAttempt struct {
	Username string
	Password string
	ClientIP string
}

// AuthService coordinates the login flow.
type AuthService struct {
	verifier   *auth.CredentialVerifier
	issuer     *auth.TokenIssuer
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Verifier   *auth.CredentialVerifier
	Issuer     *auth.TokenIssuer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		verifier:   deps.Verifier,
		issuer:     deps.Issuer,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Login verifies the attempt and issues a token. Bad credentials yield auth.ErrInvalidCredentials
// without saying which half was wrong.
func (s *AuthService) Login(ctx context.Context, attempt LoginAttempt) (auth.IssuedToken, error) {
	if !s.verifier.Verify(attempt.Username, attempt.Password) {
		// The submitted username is not recorded; it may be a mistyped password.
		s.publish(ctx, events.EventLoginFailed, "", attempt.ClientIP, string(auth.KindInvalidCredentials))
		return auth.IssuedToken{}, auth.ErrInvalidCredentials
	}

	issued, err := s.issuer.Issue(attempt.Username)
	if err != nil {
		return auth.IssuedToken{}, err
	}

	s.publish(ctx, events.EventLoginSucceeded, issued.Claims.Subject, attempt.ClientIP, "")
	return issued, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, subject, clientIP, reason string) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewEvent(eventType)
	event.Subject = subject
	event.ClientIP = clientIP
	event.Reason = reason
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish auth event", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
