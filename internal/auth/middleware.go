package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/avilachehab/christmas-gifts/internal/events"
)

const identityKey = "auth_identity"

type identityCtxKey struct{}

// WithIdentity attaches id to ctx for code that only sees a context.Context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext retrieves the identity set by the middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	return id, ok
}

// IdentityFromCtx retrieves the authenticated identity from fiber locals.
func IdentityFromCtx(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(identityKey).(Identity)
	return id, ok
}

// AuthMiddleware validates bearer tokens on every protected route.
type AuthMiddleware struct {
	tokens     *TokenValidator
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuthMiddleware constructs middleware. dispatcher may be nil.
func NewAuthMiddleware(tokens *TokenValidator, dispatcher events.Dispatcher, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, dispatcher: dispatcher, logger: logger}
}

// Handle enforces authentication. Every failure is a bare 401.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	id, err := m.tokens.Validate(bearerToken(c.Get(fiber.HeaderAuthorization)))
	if err != nil {
		m.reject(c, err)
		// SendStatus would fill the body with the status text.
		c.Status(fiber.StatusUnauthorized)
		return nil
	}

	c.Locals(identityKey, id)
	c.SetUserContext(WithIdentity(c.UserContext(), id))
	return c.Next()
}

// bearerToken returns "" for a missing header or a scheme other than Bearer.
func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, TokenType) {
		return ""
	}
	return strings.TrimSpace(token)
}

func (m *AuthMiddleware) reject(c *fiber.Ctx, err error) {
	kind := KindOf(err)
	m.logger.Info("token rejected",
		zap.String("reason", string(kind)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("ip", c.IP()),
	)
	if m.dispatcher == nil {
		return
	}

	event := events.NewEvent(events.EventTokenRejected)
	event.Reason = string(kind)
	event.Path = c.Path()
	event.ClientIP = c.IP()
	if pubErr := m.dispatcher.Publish(c.UserContext(), event); pubErr != nil {
		m.logger.Warn("publish token rejection", zap.Error(pubErr))
	}
}
