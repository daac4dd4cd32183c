package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/avilachehab/christmas-gifts/internal/events"
	"github.com/avilachehab/christmas-gifts/internal/throttle"
	apperrors "github.com/avilachehab/christmas-gifts/pkg/util"
)

// LoginThrottle limits login attempts per client IP. Limiter errors let the request through.
func LoginThrottle(limiter throttle.Limiter, dispatcher events.Dispatcher, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		allowed, retryAfter, err := limiter.Allow(c.UserContext(), ip)
		if err != nil {
			logger.Warn("login throttle unavailable", zap.Error(err))
			return c.Next()
		}
		if allowed {
			return c.Next()
		}

		if dispatcher != nil {
			event := events.NewEvent(events.EventLoginThrottled)
			event.ClientIP = ip
			event.Path = c.Path()
			if pubErr := dispatcher.Publish(c.UserContext(), event); pubErr != nil {
				logger.Warn("publish login throttle", zap.Error(pubErr))
			}
		}
		return apperrors.NewTooManyRequests(retryAfter)
	}
}
