package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/avilachehab/christmas-gifts/internal/observability"
	apperrors "github.com/avilachehab/christmas-gifts/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				err = writeError(c, err, logger, metrics)
			}
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, err error, logger *zap.Logger, metrics *observability.Metrics) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		err = apperrors.NewDomainError("HTTP_ERROR", fe.Message, fe.Code, nil)
	}
	domainErr := apperrors.ToDomainError(err)
	metrics.RecordError(routeLabel(c, domainErr.HTTPStatus), c.Method(), domainErr.Code)

	if domainErr.HTTPStatus >= 500 {
		logger.Error("request failed", zap.Error(domainErr))
	}
	for k, v := range domainErr.Headers {
		c.Set(k, v)
	}
	if domainErr.EmptyBody {
		c.Status(domainErr.HTTPStatus)
		c.Response().ResetBody()
		return nil
	}

	response := fiber.Map{"error": fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}}
	if len(domainErr.Details) > 0 {
		response["error"].(fiber.Map)["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(response)
}

// routeLabel keys error counters by registered route so arbitrary request paths cannot
// grow the metrics map.
func routeLabel(c *fiber.Ctx, status int) string {
	if status == fiber.StatusNotFound {
		return observability.UnmatchedRoute
	}
	return c.Route().Path
}
