package handlers

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"

	"github.com/avilachehab/christmas-gifts/internal/api/dto"
	"github.com/avilachehab/christmas-gifts/internal/auth"
	"github.com/avilachehab/christmas-gifts/internal/service"
	apperrors "github.com/avilachehab/christmas-gifts/pkg/util"
)

// AuthHandler exposes the login endpoint and the current session.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := req.Validate(); err != nil {
		return validationError(err)
	}

	issued, err := h.auth.Login(c.UserContext(), service.LoginAttempt{
		Username: req.Username,
		Password: req.Password,
		ClientIP: c.IP(),
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return apperrors.NewUnauthorized(err.Error())
		}
		return apperrors.NewInternalError(err)
	}

	return c.JSON(dto.LoginResponse{Token: issued.Token, TokenType: auth.TokenType})
}

// Session handles GET /api/auth/session for an already authenticated caller.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	id, ok := auth.IdentityFromCtx(c)
	if !ok {
		return apperrors.NewUnauthorized("no identity on request")
	}
	return c.JSON(dto.SessionResponse{Username: id.Subject})
}

func validationError(err error) error {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return apperrors.NewBadRequest(err.Error())
	}
	details := make(map[string]any, len(verrs))
	for field, ferr := range verrs {
		details[field] = ferr.Error()
	}
	return apperrors.NewValidationError("invalid payload", details)
}
