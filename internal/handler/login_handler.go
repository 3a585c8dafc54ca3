package handler

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-marketplace/internal/metrics"
	"github.com/fairyhunter13/coupon-marketplace/internal/model"
)

// LoginServiceInterface defines the login operation.
type LoginServiceInterface interface {
	Login(ctx context.Context, email, password string, role model.Role) (*model.UserDetails, error)
}

// LoginHandler handles POST /auth/login.
type LoginHandler struct {
	service   LoginServiceInterface
	validator *validator.Validate
}

// NewLoginHandler creates a new LoginHandler.
func NewLoginHandler(svc LoginServiceInterface, v *validator.Validate) *LoginHandler {
	return &LoginHandler{service: svc, validator: v}
}

// Login verifies the credentials and returns the user details with a fresh token.
// Unknown credentials get 404.
func (h *LoginHandler) Login(c *fiber.Ctx) error {
	var req model.LoginRequest
	if msg := bindBody(c, h.validator, &req); msg != "" {
		return badRequest(c, msg)
	}

	role, err := model.ParseRole(req.UserType)
	if err != nil {
		return badRequest(c, err.Error())
	}

	details, err := h.service.Login(c.Context(), req.Email, req.Password, role)
	if err != nil {
		metrics.RecordLogin(role.Lower(), "error")
		return respondError(c, err, "failed to log in")
	}
	if details == nil {
		metrics.RecordLogin(role.Lower(), "denied")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("You do not have %s privileges.", role.Lower()),
		})
	}

	metrics.RecordLogin(role.Lower(), "success")
	log.Info().
		Str("request_id", requestID(c)).
		Str("user_type", string(role)).
		Int64("user_id", details.ID).
		Msg("user logged in")

	return c.JSON(details)
}
