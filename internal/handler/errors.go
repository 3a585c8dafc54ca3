package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-marketplace/internal/auth"
	"github.com/fairyhunter13/coupon-marketplace/internal/service"
)

// errorStatus maps an error to its HTTP status. Zero means the error is not a client error.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, auth.ErrMissingCredentials),
		errors.Is(err, auth.ErrInvalidCredentials):
		return fiber.StatusBadRequest
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenMalformed):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNotUnique):
		return fiber.StatusConflict
	}
	return 0
}

// respondError writes err as a JSON error body. Unclassified errors are logged and hidden behind a 500.
func respondError(c *fiber.Ctx, err error, msg string) error {
	if status := errorStatus(err); status != 0 {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	log.Error().
		Err(err).
		Str("request_id", requestID(c)).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg(msg)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// bindBody parses and validates the body into req. It returns the client message on failure.
func bindBody(c *fiber.Ctx, v *validator.Validate, req any) string {
	if err := c.BodyParser(req); err != nil {
		return "invalid request body"
	}
	if err := v.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return ""
}

func requestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

// formatValidationError converts the first validator failure to a client message.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		field := fe.Field()
		switch fe.Tag() {
		case "required", "notblank":
			return "invalid request: " + field + " is required"
		case "max":
			return fmt.Sprintf("invalid request: %s exceeds maximum length of %s", field, fe.Param())
		case "gt", "gte":
			return fmt.Sprintf("invalid request: %s must be at least %s", field, fe.Param())
		default:
			return "invalid request: " + field + " is invalid"
		}
	}
	return "invalid request"
}

// idParam parses a positive int64 path parameter.
func idParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", service.ErrInvalidRequest, name)
	}
	return id, nil
}
