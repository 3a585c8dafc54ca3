package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-marketplace/internal/auth"
	"github.com/fairyhunter13/coupon-marketplace/internal/metrics"
	"github.com/fairyhunter13/coupon-marketplace/internal/model"
)

const claimsKey = "claims"

// GateEvaluator decides whether a request may proceed.
type GateEvaluator interface {
	Evaluate(req auth.GateRequest) auth.Decision
}

// AccessGate returns middleware that runs every request through the gate.
// The token is read from tokenHeader. Claims of an allowed request are stored
// for handlers, see ClaimsFrom.
func AccessGate(gate GateEvaluator, tokenHeader string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := gate.Evaluate(auth.GateRequest{
			Method:         c.Method(),
			Path:           c.Path(),
			Token:          c.Get(tokenHeader),
			RequestHeaders: c.Get(fiber.HeaderAccessControlRequestHeaders),
		})

		switch decision.Verdict {
		case auth.VerdictPreflight:
			c.Set(fiber.HeaderAccessControlAllowMethods, "GET, POST, PUT, DELETE")
			c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
			c.Set(fiber.HeaderAccessControlAllowHeaders, "*")
			return c.SendStatus(fiber.StatusOK)

		case auth.VerdictReject:
			metrics.RecordGateRejection(decision.Cause)
			log.Debug().
				Str("request_id", requestID(c)).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("cause", decision.Cause).
				Msg("request rejected at gate")

			c.Set("UNAUTHORIZED", decision.Reason)
			c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
			c.Set(fiber.HeaderAccessControlAllowHeaders, "*")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": decision.Reason})
		}

		if decision.Claims != nil {
			c.Locals(claimsKey, decision.Claims)
		}
		return c.Next()
	}
}

// ClaimsFrom returns the claims the gate stored for this request, or nil.
func ClaimsFrom(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(claimsKey).(*auth.Claims)
	return claims
}

// principalID returns the caller's id. It reports false when the request carries
// no claims or the claims belong to another role.
func principalID(c *fiber.Ctx, role model.Role) (int64, bool) {
	claims := ClaimsFrom(c)
	if claims == nil || claims.UserType != role {
		return 0, false
	}
	return claims.UserID, true
}

// requireRole rejects requests whose claims are missing or carry another role.
func requireRole(role model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := ClaimsFrom(c)
		if claims == nil {
			return notLoggedIn(c)
		}
		if claims.UserType != role {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": fmt.Sprintf("You do not have %s privileges.", role.Lower()),
			})
		}
		return c.Next()
	}
}

func notLoggedIn(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "You are not logged in"})
}
