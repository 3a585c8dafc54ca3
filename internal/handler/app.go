package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// AppConfig is the fiber configuration the server runs with.
// Routing is case-sensitive so a route only matches the exact path the
// access gate evaluated.
func AppConfig() fiber.Config {
	return fiber.Config{
		AppName:       "Coupon Marketplace",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   120 * time.Second,
		BodyLimit:     5 * 1024 * 1024, // coupon images arrive as multipart uploads
	}
}
