// Package imagehost uploads coupon images to an external hosting service.
package imagehost

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/fairyhunter13/coupon-marketplace/internal/config"
	"github.com/fairyhunter13/coupon-marketplace/internal/model"
)

// uploadResponse is the subset of the hosting service reply we read.
type uploadResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Client uploads images and returns their public URL.
// Any failure yields the configured fallback URL.
type Client struct {
	uploadURL   string
	apiKey      string
	fallbackURL string
	timeout     time.Duration
	limiter     *rate.Limiter
	newName     func() string
}

// NewClient creates a Client from configuration.
func NewClient(cfg config.ImageConfig) *Client {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &Client{
		uploadURL:   cfg.UploadURL,
		apiKey:      cfg.APIKey,
		fallbackURL: cfg.FallbackURL,
		timeout:     cfg.Timeout,
		limiter:     rate.NewLimiter(limit, 1),
		newName:     uuid.NewString,
	}
}

// FallbackURL is returned when an upload cannot complete.
func (c *Client) FallbackURL() string {
	return c.fallbackURL
}

// Upload sends the file and returns its hosted URL, or the fallback URL on failure.
func (c *Client) Upload(ctx context.Context, file model.ImageFile) string {
	url, err := c.upload(ctx, file)
	if err != nil {
		log.Warn().Err(err).Str("file", file.Name).Msg("Image upload failed, using fallback image")
		return c.FallbackURL()
	}
	return url
}

func (c *Client) upload(ctx context.Context, file model.ImageFile) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("image hosting api key not configured")
	}
	if len(file.Data) == 0 {
		return "", errors.New("empty image")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for upload slot: %w", err)
	}

	name := c.newName() + filepath.Ext(file.Name)

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("name", name)

	query := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(query)
	query.Set("key", c.apiKey)

	agent := fiber.Post(c.uploadURL).
		QueryString(query.String()).
		FileData(&fiber.FormFile{Fieldname: "image", Name: name, Content: file.Data}).
		MultipartForm(args)
	if c.timeout > 0 {
		agent.Timeout(c.timeout)
	}

	var resp uploadResponse
	code, _, errs := agent.Struct(&resp)
	if len(errs) > 0 {
		return "", fmt.Errorf("upload image: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK || !resp.Success || resp.Data.URL == "" {
		return "", fmt.Errorf("upload image: unexpected response status %d", code)
	}
	return resp.Data.URL, nil
}
