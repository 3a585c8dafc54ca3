package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/coupon-marketplace/internal/auth"
	"github.com/fairyhunter13/coupon-marketplace/internal/config"
	"github.com/fairyhunter13/coupon-marketplace/internal/handler"
	"github.com/fairyhunter13/coupon-marketplace/internal/imagehost"
	"github.com/fairyhunter13/coupon-marketplace/internal/repository"
	"github.com/fairyhunter13/coupon-marketplace/internal/service"
	"github.com/fairyhunter13/coupon-marketplace/internal/validator"
	"github.com/fairyhunter13/coupon-marketplace/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	initLogger(cfg)

	// Cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.DB.DSN(), database.PoolOptions{
		MaxRetries:       cfg.DB.MaxRetries,
		StatementTimeout: cfg.DB.StatementTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			log.Fatal().Err(err).Msg("failed to apply schema")
		}
	}

	app, job, err := newServer(cfg, pool)
	if err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("failed to build server")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	if cfg.Purge.Enabled {
		g.Go(func() error {
			return job.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
		)
		defer cancel()

		// Waits for in-flight requests
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("server stopped with error")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("server stopped")
}

// newServer wires repositories, services and handlers into a fiber app.
// The returned job purges expired coupons and is started by the caller.
func newServer(cfg *config.Config, pool *pgxpool.Pool) (*fiber.App, *service.ExpiryJob, error) {
	tokens, err := auth.NewTokenService(cfg.Auth.TokenSecret)
	if err != nil {
		return nil, nil, err
	}

	companyRepo := repository.NewCompanyRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)
	purchaseRepo := repository.NewPurchaseRepository(pool)

	verifier := auth.NewCredentialVerifier(auth.AdminCredential{
		Email:    cfg.Auth.AdminEmail,
		Password: cfg.Auth.AdminPassword,
	}, companyRepo, customerRepo)
	loginManager := auth.NewLoginManager(verifier, tokens)
	gate := auth.NewAccessGate(tokens)

	images := imagehost.NewClient(cfg.Image)
	couponService := service.NewCouponService(pool, couponRepo, purchaseRepo, images)
	adminService := service.NewAdminService(companyRepo, customerRepo)
	job := service.NewExpiryJob(couponRepo, cfg.Purge.Interval)

	validate := validator.New()

	app := fiber.New(handler.AppConfig())

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(handler.AccessGate(gate, cfg.Auth.TokenHeader))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,PUT,DELETE",
		ExposeHeaders: "UNAUTHORIZED",
	}))

	healthHandler := handler.NewHealthHandler(pool)
	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	loginHandler := handler.NewLoginHandler(loginManager, validate)
	app.Post("/auth/login", loginHandler.Login)

	handler.NewAdminHandler(adminService, validate).Register(app.Group("/api/u-admin"))
	handler.NewCompanyHandler(couponService, adminService, validate).Register(app.Group("/api/u-company"))
	handler.NewCustomerHandler(couponService, adminService).Register(app.Group("/api/u-customer"))

	return app, job, nil
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
