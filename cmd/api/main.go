package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ki11erRabbit/jwt-pizza-service/docs"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/auth"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/config"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/database"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/database/migration"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/factory"
	handlers "github.com/Ki11erRabbit/jwt-pizza-service/internal/http/handler"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/http/middleware"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/logger"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/metrics"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/otel"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/repository/postgres"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/service"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/storage"
)

// @title JWT Pizza Service
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is auto-loaded if present
	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.New(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Component: "jwt-pizza-service"})

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	// The schema is created in the background; the gated stores hold every
	// request until it has finished.
	ready := database.NewReadiness()
	seeder := postgres.NewUserPostgres(db, hasher, postgres.WithLogger(log))
	go func() {
		res, err := migration.Bootstrap(ctx, db, seeder, migration.AdminAccount{
			Name:     cfg.Admin.Name,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		}, log)
		if err != nil {
			log.Error().Err(err).Msg("database bootstrap failed")
		} else if res.AdminID != 0 {
			log.Info().Int64("admin_id", res.AdminID).Msg("default admin seeded")
		}
		ready.Resolve(err)
	}()

	gated := []postgres.Option{postgres.WithLogger(log), postgres.WithGate(ready)}
	users := postgres.NewUserPostgres(db, hasher, gated...)
	sessions := postgres.NewSessionPostgres(db, gated...)
	franchises := postgres.NewFranchisePostgres(db, gated...)
	menu := postgres.NewMenuPostgres(db, gated...)
	orders := postgres.NewOrderPostgres(db, cfg.Database.ListPerPage, gated...)

	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	var images storage.Storage
	if cfg.MinIO.Enabled() {
		images, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize object storage")
		}
	} else {
		log.Warn().Msg("MINIO_ENDPOINT not set, menu image uploads disabled")
	}

	svc := handlers.Services{
		Auth:      service.NewAuthService(users, sessions, auth.NewTokenIssuer(cfg.Auth.JWTSecret), m, log),
		Franchise: service.NewFranchiseService(franchises, log),
		Order:     service.NewOrderService(menu, orders, images, factory.NewClient(cfg.Factory), m, log),
	}

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}

	app := fiber.New(fiber.Config{
		AppName:      "jwt-pizza-service",
		ErrorHandler: handlers.ErrorHandler(log),
		BodyLimit:    8 * 1024 * 1024,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID(log))
	app.Use(middleware.LoggerWith(log))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, db, ready, svc, cfg.Version)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}
		docs.SwaggerInfo.Version = cfg.Version

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
		if err := shutdownTracing(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("tracing shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("version", cfg.Version).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
