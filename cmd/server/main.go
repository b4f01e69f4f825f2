// @title         brand-review API
// @version       1.0
// @description   Сервис проверки макетов на соответствие брендбуку с помощью vision-модели.
// @BasePath      /api
// @schemes       http
// @host          localhost:3001
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Токен авторизации. Поддерживаются форматы: "Bearer <JWT>" или "<JWT>".
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	_ "github.com/artem13815/brandreview/docs"

	// internal imports
	"github.com/artem13815/brandreview/api/http"
	"github.com/artem13815/brandreview/api/http/handlers"
	"github.com/artem13815/brandreview/pkg/brand"
	rediscache "github.com/artem13815/brandreview/pkg/cache/redis"
	"github.com/artem13815/brandreview/pkg/config"
	"github.com/artem13815/brandreview/pkg/health"
	"github.com/artem13815/brandreview/pkg/health/checkers"
	"github.com/artem13815/brandreview/pkg/llm"
	"github.com/artem13815/brandreview/pkg/llm/azure"
	"github.com/artem13815/brandreview/pkg/llm/mock"
	"github.com/artem13815/brandreview/pkg/logger"
	"github.com/artem13815/brandreview/pkg/repository/memory"
	pgrepo "github.com/artem13815/brandreview/pkg/repository/postgres"
	"github.com/artem13815/brandreview/pkg/review"
	"github.com/artem13815/brandreview/pkg/security/jwt"
	"github.com/artem13815/brandreview/pkg/storage/postgres"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration from env/.env/config.yaml
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		var missing config.ErrMissing
		if errors.As(err, &missing) {
			log.Fatal("configuration incomplete: set these environment variables or USE_MOCK_API=true",
				zap.Strings("missing", []string(missing)))
		}
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()
	brands := brand.NewFileRepository(cfg.BrandDataDir)
	healthCheckers := []health.Checker{checkers.NewBrandDataChecker(brands, cfg.DefaultBrandID)}

	// Model: Azure OpenAI deployment or the offline mock
	var model llm.ChatModel
	modelName := cfg.AzureDeployment
	if cfg.UseMockAPI {
		model = mock.New()
		modelName = "mock"
		log.Warn("USE_MOCK_API is set: replies are generated locally")
	} else {
		model = azure.New(cfg.AzureEndpoint, cfg.AzureDeployment, cfg.AzureAPIKey, cfg.AzureAPIVersion, cfg.AzureTimeout, cfg.AzureMaxRetries)
		log.Info("azure openai configured",
			zap.String("endpoint", cfg.AzureEndpoint),
			zap.String("deployment", cfg.AzureDeployment),
		)
	}

	// Review history: PostgreSQL when DATABASE_URL is set, memory otherwise
	var repo review.Repository
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("postgres connect", zap.Error(err))
		}
		defer pool.Close()
		pgRepo, err := pgrepo.NewReviewRepository(ctx, pool)
		if err != nil {
			log.Fatal("init review repo", zap.Error(err))
		}
		repo = pgRepo
		healthCheckers = append(healthCheckers, checkers.NewPostgresChecker(pool))
	} else {
		repo = memory.NewReviewRepo()
		log.Warn("DATABASE_URL is not set: reviews are kept in memory")
	}

	// Optional reply cache
	var cache review.Cache
	if cfg.RedisAddr != "" {
		rc := rediscache.New(rediscache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.CacheTTL)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis unavailable at startup, replies will not be cached until it recovers",
				zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		cache = rc
		healthCheckers = append(healthCheckers, checkers.NewRedisChecker(rc))
	}

	reviewUC := review.NewService(brands, model, repo, cache, log.Named("review"), modelName, cfg.DefaultBrandID)
	readiness := health.NewService(healthCheckers...)

	h := http.Handlers{
		Health: handlers.NewHealthHandler(readiness, handlers.ConfigFlags{
			FoundryEndpoint:       cfg.FoundryEndpoint != "",
			AgentID:               cfg.FoundryAgentID != "",
			AzureOpenAIConfigured: cfg.AzureConfigured(),
		}),
		Agent:       handlers.NewAgentHandler(reviewUC, log.Named("agent")),
		Brand:       handlers.NewBrandHandler(brands, log),
		Attachments: handlers.NewAttachmentHandler(log.Named("attachments")),
		Reviews:     handlers.NewReviewHandler(reviewUC, log.Named("reviews")),
	}

	// JWT auth middleware for the review history
	var authMW fiber.Handler
	if cfg.JWTSecret != "" {
		authMW = jwt.NewAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer)
	} else {
		log.Warn("JWT_SECRET is not set: /api/v1/reviews is unauthenticated")
	}

	app := fiber.New(fiber.Config{
		BodyLimit:             50 << 20, // inline base64 images
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          cfg.AzureTimeout + 10*time.Second,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(http.RequestLogger(log.Named("http")))

	http.Register(app, h, authMW)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)
	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Info("shutdown signal received")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error("shutdown", zap.Error(err))
		}
	}()

	log.Info("HTTP server listening",
		zap.String("port", cfg.Port),
		zap.Bool("mock", cfg.UseMockAPI),
		zap.String("health", "http://localhost:"+cfg.Port+"/health"),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
