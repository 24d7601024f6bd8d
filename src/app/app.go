package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/pyfast/backend/src/handler"
	"github.com/pyfast/backend/src/repository"
	"github.com/pyfast/backend/src/service"

	"github.com/rs/zerolog"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// tokenCacheTTL bounds how long a verified session token is trusted without
// re-verification.
const tokenCacheTTL = 15 * time.Minute

type Application struct {
	config           AppConfig
	database         *gorm.DB
	redis            *redis.Client
	TokenService     *service.TokenService
	ChallengeService *service.ChallengeService
}

func NewApplication(ctx context.Context, config AppConfig) *Application {
	logger := zerolog.Ctx(ctx).With().Str("function", "NewApplication").Logger()

	// Connect to Redis
	redisOpts, err := redis.ParseURL(*config.RedisAddr)
	if err != nil {
		logger.Error().Err(err).Msg("failed to parse redis URL")
		return nil
	}

	rdb := redis.NewClient(redisOpts)

	// Test Redis connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Msg("connection to redis failed")
		return nil
	}
	logger.Info().Msg("Redis connection established")

	// Connect to database
	database, err := gorm.Open(postgresDriver.Open(*config.DSN), &gorm.Config{})
	if err != nil {
		logger.Error().Err(err).Msg("connection to database failed")
		return nil
	}

	// Test database connection
	db, err := database.DB()
	if err != nil {
		logger.Error().Err(err).Msg("failed to get underlying database connection")
		return nil
	}

	if err := db.Ping(); err != nil {
		logger.Error().Err(err).Msg("connection to database failed")
		return nil
	}

	logger.Info().Msg("Database connection established")

	// run migration files
	if err := MigrationUp(*config.DSN, *config.MigrationPath); err != nil {
		logger.Error().Err(err).Msg("failed to run migrations")
		return nil
	}

	store := repository.NewStore(database)
	tokenCache := repository.NewTokenCacheRepository(rdb, tokenCacheTTL)

	tokenService := service.NewTokenService(*config.JWTSecret, tokenCache)

	generator := service.NewChallengeGeneratorService(service.GeneratorConfig{
		APIKey:  *config.OpenAIKey,
		BaseURL: *config.OpenAIBaseURL,
		Model:   *config.OpenAIModel,
		Timeout: *config.GenerationTimeout,
	})

	ledger := service.NewQuotaLedger(store, *config.MaxQuota, time.Duration(*config.QuotaResetHours)*time.Hour)
	challengeService := service.NewChallengeService(store, ledger, generator)

	return &Application{
		config:           config,
		database:         database,
		redis:            rdb,
		TokenService:     tokenService,
		ChallengeService: challengeService,
	}
}

func (app *Application) Shutdown(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("function", "Shutdown").Logger()

	// Close database connection
	if app.database != nil {
		db, err := app.database.DB()
		if err != nil {
			logger.Error().Err(err).Msg("Failed to get underlying database connection")
		} else {
			if err := db.Close(); err != nil {
				logger.Error().Err(err).Msg("Failed to close database connection")
			} else {
				logger.Info().Msg("Database connection closed")
			}
		}
	}

	// Close Redis connection
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close redis connection")
		} else {
			logger.Info().Msg("Redis connection closed")
		}
	}
}

func (app *Application) RunHTTPServer(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	logger := zerolog.Ctx(ctx).With().Str("function", "RunHTTPServer").Logger()

	// Set to release mode to disable Gin logger
	gin.SetMode(gin.ReleaseMode)

	ginRouter := gin.Default()

	// Register routes
	app.registerRoutes(ctx, ginRouter)

	// Build HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", *app.config.Port),
		Handler: ginRouter,
	}

	// Start server in goroutine
	go func() {
		zerolog.Ctx(ctx).Info().Msgf("HTTP server is on http://localhost:%s/api/health", *app.config.Port)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			zerolog.Ctx(ctx).Panic().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	logger.Info().Msg("Gracefully shutting down HTTP server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Shutdown server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to shutdown HTTP server gracefully")
	} else {
		logger.Info().Msg("HTTP server shutdown complete")
	}
}

func (app *Application) registerRoutes(ctx context.Context, router *gin.Engine) {

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = *app.config.AllowOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	config.AllowCredentials = true

	router.Use(cors.New(config))

	handler.SetMiddlewares(ctx, router)

	challengeHandler := handler.NewChallengeHandler(app.ChallengeService)

	api := router.Group("/api")
	{
		api.GET("/health", handler.HandleHealthCheck)

		authenticated := api.Group("")
		authenticated.Use(handler.AuthMiddleware(app.TokenService))
		{
			authenticated.POST("/generate-challenge", challengeHandler.GenerateChallenge)
			authenticated.GET("/quota", challengeHandler.GetQuota)
			authenticated.GET("/my-history", challengeHandler.GetHistory)
		}
	}
}
