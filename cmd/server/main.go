package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/sencity/user-service/adapters/cache"
	"github.com/sencity/user-service/adapters/event"
	httpAdapter "github.com/sencity/user-service/adapters/http"
	"github.com/sencity/user-service/adapters/persistence"
	"github.com/sencity/user-service/internal/application/service"
	"github.com/sencity/user-service/internal/application/usecase/emailcheck"
	"github.com/sencity/user-service/internal/application/usecase/signup"
	"github.com/sencity/user-service/internal/config"
	"github.com/sencity/user-service/internal/domain/userprofile"
	"github.com/sencity/user-service/pkg/logger"
	"github.com/sencity/user-service/pkg/password"
	"github.com/sencity/user-service/pkg/tracing"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	appLogger.Info("Starting user service...", zap.String("env", cfg.App.Env))

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Tracing
	if cfg.Tracing.OTLPEndpoint != "" {
		tp, err := tracing.NewTracerProvider(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init tracer", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				appLogger.Error("Failed to shutdown tracer", err)
			}
		}()
	}

	// Storage
	var profileRepo userprofile.Repository
	switch cfg.DB.Driver {
	case "memory":
		appLogger.Warn("Using in-memory storage, profiles are lost on restart")
		profileRepo = persistence.NewInMemoryUserProfileRepo()
	case "postgres":
		if cfg.DB.AutoMigrate {
			if err := persistence.RunMigrations(cfg.DB.MigrationsPath, cfg.DB.DSN, appLogger); err != nil {
				appLogger.Fatal("Cannot run migrations", err)
			}
		}
		dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot connect Postgres", err)
		}
		defer dbPool.Close()
		profileRepo = persistence.NewPostgresUserProfileRepo(dbPool, appLogger)
	default:
		appLogger.Fatal("Unknown db driver", errors.New(cfg.DB.Driver))
	}

	// Rate limiting
	var limiter service.RateLimiter
	if cfg.Redis.Addr != "" {
		redisClient, err := persistence.NewRedisClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot connect Redis", err)
		}
		defer redisClient.Close()
		limiter = cache.NewRedisRateLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	// Events
	var publisher service.EventPublisher = event.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	}

	// Use Cases
	signUpUseCase := signup.NewSignUpUseCase(profileRepo, password.New(cfg.Security.HashPasswords), publisher, appLogger)
	checkEmailUseCase := emailcheck.NewCheckEmailUseCase(profileRepo, appLogger)

	// HTTP
	router, err := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		SignUpHandler:     httpAdapter.NewSignUpHandler(signUpUseCase, appLogger),
		EmailCheckHandler: httpAdapter.NewEmailCheckHandler(checkEmailUseCase, appLogger),
		RateLimiter:       limiter,
		TrustedProxies:    cfg.App.TrustedProxies,
		Logger:            appLogger,
	})
	if err != nil {
		appLogger.Fatal("Cannot build router", err)
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           corsHandler.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
	// pending events must be written before the deferred Kafka close
	signUpUseCase.Wait()
	appLogger.Info("Server exited")
}
