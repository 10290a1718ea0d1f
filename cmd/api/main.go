package main

import (
	"context"
	"errors"
	"log"
	"time"

	"pairchat/config"
	"pairchat/internal/handler"
	"pairchat/internal/redis"
	"pairchat/internal/repository"
	"pairchat/internal/secrets"
	"pairchat/internal/server"
	"pairchat/internal/services"
	"pairchat/pkg/database"
	"pairchat/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to the document store: %v", err)
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			l.Errorf("Error closing the document store connection: %s", err)
		}
	}()

	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	provider, err := buildSecretProvider(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to configure the secret provider: %v", err)
	}

	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	limiter := redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())

	storeTimeout := time.Duration(cfg.StoreTimeoutSec) * time.Second
	userRepo := repository.NewUserRepository(db.Users(), storeTimeout)
	convRepo := repository.NewConversationRepository(db.Conversations(), storeTimeout)

	authService := services.NewAuthService(userRepo, provider, time.Duration(cfg.JWTExpiryMin)*time.Minute)
	contactService := services.NewContactService(userRepo, convRepo, l)
	messageService := services.NewMessageService(convRepo)

	handlers := &server.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Contact: handler.NewContactHandler(contactService),
		Message: handler.NewMessageHandler(messageService),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, authService, limiter, db)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
}

func buildSecretProvider(ctx context.Context, cfg *config.Config) (secrets.Provider, error) {
	if cfg.SecretName != "" {
		return secrets.NewManager(ctx, secrets.ManagerConfig{
			Region:    cfg.SecretRegion,
			Name:      cfg.SecretName,
			AccessKey: cfg.SecretAccessKey,
			SecretKey: cfg.SecretSecretKey,
			Endpoint:  cfg.SecretEndpoint,
			CacheTTL:  time.Duration(cfg.SecretCacheTTL) * time.Second,
		})
	}
	// Local development fallback: a static secret from the environment.
	if cfg.JWTSecret == "" {
		return nil, errors.New("either SECRETS_NAME or JWT_SECRET must be set")
	}
	return secrets.Static{Secret: []byte(cfg.JWTSecret)}, nil
}
