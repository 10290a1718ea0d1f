package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pairchat/config"
	"pairchat/internal/handler"
	"pairchat/internal/middleware"
	"pairchat/internal/redis"
	"pairchat/internal/services"
	"pairchat/internal/transport/httpdto"
	"pairchat/pkg/database"
	"pairchat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Contact *handler.ContactHandler
	Message *handler.MessageHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// SetupRoutes wires middleware and the API surface. db and limiter may
// be nil in tests; the corresponding health detail and rate limits are
// then skipped.
func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, limiter *redis.RateLimiter, db *database.Mongo) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware(s.config.CORSOrigin))
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	api := s.engine.Group("/api")

	// Health always answers 200; store state is reported in the body.
	api.GET("/health", func(c *gin.Context) {
		status := "healthy"
		if db != nil {
			if err := db.HealthCheck(c.Request.Context()); err != nil {
				status = "degraded"
			}
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": status}))
	})

	public := api.Group("")
	if limiter != nil {
		public.Use(middleware.AuthRateLimitMiddleware(limiter))
	}
	public.POST("/register", handlers.Auth.Register)
	public.POST("/login", handlers.Auth.Login)

	authed := api.Group("", middleware.AuthMiddleware(authService))

	messageGroup := authed.Group("")
	if limiter != nil {
		messageGroup.Use(middleware.MessageRateLimitMiddleware(limiter))
	}
	messageGroup.PUT("/message", handlers.Message.Update)

	authed.PUT("/typing", handlers.Message.Typing)
	authed.GET("/conversations/:conversationId", handlers.Message.GetConversation)

	userGroup := authed.Group("/:user")
	{
		userGroup.GET("/contacts", handlers.Contact.Contacts)
		userGroup.GET("/contacts/pending-requests", handlers.Contact.PendingRequests)
		userGroup.GET("/contacts/sent-requests", handlers.Contact.SentRequests)
		userGroup.GET("/conversations", handlers.Message.ListConversations)
		userGroup.POST("/contacts/requests/send/:contact", handlers.Contact.SendRequest)
		userGroup.POST("/contacts/requests/accept/:contact", handlers.Contact.AcceptRequest)
		userGroup.POST("/contacts/requests/decline/:contact", handlers.Contact.DeclineRequest)
	}
}

// Engine exposes the router for handler tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
