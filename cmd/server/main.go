package main

import (
	"context"
	"convenios-dashboard/internal/assignment"
	"convenios-dashboard/internal/auth"
	"convenios-dashboard/internal/cases"
	"convenios-dashboard/internal/config"
	"convenios-dashboard/internal/convenio"
	"convenios-dashboard/internal/db"
	"convenios-dashboard/internal/edition"
	"convenios-dashboard/internal/logging"
	"convenios-dashboard/internal/middleware"
	"convenios-dashboard/internal/session"
	"convenios-dashboard/internal/user"
	"convenios-dashboard/internal/validation"
	"convenios-dashboard/redis"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.AppConfig

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	if err := db.ConnectDb(cfg, logger); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.CloseDb(logger)

	// Migrate database schema
	if err := db.Migrate(db.AppDb, logger); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	if err := validation.Register(); err != nil {
		logger.Fatal("failed to register validators", zap.Error(err))
	}

	// Session tables live in Redis when it answers, in process otherwise
	var tables session.Store
	if client := redis.Connect(context.Background(), cfg.RedisAddress, logger); client != nil {
		defer client.Close()
		tables = session.NewRedisStore(client, cfg.SessionTTL)
	} else {
		tables = session.NewMemoryStore(cfg.SessionTTL)
	}

	// Initialize repository
	userRepo := user.NewRepository(db.AppDb)
	assignmentRepo := assignment.NewRepository(db.AppDb)
	editionRepo := edition.NewRepository(db.AppDb)
	// Initialize service
	signer := auth.NewSigner(cfg.JWTSecret, cfg.SessionTTL)
	userService := user.NewService(userRepo, signer, tables)
	assignmentService := assignment.NewService(assignmentRepo)
	editionService := edition.NewService(editionRepo)
	ingester := convenio.NewIngester(assignmentService, logger.Named("ingest"), cfg.ParseConcurrency)
	caseService := cases.NewService(ingester, tables, editionService, assignmentService, logger.Named("cases"))
	// Initialize handler
	userHandler := user.NewHandler(userService)
	assignmentHandler := assignment.NewHandler(assignmentService)
	caseHandler := cases.NewHandler(caseService, cfg.UploadMaxBytes)
	authMiddleware := &middleware.Auth{Signer: signer}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.MaxMultipartMemory = cfg.UploadMaxBytes

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if cfg.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{cfg.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.ErrorHandler(logger))

	router.POST("/login", userHandler.Login)

	api := router.Group("/", authMiddleware.AuthMiddleWare())
	api.DELETE("/logout", userHandler.Logout)
	api.GET("/profile", userHandler.GetProfile)
	api.GET("/users", userHandler.SearchUsers)

	api.POST("/uploads", caseHandler.Upload)
	api.GET("/cases", caseHandler.List)
	api.GET("/cases/export", caseHandler.Export)
	api.GET("/cases/options/:column", caseHandler.Options)
	api.GET("/cases/:id", caseHandler.Show)
	api.GET("/cases/:id/history", caseHandler.History)
	api.PUT("/cases/:id/editions", caseHandler.Edit)
	api.PUT("/cases/:id/assignment", middleware.RequireRole(convenio.RoleManager), caseHandler.Assign)

	api.GET("/assignments", assignmentHandler.List)
	api.GET("/assignments/:id", assignmentHandler.Show)

	// Server configuration
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		logger.Info("server listening", zap.String("port", cfg.ServerPort))
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server shutdown complete")
}
