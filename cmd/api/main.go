package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-subscribe/internal/config"
	"github.com/prefeitura-rio/app-subscribe/internal/handlers"
	"github.com/prefeitura-rio/app-subscribe/internal/hubspot"
	"github.com/prefeitura-rio/app-subscribe/internal/logging"
	"github.com/prefeitura-rio/app-subscribe/internal/middleware"
	"github.com/prefeitura-rio/app-subscribe/internal/observability"
	"github.com/prefeitura-rio/app-subscribe/internal/services"
	"github.com/prefeitura-rio/app-subscribe/internal/token"
	"github.com/prefeitura-rio/app-subscribe/internal/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/prefeitura-rio/app-subscribe/docs"
)

// @title           Subscription API
// @version         1.0
// @description     API for collecting, updating and unsubscribing email contacts against HubSpot. Requests are classified into a single action (sign up, settings save, opt out, lookup) and answered with a normalized status, message and contact snapshot.

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /v1

// @tag.name subscription
// @tag.description Operations about email subscriptions

// @tag.name health
// @tag.description Health check operations

func main() {
	// Initialize logger first
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	// Load configuration; a missing API key aborts here, before any
	// remote call can be attempted
	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}

	// Initialize observability
	observability.InitTracer()
	defer observability.ShutdownTracer()

	// Initialize database connections
	config.InitMongoDB()
	config.InitRedis()

	// Start the audit worker
	utils.InitAuditWorker(2, 1024)

	// Token codec is optional: without an encryption key the
	// subscription-token entry path stays disabled
	var codec token.Codec
	if config.AppConfig.EncryptionKey != "" {
		var err error
		codec, err = token.NewLegacyCodec(config.AppConfig.EncryptionKey)
		if err != nil {
			logging.Logger.Fatal("failed to initialize token codec", zap.Error(err))
		}
	} else {
		logging.Logger.Info("no encryption key configured, token entry path disabled")
	}

	api := hubspot.NewClient(config.AppConfig.HubSpotBaseURL, config.AppConfig.HubSpotAPIKey)
	subscriptionService := services.NewSubscriptionService(config.AppConfig, api, codec)
	nonceService := services.NewNonceService(config.Redis, config.AppConfig.NonceTTL)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, nonceService, config.AppConfig)

	// Set Gin mode
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router with middleware
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RequestTracker(),
		cors.Default(),
	)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		v1.GET("/subscription", subscriptionHandler.GetFormState)
		v1.POST("/subscription/signup", subscriptionHandler.SignUp)
		v1.POST("/subscription/update", subscriptionHandler.Update)
		v1.POST("/subscription/opt-out", subscriptionHandler.OptOut)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create server with timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.AppConfig.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logging.Logger.Info("starting server",
			zap.Int("port", config.AppConfig.Port),
			zap.String("environment", config.AppConfig.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logging.Logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	// Drain fire-and-forget work before exiting
	subscriptionService.WaitForEnrollments()
	utils.Shutdown()

	logging.Logger.Info("server exited gracefully")
}
