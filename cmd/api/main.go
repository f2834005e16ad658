package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/pdf"
	"github.com/foodgram/backend/internal/router"
	"github.com/foodgram/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Redis backs the write rate limiter and the shopping-list cache;
	// both degrade gracefully when it is unavailable.
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Redis unavailable, rate limiting and document caching disabled: %v", err)
		redisClient = nil
	}

	var imageStore service.ImageStore
	if s3Cfg, err := config.NewS3Config(context.Background()); err != nil {
		log.Printf("S3 unavailable, inline images will not be uploaded: %v", err)
	} else {
		// Stored image URLs are served directly, so the bucket must be
		// publicly readable.
		if err := s3Cfg.SetupBucketPolicy(context.Background()); err != nil {
			log.Printf("Failed to apply bucket policy: %v", err)
		}
		imageStore = service.NewS3ImageStore(s3Cfg)
	}

	var docCache service.DocumentCache
	if redisClient != nil {
		docCache = service.NewRedisDocumentCache(redisClient)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db, imageStore)
	catalogService := service.NewCatalogService(db)
	subscriptionService := service.NewSubscriptionService(db)
	shoppingListService := service.NewShoppingListService(db, pdf.NewRenderer(), docCache)

	var writeLimit gin.HandlerFunc
	if redisClient != nil {
		writeLimit = middleware.NewRecipeWriteRateLimiter(redisClient).Middleware()
	}

	engine := router.SetupRouter(
		api.NewAuthHandler(authService),
		api.NewRecipeHandler(recipeService, shoppingListService),
		api.NewCatalogHandler(catalogService),
		api.NewUserHandler(subscriptionService),
		authService,
		writeLimit,
		cfg.AllowedOrigins,
	)

	srv := &http.Server{
		Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
		Handler: engine,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
