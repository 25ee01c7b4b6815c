package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medvolt/airawat-backend/batch"
	"github.com/medvolt/airawat-backend/config"
	"github.com/medvolt/airawat-backend/handlers"
	"github.com/medvolt/airawat-backend/metrics"
	"github.com/medvolt/airawat-backend/middleware"
	"github.com/medvolt/airawat-backend/monitor"
	"github.com/medvolt/airawat-backend/repository"
	"github.com/medvolt/airawat-backend/results"
	"github.com/medvolt/airawat-backend/storage"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Path to YAML config file (optional, env vars fill the gaps)")
	flag.Parse()

	log.Println("Starting Airawat molecular-dynamics experiment backend")

	// Initialize configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer cfg.Close()

	// Cloud clients are constructed once here and injected everywhere;
	// no lazily-initialized globals
	storageClient, err := storage.NewClient(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}

	batchClient, err := batch.NewClient(context.Background(), cfg.Batch)
	if err != nil {
		log.Fatalf("Failed to initialize batch client: %v", err)
	}

	repo := repository.NewRepository(cfg.DB)
	refresher := monitor.NewStatusRefresher(repo, batchClient)
	classifier := results.NewClassifier(storageClient)
	extractor := metrics.NewExtractor(storageClient)

	handler := handlers.NewHandler(repo, storageClient, batchClient, refresher, classifier, extractor, cfg.Auth)

	// Setup Gin router
	router := gin.Default()
	router.Use(middleware.CORSMiddleware())

	// Public routes
	router.GET("/", handler.Home)
	router.POST("/auth/register", handler.Register)
	router.POST("/auth/login", handler.Login)
	router.POST("/generate-presigned-url", handler.GeneratePresignedURL)

	// Authenticated routes
	authed := router.Group("/", middleware.AuthMiddleware(cfg.Auth.JWTSecret))
	{
		authed.GET("/experiments/", handler.ListExperiments)
		authed.POST("/experiments/", handler.CreateExperiment)
		authed.GET("/experiment-results/:id/", handler.ExperimentResults)
		authed.GET("/experiment-recommend-structures/:id/", handler.RecommendStructures)
		authed.GET("/experiment-gyration-radius/:id/", handler.GyrationRadius)
		authed.GET("/experiment-rmsd/:id/", handler.RMSD)
		authed.GET("/experiment-cmd-output/:id/", handler.CmdOutput)
	}

	// Create HTTP server with proper configuration
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with 10-second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}
