package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/papertrade/paper-trading-backend/internal/api"
	"github.com/papertrade/paper-trading-backend/internal/config"
	"github.com/papertrade/paper-trading-backend/internal/database"
	"github.com/papertrade/paper-trading-backend/internal/oracle"
	"github.com/papertrade/paper-trading-backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Apply schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Price oracle client, shared by execution and valuation
	oracleClient := oracle.NewClient(cfg.Oracle)

	// Create services
	systemService := service.NewSystemService(db)
	portfolioService := service.NewPortfolioService(db)
	realizedPnLService := service.NewRealizedPnLService(db)
	valuationService := service.NewValuationService(db, oracleClient, realizedPnLService, cfg.PriceFallback)
	executionService := service.NewExecutionService(db, oracleClient)

	// Create router
	router := api.NewRouter(systemService, portfolioService, valuationService, executionService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
