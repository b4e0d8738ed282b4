package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medrex/onco-portal/internal/portal"
	"github.com/medrex/onco-portal/pkg/config"
	"github.com/medrex/onco-portal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize Portal Service
	service, err := portal.New(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize Portal Service: %v", err)
	}

	// Start service in a goroutine
	go func() {
		if err := service.Start(); err != nil {
			logger.Fatalf("Failed to start Portal Service: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down Portal Service...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := service.Stop(ctx); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
	logger.Info("Portal Service stopped")
}
