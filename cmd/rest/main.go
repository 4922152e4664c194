package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marimo-hub-be/internal/bootstrap"
	"marimo-hub-be/internal/config"
	"marimo-hub-be/internal/pkg/logger"
	"marimo-hub-be/internal/server"
	"marimo-hub-be/internal/tracer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Tracing and logging
	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled, cfg.App.OtelURL)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer func() { _ = sysLogger.Sync() }()

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg, sysLogger)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	// 4. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	// 5. Wait for a stop signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if err := shutdownTracer(ctx); err != nil {
		log.Printf("tracer shutdown: %v", err)
	}
}
