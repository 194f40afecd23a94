// Command main is the entry point for the Community Hub API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"communityhub/internal/config"
	"communityhub/internal/observability"
	"communityhub/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observability.SetLevel(cfg.LogLevel)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "communityhub-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	app := server.NewApp()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	if err := srv.WireEvents(ctx); err != nil {
		log.Printf("Event relay disabled: %v", err)
	}

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		log.Fatalf("Failed to listen on port %s: %v", cfg.Port, err)
	}

	log.Printf("Server starting on port %s...", cfg.Port)
	err = serve(ctx, app, ln, func(ctx context.Context) error {
		return errors.Join(srv.Shutdown(ctx), shutdownTracing(ctx))
	})
	if err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}

// serve runs app on ln until ctx is cancelled. Once in-flight requests have
// drained it runs cleanup, and it returns only after cleanup has finished.
func serve(ctx context.Context, app *fiber.App, ln net.Listener, cleanup func(context.Context) error) error {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()

		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	listenErr := app.Listener(ln)
	if listenErr == nil {
		<-drained
	}

	cleanupCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := cleanup(cleanupCtx); err != nil {
		return errors.Join(listenErr, fmt.Errorf("release resources: %w", err))
	}
	return listenErr
}
