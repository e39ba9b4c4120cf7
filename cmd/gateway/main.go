package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/andysenclave/kriyo-auth-gateway/internal/audit"
	"github.com/andysenclave/kriyo-auth-gateway/internal/config"
	"github.com/andysenclave/kriyo-auth-gateway/internal/directory"
	"github.com/andysenclave/kriyo-auth-gateway/internal/engine"
	"github.com/andysenclave/kriyo-auth-gateway/internal/pipeline"
	"github.com/andysenclave/kriyo-auth-gateway/internal/server"
	"github.com/andysenclave/kriyo-auth-gateway/internal/telemetry"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Initialize OpenTelemetry
	shutdownTracer, err := telemetry.InitTracer("kriyo-auth-gateway", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	cfgPath := os.Getenv("KRIYO_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Hook decision audit trail (optional)
	var recorder pipeline.Recorder
	if cfg.Audit.Path != "" {
		store, err := audit.New(cfg.Audit.Path, logger)
		if err != nil {
			log.Fatalf("Failed to open audit store: %v", err)
		}
		defer store.Close()
		recorder = store
	}

	dir := directory.NewClient(cfg.Directory.URL, cfg.Directory.CallTimeout())
	eng := engine.NewClient(cfg.Engine.URL, 0)

	hooks := pipeline.NewAuthDispatcher(pipeline.AuthHooksConfig{
		AllowedClientIDs: cfg.Auth.ClientIDs(),
		Directory:        dir,
		Logger:           logger,
		Recorder:         recorder,
	})

	handler := server.NewAuthHandler(eng, hooks, logger)

	srv := server.New(cfg.Server.Port, logger)
	srv.Router.Post(pipeline.SignUpPath, handler.SignUp)
	srv.Router.Post(pipeline.SignInPath, handler.SignIn)

	srv.Start()

	logger.Info("auth gateway started",
		slog.Int("port", cfg.Server.Port),
		slog.String("engine", cfg.Engine.URL),
		slog.String("directory", cfg.Directory.URL),
		slog.Bool("audit", cfg.Audit.Path != ""),
	)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping gateway")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("gateway shutdown complete")
}
