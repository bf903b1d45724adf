// Starbuddy - AI usage companion server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"starbuddy/internal/api"
	"starbuddy/internal/classifier"
	"starbuddy/internal/config"
	"starbuddy/internal/middleware"
	"starbuddy/internal/session"
	"starbuddy/internal/store"
	"starbuddy/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Classifier is optional: without an API key every submission resolves
	// to the fallback verdict instead of failing.
	var cl classifier.Client = classifier.Disabled{}
	if cfg.ClassifierEnabled() {
		gemini, err := classifier.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.ModelName, cfg.ClassifyTimeout, logger)
		if err != nil {
			slog.Warn("Failed to initialize Gemini classifier, submissions will use the fallback verdict", "error", err)
		} else {
			cl = gemini
			slog.Info("Gemini classifier initialized", "model", cfg.ModelName)
		}
	} else {
		slog.Info("Classification disabled (GEMINI_API_KEY not set)")
	}

	svc, err := session.NewService(context.Background(), repo, cl, cfg.HistoryLimit, logger)
	if err != nil {
		slog.Error("Failed to restore session state", "error", err)
		os.Exit(1)
	}

	// Initialize handlers.
	handler := api.NewHandler(svc)
	stateSocket := api.NewStateSocket(svc, cfg.IsDevelopment())
	svc.OnChange(stateSocket.Broadcast)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))

	handler.RegisterRoutes(r)

	// WebSocket state feed.
	r.Get("/ws/state", stateSocket.ServeHTTP)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // WebSocket state feed needs long-lived writes
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
