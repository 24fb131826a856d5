// WriteBot onboarding API server.
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

	"github.com/ashureev/writebot/internal/api"
	"github.com/ashureev/writebot/internal/config"
	"github.com/ashureev/writebot/internal/langflow"
	"github.com/ashureev/writebot/internal/middleware"
	"github.com/ashureev/writebot/internal/session"
	"github.com/ashureev/writebot/internal/store"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

const version = "1.0.0"

// maxFlowCallsPerRequest is the most Langflow calls one request makes in
// sequence: ending an exercise asks for a reply and then for feedback.
const maxFlowCallsPerRequest = 2

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

	slog.Info("Starting server",
		"port", cfg.Port,
		"dev", cfg.IsDevelopment(),
		"langflow_url", cfg.Langflow.BaseURL,
		"flows_file", cfg.Langflow.FlowsFile)

	// Initialize the flow-call log.
	var repo store.Repository = store.Noop{}
	if cfg.CallLog.Enabled {
		sqliteRepo, err := store.NewSQLite(cfg.CallLog.DBPath)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		repo = sqliteRepo
		slog.Info("Flow call log enabled", "db_path", cfg.CallLog.DBPath)
	} else {
		slog.Info("Flow call log disabled")
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	// Initialize the generation backend.
	client, err := langflow.NewClient(cfg.Langflow, logger)
	if err != nil {
		slog.Error("Failed to initialize Langflow client", "error", err)
		os.Exit(1)
	}
	invoker := langflow.NewRecordingInvoker(client, repo, logger)
	flows := langflow.NewService(invoker, cfg.Langflow.Flows)

	// Sessions live for the lifetime of the process.
	sessions := session.NewStore()

	limiter := api.NewRateLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.WindowDuration)
	defer limiter.Stop()

	healthHandler := api.NewHealthHandler(repo, sessions, version)
	onboardingHandler := api.NewOnboardingHandler(sessions, flows, repo, limiter)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(cfg.FrontendURLs))

	healthHandler.RegisterRoutes(r)
	onboardingHandler.RegisterRoutes(r)

	srv := newHTTPServer(cfg, r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.CallLog.Enabled {
		store.StartRetentionWorker(ctx, repo, cfg.CallLog.Retention)
	}

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

// newHTTPServer builds the server with a write timeout that outlasts the
// longest chain of Langflow calls a handler can make, plus half a call of
// slack for parsing and encoding.
func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	flowBudget := maxFlowCallsPerRequest * cfg.Langflow.Timeout
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: flowBudget + cfg.Langflow.Timeout/2,
		IdleTimeout:  120 * time.Second,
	}
}
