// Package main is the entry point for the blogdesk API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"blogdesk/internal/ai"
	"blogdesk/internal/assets"
	"blogdesk/internal/auth"
	"blogdesk/internal/cache"
	"blogdesk/internal/config"
	"blogdesk/internal/database"
	"blogdesk/internal/handlers"
	"blogdesk/internal/middleware"
	"blogdesk/internal/ocr"
	"blogdesk/internal/router"
	"blogdesk/internal/speech"
	"blogdesk/internal/store"
)

func main() {
	// Load configuration from .env and environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.IsDev() {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"driver", cfg.DatabaseDriver(),
	)

	// Connect to SQLite or PostgreSQL depending on DATABASE_URL.
	driver := cfg.DatabaseDriver()
	db, err := database.Connect(driver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db, driver); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Bootstrap admin (no-op unless configured and the table is empty).
	if err := database.SeedAdmin(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		slog.Error("failed to seed admin", "error", err)
		os.Exit(1)
	}

	// Valkey response cache is optional; the API works without it.
	var responseCache handlers.ResponseCache
	if cfg.CacheEnabled() {
		client, err := cache.ConnectValkey(context.Background(), cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Warn("valkey unavailable, response cache disabled", "error", err)
		} else {
			defer client.Close()
			responseCache = cache.NewResponseCache(client, cfg.CacheTTL)
		}
	}

	// Thumbnails go to S3 when a bucket is configured, else to UPLOAD_DIR.
	var (
		backend   assets.Backend
		uploadDir string
	)
	if cfg.S3Enabled() {
		backend, err = assets.NewS3Backend(assets.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage configured", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		fsBackend, err := assets.NewFSBackend(cfg.UploadDir, strings.TrimRight(cfg.PublicBaseURL, "/")+"/static/uploads")
		if err != nil {
			slog.Error("failed to prepare upload directory", "error", err)
			os.Exit(1)
		}
		backend, uploadDir = fsBackend, fsBackend.Dir()
	}

	// Gemini is optional; the proxy answers 503 without a key.
	var gemini ai.Provider
	if cfg.GeminiAPIKey != "" {
		gemini = ai.NewGemini(ai.ProviderConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		})
	} else {
		slog.Warn("GEMINI_API_KEY not set, /api/gemini disabled")
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	limiter := middleware.NewRateLimiter(cfg.ProxyRatePerMin, time.Minute)
	defer limiter.Stop()

	// Create handler groups with their dependencies.
	h := router.Handlers{
		Auth: handlers.NewAuth(store.NewAdminStore(db), issuer),
		Content: handlers.NewContent(
			store.NewCategoryStore(db),
			store.NewSubCategoryStore(db),
			store.NewArticleStore(db),
			store.NewThumbnailStore(db),
			assets.NewManager(backend),
			responseCache,
			cfg.PublicBaseURL,
		),
		Dashboard: handlers.NewDashboard(store.NewStatsStore(db)),
		Proxy: handlers.NewProxy(
			gemini,
			ocr.NewService(ocr.Tesseract{Path: cfg.TesseractPath}),
			ocr.NewTranslator(cfg.TranslateBaseURL),
			speech.NewClient(cfg.TTSBaseURL),
		),
	}

	r := router.New(h, router.Options{Tokens: issuer, Limiter: limiter, UploadDir: uploadDir})

	// WriteTimeout must accommodate OCR and provider calls.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("server failed to start", "error", err)
		os.Exit(1)
	}

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return
	}

	slog.Info("server stopped gracefully")
}
