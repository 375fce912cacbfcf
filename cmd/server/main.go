// Command server starts the UPIShield fraud engine API.
//
// Usage:
//
//	go run ./cmd/server
//
// Configuration comes from the environment (or a local .env file):
//
//	PORT                     HTTP port to listen on (default: 8080)
//	ENV                      "development" or "production" (default: development)
//	LOG_LEVEL                debug | info | warn | error (default: info)
//	VELOCITY_WINDOW_MINUTES  sliding window duration (default: 15)
//	VELOCITY_BREACH_COUNT    window size that triggers scoring (default: 3)
//	SEED_FILE                seed data JSON to load on startup (default: data/seed.json)
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"upishield/fraud-engine/internal/api"
	"upishield/fraud-engine/internal/config"
	"upishield/fraud-engine/internal/domain"
	"upishield/fraud-engine/internal/engine"
	"upishield/fraud-engine/internal/metrics"
	"upishield/fraud-engine/internal/reputation"
	"upishield/fraud-engine/internal/threatfeed"
	"upishield/fraud-engine/internal/triage"
	"upishield/fraud-engine/internal/velocity"
	"upishield/fraud-engine/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Structured logging — JSON in production, text-friendly in development.
	slog.SetDefault(newLogger(cfg))

	metrics.Register()

	// ── Wire dependencies ─────────────────────────────────────────────────────
	registry := reputation.New()
	tracker := velocity.NewTracker(cfg.Window())
	queue := triage.New()
	notifier := webhook.New()
	eng := engine.New(registry, tracker, queue, notifier, cfg.BreachCount)
	feed := threatfeed.New()

	handler := api.NewHandler(eng, feed, notifier)
	router := api.NewRouter(handler)

	// ── Load seed data ────────────────────────────────────────────────────────
	if err := loadSeedData(registry, feed, cfg.SeedFile); err != nil {
		// Non-fatal: the API works fine without seed data.
		slog.Warn("seed data not loaded", "file", cfg.SeedFile, "reason", err.Error())
	}

	// ── Start HTTP server ─────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server listening",
			"port", cfg.Port,
			"env", cfg.Env,
			"window_minutes", cfg.WindowMinutes,
			"breach_count", cfg.BreachCount,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}

// newLogger builds the process-wide slog logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// loadSeedData reads a JSON seed file and populates the fraud registry and
// the threat feed so the API starts with known scam identifiers and sample
// flagged messages.
func loadSeedData(registry *reputation.Store, feed *threatfeed.Feed, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	var seed domain.SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	for _, rec := range seed.Reputation {
		registry.Upsert(rec)
	}
	for _, msg := range seed.Threats {
		feed.Submit(msg)
	}

	slog.Info("seed data loaded",
		"file", filePath,
		"reputation_records", registry.Len(),
		"threat_messages", len(seed.Threats),
	)
	return nil
}
