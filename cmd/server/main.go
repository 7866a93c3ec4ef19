package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/flashdeck/internal/api"
	"github.com/vytor/flashdeck/internal/config"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/services"
	"github.com/vytor/flashdeck/internal/storage"
	"github.com/vytor/flashdeck/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	log.Info("flashdeck server starting")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("storage_backend=%s", cfg.StorageBackend)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("strict_storage=%t", cfg.StrictStorage)
	log.Debug("guest_starter_decks=%t", cfg.GuestStarterDecks)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("flush_workers=%d", cfg.FlushWorkers)
	log.Debug("login_ttl=%s", cfg.LoginTTL)

	backend, err := storage.Open(context.Background(), cfg)
	if err != nil {
		log.Error("failed to open storage: %v", err)
		os.Exit(1)
	}
	defer backend.Close()

	deckService := services.NewDeckService(backend.Collections, services.DeckServiceOptions{
		Strict:            cfg.StrictStorage,
		GuestStarterDecks: cfg.GuestStarterDecks,
	})
	quizService := services.NewQuizService(deckService)
	authService := services.NewAuthService(backend.Users, backend.Collections, cfg.BcryptCost,
		services.WithLoginTTL(cfg.LoginTTL),
		services.WithExpiryHook(services.ReleaseOnExpiry(deckService, quizService)),
	)

	srv := api.NewServer(authService, deckService, quizService)
	srv.Ready = backend.Ready

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		log.Info("received signal %v, initiating graceful shutdown", sig)
	case err := <-serveErr:
		log.Error("HTTP server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}
	if n := worker.FlushPending(logger.NewContext(shutdownCtx, log), deckService, cfg.FlushWorkers); n > 0 {
		log.Warn("%d collections could not be saved before exit", n)
	}
	log.Info("flashdeck server stopped")
}
