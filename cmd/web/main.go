package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"restaurant-frontend/internal/apiclient"
	"restaurant-frontend/internal/config"
	"restaurant-frontend/internal/httpserver"
	"restaurant-frontend/internal/repository/slot"
	"restaurant-frontend/internal/service/profile"
	"restaurant-frontend/internal/service/session"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[web] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.StorageBackend == config.StorageMemory {
		logger.Printf("using in-memory storage, carts and sessions are lost on restart")
	}
	slots, closeStorage, err := slot.Open(ctx, slot.OpenOptions{
		Backend:      cfg.StorageBackend,
		DBConnString: cfg.DBConnString,
		RedisURL:     cfg.RedisURL,
		TTL:          cfg.SlotTTL,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatalf("open %s storage: %v", cfg.StorageBackend, err)
	}
	defer closeStorage()

	if cfg.CredentialSecret == "" {
		logger.Printf("CREDENTIAL_SECRET not set, credentials are decoded without signature verification")
	}
	registry := profile.NewRegistry(profile.Options{
		Slots:   slots,
		API:     apiclient.New(cfg.APIBaseURL, cfg.APITimeout, logger),
		Decoder: session.NewDecoder(cfg.CredentialSecret, nil),
		Logger:  logger,
	})
	go registry.RunJanitor(ctx, cfg.ProfileIdleTTL/2, cfg.ProfileIdleTTL)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Profiles:      registry,
		Storage:       slots,
		TaxRate:       cfg.TaxRate,
		ProfileCookie: cfg.ProfileCookie,
		CORSOrigins:   cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s (api %s, storage %s)", cfg.HTTPAddr, cfg.APIBaseURL, cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
