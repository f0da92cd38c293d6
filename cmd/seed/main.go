package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/google/uuid"
	"restaurant-frontend/internal/config"
	"restaurant-frontend/internal/repository/slot"
	"restaurant-frontend/internal/seed"
)

func main() {
	var (
		profileID  string
		credential string
	)
	flag.StringVar(&profileID, "profile", "", "Profile id to seed (default: a new one)")
	flag.StringVar(&credential, "token", "", "Bearer credential to store for the profile")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	if cfg.StorageBackend == config.StorageMemory {
		logger.Fatalf("seeding needs a durable backend, set STORAGE_BACKEND to postgres or redis")
	}
	if profileID == "" {
		profileID = uuid.NewString()
	} else if err := uuid.Validate(profileID); err != nil {
		logger.Fatalf("invalid profile id %q: %v", profileID, err)
	}

	ctx := context.Background()
	repo, closeStorage, err := slot.Open(ctx, slot.OpenOptions{
		Backend:      cfg.StorageBackend,
		DBConnString: cfg.DBConnString,
		RedisURL:     cfg.RedisURL,
		TTL:          cfg.SlotTTL,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatalf("open storage: %v", err)
	}
	defer closeStorage()

	if err := seed.Apply(ctx, repo, profileID, credential); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Printf("seed applied, set cookie %s=%s", cfg.ProfileCookie, profileID)
}
