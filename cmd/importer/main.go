package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"restaurant-frontend/internal/config"
	"restaurant-frontend/internal/importer"
	"restaurant-frontend/internal/repository/slot"
	"restaurant-frontend/internal/service/cart"
)

func main() {
	var (
		filePath  string
		profileID string
	)
	flag.StringVar(&filePath, "file", "", "Path to cart CSV (id,name,description,price,quantity,category,imageUrl)")
	flag.StringVar(&profileID, "profile", "", "Profile id whose cart receives the items")
	flag.Parse()

	if filePath == "" || uuid.Validate(profileID) != nil {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if cfg.StorageBackend == config.StorageMemory {
		log.Fatalf("importing needs a durable backend, set STORAGE_BACKEND to postgres or redis")
	}
	ctx := context.Background()

	repo, closeStorage, err := slot.Open(ctx, slot.OpenOptions{
		Backend:      cfg.StorageBackend,
		DBConnString: cfg.DBConnString,
		RedisURL:     cfg.RedisURL,
		TTL:          cfg.SlotTTL,
	})
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer closeStorage()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	store := cart.Load(ctx, repo, profileID, log.Default())
	imp := importer.NewCSVImporter(f, store)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d items into profile %s in %s (cart now holds %d)\n", count, profileID, time.Since(start).Truncate(time.Millisecond), store.TotalItemCount())
}
