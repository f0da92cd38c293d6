package main

import (
	"context"
	"flag"
	"log"
	"os"

	"restaurant-frontend/internal/config"
	"restaurant-frontend/internal/db"
	"restaurant-frontend/internal/migrate"
)

func main() {
	down := flag.Bool("down", false, "roll back every migration instead of applying them")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if *down {
		if err := migrate.Rollback(ctx, pool); err != nil {
			logger.Fatalf("roll back migrations: %v", err)
		}
		logger.Println("migrations rolled back")
		return
	}

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	logger.Println("migrations applied")
}
