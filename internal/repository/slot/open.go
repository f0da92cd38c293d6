package slot

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"restaurant-frontend/internal/db"
	"restaurant-frontend/internal/migrate"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// OpenOptions select and configure a storage backend.
type OpenOptions struct {
	Backend      string
	DBConnString string
	RedisURL     string
	TTL          time.Duration
	Logger       *log.Logger
}

// Open connects the configured backend and returns it with its close func.
// The Postgres backend is migrated before use.
func Open(ctx context.Context, opts OpenOptions) (Repository, func(), error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	switch opts.Backend {
	case BackendPostgres:
		pool, err := db.Connect(ctx, opts.DBConnString)
		if err != nil {
			return nil, nil, err
		}
		if err := migrate.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
		return NewPostgres(pool, opts.Logger), pool.Close, nil
	case BackendRedis:
		client, err := DialRedis(ctx, opts.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return NewRedis(client, opts.TTL), func() { _ = client.Close() }, nil
	case BackendMemory, "":
		return NewMemory(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
}
