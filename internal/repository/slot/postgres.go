package slot

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"restaurant-frontend/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by the storage_slots table.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Get(ctx context.Context, profileID, slot string) (string, error) {
	const q = `
SELECT value
FROM storage_slots
WHERE profile_id = $1 AND slot = $2
`
	var value string
	if err := r.pool.QueryRow(ctx, q, profileID, slot).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		r.logger.Printf("slot repo: get profile=%s slot=%s error=%v", profileID, slot, err)
		return "", err
	}
	return value, nil
}

func (r *postgresRepo) Put(ctx context.Context, profileID, slot, value string) error {
	const q = `
INSERT INTO storage_slots (profile_id, slot, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (profile_id, slot) DO UPDATE
SET value = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at
`
	if _, err := r.pool.Exec(ctx, q, profileID, slot, value); err != nil {
		r.logger.Printf("slot repo: put profile=%s slot=%s error=%v", profileID, slot, err)
		return err
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, profileID, slot string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM storage_slots WHERE profile_id = $1 AND slot = $2`, profileID, slot); err != nil {
		r.logger.Printf("slot repo: delete profile=%s slot=%s error=%v", profileID, slot, err)
		return err
	}
	return nil
}

func (r *postgresRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
